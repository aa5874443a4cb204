package gamesync

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// FinalizeAPI is what the finalizer needs from the platform API.
type FinalizeAPI interface {
	FinalizeTimeout(ctx context.Context, gameID, participantID string) (*models.FinalizeTimeoutResult, error)
}

// guardKey marks "finalize already requested for this game version".
type guardKey struct {
	gameID  string
	version int64
}

// Finalizer detects that the on-move participant's predicted clock has
// reached zero before the server reflected the outcome, and issues at
// most one finalize-timeout request per (game id, version). The guard is
// set synchronously before the request goes out, so per-second
// re-evaluation cannot double-fire; a failed request clears the guard so
// a later evaluation may retry while the condition persists.
type Finalizer struct {
	api   FinalizeAPI
	apply func(*models.GameSnapshot, []models.GameEvent)

	mu        sync.Mutex
	attempted *guardKey
}

func NewFinalizer(api FinalizeAPI, apply func(*models.GameSnapshot, []models.GameEvent)) *Finalizer {
	return &Finalizer{api: api, apply: apply}
}

// Evaluate checks the trigger condition for snap at the given time and
// issues the finalize request inline when it fires. Safe to call from
// every tick and from concurrent evaluation passes; duplicates are
// suppressed by the guard. Returns true when a request was issued.
func (f *Finalizer) Evaluate(ctx context.Context, snap *models.GameSnapshot, now time.Time) bool {
	if snap == nil || snap.IsFinished || !snap.TimersActive() {
		return false
	}

	key := guardKey{gameID: snap.ID, version: snap.Version}

	if PredictRemaining(snap, snap.CurrentPlayerID, now) > 0 {
		// Condition no longer holds; forget the guard so a future expiry
		// at this version can fire again.
		f.clearGuard(key)
		return false
	}

	f.mu.Lock()
	if f.attempted != nil && *f.attempted == key {
		f.mu.Unlock()
		return false
	}
	f.attempted = &key
	f.mu.Unlock()

	log.Info().
		Str("game_id", snap.ID).
		Int64("version", snap.Version).
		Str("participant_id", snap.CurrentPlayerID).
		Msg("local clock expired, finalizing timeout")

	result, err := f.api.FinalizeTimeout(ctx, snap.ID, snap.CurrentPlayerID)
	if err != nil {
		log.Warn().Str("game_id", snap.ID).Err(err).Msg("finalize timeout failed")
		f.clearGuard(key)
		return true
	}

	if result != nil && result.NewState != nil && f.apply != nil {
		// The authoritative state advances the version, which naturally
		// invalidates the guard for future triggers.
		f.apply(result.NewState, result.NewEvents)
	}
	return true
}

func (f *Finalizer) clearGuard(key guardKey) {
	f.mu.Lock()
	if f.attempted != nil && *f.attempted == key {
		f.attempted = nil
	}
	f.mu.Unlock()
}
