package gamesync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/clients/league_api_client"
	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

const (
	// transientRetryDelay is the fixed backoff between retries of a
	// failed poll.
	transientRetryDelay = 2 * time.Second
)

// StateFetcher is what the sync loop needs from the platform API.
type StateFetcher interface {
	FetchState(ctx context.Context, gameID string, knownVersion int64, waitSeconds int) (*models.GameSnapshot, error)
}

// syncSession is one long-poll loop bound to a single game id. Results
// arriving after the session was stopped or superseded are dropped, not
// applied.
type syncSession struct {
	gameID           string
	lastKnownVersion int64
	cancel           context.CancelFunc
	done             chan struct{}

	mu     sync.Mutex
	active bool
}

func (s *syncSession) isActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *syncSession) deactivate() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// Syncer keeps the history's live head fresh via server-driven long
// polling. At most one session may be active per game id; duplicate
// starts are rejected.
type Syncer struct {
	fetcher     StateFetcher
	clock       clockwork.Clock
	waitSeconds int

	mu       sync.Mutex
	sessions map[string]*syncSession
}

func NewSyncer(fetcher StateFetcher, clock clockwork.Clock, waitSeconds int) *Syncer {
	return &Syncer{
		fetcher:     fetcher,
		clock:       clock,
		waitSeconds: waitSeconds,
		sessions:    make(map[string]*syncSession),
	}
}

// Start begins a polling loop for gameID from fromVersion. Each fresh
// snapshot is handed to apply in version order; onTerminal fires once if
// the loop stops because the game no longer exists. Returns
// ErrSessionActive when a session for this exact game id is already
// running.
func (s *Syncer) Start(ctx context.Context, gameID string, fromVersion int64, apply func(*models.GameSnapshot), onTerminal func(error)) error {
	s.mu.Lock()
	if _, exists := s.sessions[gameID]; exists {
		s.mu.Unlock()
		return ErrSessionActive
	}

	sessCtx, cancel := context.WithCancel(ctx)
	sess := &syncSession{
		gameID:           gameID,
		lastKnownVersion: fromVersion,
		cancel:           cancel,
		done:             make(chan struct{}),
		active:           true,
	}
	s.sessions[gameID] = sess
	s.mu.Unlock()

	log.Debug().Str("game_id", gameID).Int64("from_version", fromVersion).Msg("sync session started")
	go s.run(sessCtx, sess, apply, onTerminal)
	return nil
}

// Stop deactivates the session for gameID and blocks until its loop has
// exited, so a new session for another game id can start without an
// orphaned loop still applying snapshots.
func (s *Syncer) Stop(gameID string) {
	s.mu.Lock()
	sess, exists := s.sessions[gameID]
	s.mu.Unlock()
	if !exists {
		return
	}

	sess.deactivate()
	sess.cancel()
	<-sess.done
}

// Active reports whether a session is currently running for gameID.
func (s *Syncer) Active(gameID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.sessions[gameID]
	return exists
}

func (s *Syncer) run(ctx context.Context, sess *syncSession, apply func(*models.GameSnapshot), onTerminal func(error)) {
	defer close(sess.done)
	defer s.remove(sess)

	for {
		if ctx.Err() != nil {
			return
		}

		snap, err := s.fetcher.FetchState(ctx, sess.gameID, sess.lastKnownVersion, s.waitSeconds)

		// The session may have been stopped while the request was in
		// flight; its result no longer belongs to anyone.
		if ctx.Err() != nil || !sess.isActive() {
			return
		}

		if err != nil {
			if errors.Is(err, league_api_client.ErrGameNotFound) {
				log.Warn().Str("game_id", sess.gameID).Err(err).Msg("game gone, stopping sync")
				if onTerminal != nil {
					onTerminal(err)
				}
				return
			}

			log.Warn().Str("game_id", sess.gameID).Err(err).Msg("poll failed, backing off")
			select {
			case <-ctx.Done():
				return
			case <-s.clock.After(transientRetryDelay):
			}
			continue
		}

		if snap.Version > sess.lastKnownVersion {
			sess.lastKnownVersion = snap.Version
			apply(snap)
		}

		if snap.IsFinished {
			log.Info().Str("game_id", sess.gameID).Int64("version", snap.Version).Msg("game finished, stopping sync")
			return
		}
	}
}

func (s *Syncer) remove(sess *syncSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, exists := s.sessions[sess.gameID]; exists && current == sess {
		delete(s.sessions, sess.gameID)
	}
}
