package gamesync

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// GameAPI is what the resolver needs from the platform API.
type GameAPI interface {
	CreateFromState(ctx context.Context, req models.CreateFromStateRequest) (*models.GameSnapshot, error)
	SubmitMove(ctx context.Context, req models.MoveRequest) (*models.MoveResult, error)
}

// PendingMove is a move held back because it still needs a follow-up
// choice (pawn promotion). Transient: resolved or cancelled within one
// interaction, never persisted.
type PendingMove struct {
	Move models.Move
}

// Resolution describes what a resolved move intent ended up doing.
type Resolution struct {
	// GameID the move was submitted against; differs from the original
	// when a branch was created first.
	GameID string
	// Branched is true when a new game instance was created from a
	// historical snapshot before submitting.
	Branched bool
	// Seed is the initial snapshot of the branched game, nil otherwise.
	Seed *models.GameSnapshot
	// Result of the move submission; nil when submission failed.
	Result *models.MoveResult
}

// Resolver routes a user's move intent to either the live game or a
// freshly created derivative game. When the history cursor sits behind
// the live head the move cannot apply to the live game: the resolver
// first creates a new instance seeded from the snapshot being viewed,
// hands it to the rebase hook (which swaps the active game id, resets
// history and restarts sync), and only then submits the move.
type Resolver struct {
	api          GameAPI
	history      *History
	playerID     string
	sourceAgent  string
	opponentMode models.OpponentMode

	// rebase is invoked between branch creation and move submission. A
	// failed branch never reaches it; a branch that succeeded is never
	// rolled back even if the subsequent submit fails.
	rebase func(seed *models.GameSnapshot) error

	mu      sync.Mutex
	pending *PendingMove
}

func NewResolver(api GameAPI, history *History, playerID, sourceAgent string, opponentMode models.OpponentMode, rebase func(*models.GameSnapshot) error) *Resolver {
	return &Resolver{
		api:          api,
		history:      history,
		playerID:     playerID,
		sourceAgent:  sourceAgent,
		opponentMode: opponentMode,
		rebase:       rebase,
	}
}

// SubmitMove resolves a move intent. A move that still needs a choice is
// held as pending and ErrChoiceRequired is returned; the caller supplies
// the choice via ProvideChoice.
func (r *Resolver) SubmitMove(ctx context.Context, gameID string, move models.Move, needsChoice bool) (*Resolution, error) {
	if needsChoice && move.Promotion == "" {
		r.mu.Lock()
		r.pending = &PendingMove{Move: move}
		r.mu.Unlock()
		return nil, ErrChoiceRequired
	}
	return r.resolve(ctx, gameID, move)
}

// ProvideChoice completes a pending move with the chosen promotion
// piece. Resolution restarts from the branch decision: the cursor may
// have moved while the choice dialog was open.
func (r *Resolver) ProvideChoice(ctx context.Context, gameID string, promotion string) (*Resolution, error) {
	r.mu.Lock()
	if r.pending == nil {
		r.mu.Unlock()
		return nil, ErrNoPendingMove
	}
	move := r.pending.Move
	move.Promotion = promotion
	r.pending = nil
	r.mu.Unlock()

	return r.resolve(ctx, gameID, move)
}

// CancelPending drops a held move, e.g. when the choice dialog is
// dismissed.
func (r *Resolver) CancelPending() {
	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()
}

// HasPending reports whether a move is waiting for a choice.
func (r *Resolver) HasPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}

func (r *Resolver) resolve(ctx context.Context, gameID string, move models.Move) (*Resolution, error) {
	snap := r.history.Current()
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	res := &Resolution{GameID: gameID}

	if r.history.CanRedo() {
		seed, err := r.api.CreateFromState(ctx, models.CreateFromStateRequest{
			Seed:         snap,
			SourceAgent:  r.sourceAgent,
			OpponentMode: r.opponentMode,
			Side:         r.playerID,
		})
		if err != nil {
			return nil, fmt.Errorf("create branched game: %w", err)
		}

		log.Info().
			Str("source_game_id", gameID).
			Str("branched_game_id", seed.ID).
			Int64("seed_version", snap.Version).
			Msg("branched new game from historical snapshot")

		res.GameID = seed.ID
		res.Branched = true
		res.Seed = seed

		if r.rebase != nil {
			if err := r.rebase(seed); err != nil {
				return res, fmt.Errorf("switch to branched game: %w", err)
			}
		}
		gameID = seed.ID
		snap = seed
	}

	result, err := r.api.SubmitMove(ctx, models.MoveRequest{
		GameID:             gameID,
		PlayerID:           r.playerID,
		Move:               move,
		ExpectedTurnNumber: snap.TurnNumber,
	})
	if err != nil {
		// The branch, if any, stays; only the submission failed.
		return res, err
	}

	res.Result = result
	return res, nil
}
