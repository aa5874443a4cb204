package gamesync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// API is the union of collaborator calls the engine needs.
type API interface {
	StateFetcher
	GameAPI
	FinalizeAPI
	DeleteGame(ctx context.Context, gameID string) error
}

// RulesAdvisor runs local rule checks against a game-specific state
// blob, so obviously bad moves are caught before a server round trip and
// under-specified moves (pawn promotion) are held for a choice.
type RulesAdvisor interface {
	// NeedsChoice reports whether the move needs a follow-up choice
	// before submission.
	NeedsChoice(state json.RawMessage, move models.Move) (bool, error)
	// CheckMove returns an error when the move is locally known to be
	// illegal for the position.
	CheckMove(state json.RawMessage, move models.Move) error
}

// Callbacks deliver engine output to the embedding view. All callbacks
// may be nil; they are invoked from engine goroutines.
type Callbacks struct {
	// OnSnapshot fires whenever the viewed snapshot changes: a new live
	// version arrived while at the head, or the user travelled in time.
	OnSnapshot func(snap *models.GameSnapshot, live bool)
	// OnClocks fires about once per second with the derived countdowns
	// while the game is live and unfinished.
	OnClocks func(displays map[string]time.Duration)
	// OnEvents delivers new event-log entries from move and finalize
	// responses.
	OnEvents func(events []models.GameEvent)
	// OnFinished fires once when the live game reaches a finished state.
	OnFinished func(snap *models.GameSnapshot)
	// OnTerminal fires when the sync loop stops because the game no
	// longer exists.
	OnTerminal func(err error)
}

// ControllerConfig carries the per-view engine settings.
type ControllerConfig struct {
	PlayerID     string
	SourceAgent  string
	OpponentMode models.OpponentMode
	WaitSeconds  int
	TickInterval time.Duration
}

// Controller glues history, sync loop, clock prediction, branching and
// timeout finalization into one per-view engine. A controller tracks one
// active game id at a time; loading another id tears the previous
// session down first.
type Controller struct {
	api       API
	clock     clockwork.Clock
	cfg       ControllerConfig
	callbacks Callbacks
	advisors  map[models.GameType]RulesAdvisor

	history   *History
	syncer    *Syncer
	resolver  *Resolver
	finalizer *Finalizer

	mu         sync.Mutex
	gameID     string
	runCtx     context.Context
	tickCancel context.CancelFunc
	finished   bool
}

func NewController(api API, clock clockwork.Clock, cfg ControllerConfig, callbacks Callbacks) *Controller {
	if cfg.WaitSeconds <= 0 {
		cfg.WaitSeconds = 25
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	c := &Controller{
		api:       api,
		clock:     clock,
		cfg:       cfg,
		callbacks: callbacks,
		advisors:  make(map[models.GameType]RulesAdvisor),
		history:   NewHistory(),
	}
	c.syncer = NewSyncer(api, clock, cfg.WaitSeconds)
	c.resolver = NewResolver(api, c.history, cfg.PlayerID, cfg.SourceAgent, cfg.OpponentMode, c.rebase)
	c.finalizer = NewFinalizer(api, c.applyAuthoritative)
	return c
}

// RegisterAdvisor installs a local rules adapter for a game type.
func (c *Controller) RegisterAdvisor(gameType models.GameType, advisor RulesAdvisor) {
	c.advisors[gameType] = advisor
}

// Load switches the controller to gameID: stops any previous session,
// fetches the current state, reseeds history and starts a fresh sync
// loop plus the clock tick loop.
func (c *Controller) Load(ctx context.Context, gameID string) error {
	c.teardown()

	snap, err := c.api.FetchState(ctx, gameID, 0, 0)
	if err != nil {
		return fmt.Errorf("load game %s: %w", gameID, err)
	}

	c.mu.Lock()
	c.gameID = gameID
	c.runCtx = ctx
	c.finished = snap.IsFinished
	tickCtx, cancel := context.WithCancel(ctx)
	c.tickCancel = cancel
	c.mu.Unlock()

	c.history.Reset(snap)
	c.emitSnapshot(snap, true)

	if !snap.IsFinished {
		if err := c.syncer.Start(ctx, gameID, snap.Version, c.applyLive, c.handleTerminal); err != nil {
			return err
		}
	}

	go c.runTicks(tickCtx)
	return nil
}

// Stop tears down the active session and tick loop.
func (c *Controller) Stop() {
	c.teardown()
}

// GameID returns the id of the game the controller currently tracks.
// Changes when a move branches into a derivative game.
func (c *Controller) GameID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

// Current returns the snapshot at the history cursor.
func (c *Controller) Current() *models.GameSnapshot {
	return c.history.Current()
}

// CanUndo mirrors the history cursor position.
func (c *Controller) CanUndo() bool { return c.history.CanUndo() }

// CanRedo reports whether the view is detached from the live head.
func (c *Controller) CanRedo() bool { return c.history.CanRedo() }

// Undo moves the view one snapshot back in time.
func (c *Controller) Undo() *models.GameSnapshot {
	snap := c.history.Undo()
	c.emitSnapshot(snap, !c.history.CanRedo())
	return snap
}

// Redo moves the view one snapshot forward.
func (c *Controller) Redo() *models.GameSnapshot {
	snap := c.history.Redo()
	c.emitSnapshot(snap, !c.history.CanRedo())
	return snap
}

// SubmitMove routes a move intent through the branch resolver. When the
// view is detached a derivative game is created first and the controller
// switches to it. ErrChoiceRequired means the move is held until
// ProvideChoice supplies the promotion piece.
func (c *Controller) SubmitMove(ctx context.Context, move models.Move) (*Resolution, error) {
	snap := c.history.Current()
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	needsChoice := false
	if advisor, ok := c.advisors[snap.GameType]; ok {
		if err := advisor.CheckMove(snap.State, move); err != nil {
			return nil, err
		}
		if move.Promotion == "" {
			var err error
			needsChoice, err = advisor.NeedsChoice(snap.State, move)
			if err != nil {
				return nil, err
			}
		}
	}

	res, err := c.resolver.SubmitMove(ctx, c.GameID(), move, needsChoice)
	c.afterResolution(res)
	return res, err
}

// ProvideChoice completes a pending promotion move.
func (c *Controller) ProvideChoice(ctx context.Context, promotion string) (*Resolution, error) {
	res, err := c.resolver.ProvideChoice(ctx, c.GameID(), promotion)
	c.afterResolution(res)
	return res, err
}

// CancelPending drops a move held for a promotion choice.
func (c *Controller) CancelPending() {
	c.resolver.CancelPending()
}

// Delete removes the tracked game on the server and stops the engine.
func (c *Controller) Delete(ctx context.Context) error {
	gameID := c.GameID()
	if gameID == "" {
		return ErrNoSnapshot
	}
	c.teardown()
	return c.api.DeleteGame(ctx, gameID)
}

// rebase is handed to the resolver: swap to the branched game before the
// move is submitted against it.
func (c *Controller) rebase(seed *models.GameSnapshot) error {
	c.mu.Lock()
	oldID := c.gameID
	ctx := c.runCtx
	c.gameID = seed.ID
	c.finished = seed.IsFinished
	c.mu.Unlock()

	c.syncer.Stop(oldID)
	c.history.Reset(seed)
	c.emitSnapshot(seed, true)

	if ctx == nil {
		ctx = context.Background()
	}
	return c.syncer.Start(ctx, seed.ID, seed.Version, c.applyLive, c.handleTerminal)
}

// applyLive feeds sync-loop snapshots into history.
func (c *Controller) applyLive(snap *models.GameSnapshot) {
	if !c.history.Push(snap) {
		return
	}
	c.emitSnapshot(snap, !c.history.CanRedo())
	if snap.IsFinished {
		c.markFinished(snap)
	}
}

// applyAuthoritative merges a finalize response into history as the new
// live head.
func (c *Controller) applyAuthoritative(snap *models.GameSnapshot, events []models.GameEvent) {
	c.applyLive(snap)
	if len(events) > 0 && c.callbacks.OnEvents != nil {
		c.callbacks.OnEvents(events)
	}
}

func (c *Controller) afterResolution(res *Resolution) {
	if res == nil || res.Result == nil {
		return
	}
	if res.Result.NewState != nil {
		c.applyLive(res.Result.NewState)
	}
	if len(res.Result.NewEvents) > 0 && c.callbacks.OnEvents != nil {
		c.callbacks.OnEvents(res.Result.NewEvents)
	}
}

func (c *Controller) handleTerminal(err error) {
	if c.callbacks.OnTerminal != nil {
		c.callbacks.OnTerminal(err)
	}
}

func (c *Controller) markFinished(snap *models.GameSnapshot) {
	c.mu.Lock()
	already := c.finished
	c.finished = true
	c.mu.Unlock()
	if !already && c.callbacks.OnFinished != nil {
		c.callbacks.OnFinished(snap)
	}
}

// runTicks re-derives clock displays once per interval while the view is
// live and the game unfinished, and lets the finalizer observe each
// derivation. Ticking pauses during time travel and stops for good once
// the live game finishes.
func (c *Controller) runTicks(ctx context.Context) {
	ticker := c.clock.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		snap := c.history.Current()
		if snap == nil || c.history.CanRedo() {
			continue
		}
		if snap.IsFinished {
			return
		}

		now := c.clock.Now()
		if c.callbacks.OnClocks != nil {
			c.callbacks.OnClocks(ClockDisplays(snap, now))
		}

		// Off the tick loop so a slow finalize round trip cannot stall
		// the countdown; the guard keeps re-evaluation to one request.
		go c.finalizer.Evaluate(ctx, snap, now)
	}
}

func (c *Controller) teardown() {
	c.mu.Lock()
	gameID := c.gameID
	cancel := c.tickCancel
	c.tickCancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if gameID != "" {
		c.syncer.Stop(gameID)
	}
	log.Debug().Str("game_id", gameID).Msg("controller torn down")
}

func (c *Controller) emitSnapshot(snap *models.GameSnapshot, live bool) {
	if snap != nil && c.callbacks.OnSnapshot != nil {
		c.callbacks.OnSnapshot(snap, live)
	}
}
