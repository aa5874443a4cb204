package gamesync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// fakeAPI composes the collaborator fakes into the full API surface.
type fakeAPI struct {
	*scriptedFetcher
	*fakeGameAPI
	*fakeFinalizeAPI

	deleteMu sync.Mutex
	deleted  []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		scriptedFetcher: newScriptedFetcher(),
		fakeGameAPI:     &fakeGameAPI{},
		fakeFinalizeAPI: &fakeFinalizeAPI{},
	}
}

func (f *fakeAPI) DeleteGame(ctx context.Context, gameID string) error {
	f.deleteMu.Lock()
	defer f.deleteMu.Unlock()
	f.deleted = append(f.deleted, gameID)
	return nil
}

func testController(t *testing.T, api API, clock clockwork.Clock, callbacks Callbacks) *Controller {
	t.Helper()
	c := NewController(api, clock, ControllerConfig{
		PlayerID:     "p1",
		SourceAgent:  "agent-7",
		OpponentMode: models.OpponentModeAgent,
		WaitSeconds:  25,
		TickInterval: time.Second,
	}, callbacks)
	t.Cleanup(c.Stop)
	return c
}

func TestControllerLoadAndLiveUpdates(t *testing.T) {
	api := newFakeAPI()
	snapshots := make(chan *models.GameSnapshot, 16)
	c := testController(t, api, clockwork.NewRealClock(), Callbacks{
		OnSnapshot: func(s *models.GameSnapshot, live bool) {
			if live {
				snapshots <- s
			}
		},
	})

	api.results <- fetchResult{snap: snapshotV(1)}
	if err := c.Load(context.Background(), "g1"); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := waitFor(t, snapshots); got.Version != 1 {
		t.Fatalf("initial snapshot version = %d, want 1", got.Version)
	}

	api.results <- fetchResult{snap: snapshotV(2)}
	if got := waitFor(t, snapshots); got.Version != 2 {
		t.Fatalf("live snapshot version = %d, want 2", got.Version)
	}
	if c.CanRedo() {
		t.Fatalf("view should be at the live head")
	}
}

func TestControllerUndoThenMoveBranches(t *testing.T) {
	api := newFakeAPI()
	c := testController(t, api, clockwork.NewRealClock(), Callbacks{})

	api.results <- fetchResult{snap: snapshotV(1)}
	if err := c.Load(context.Background(), "g1"); err != nil {
		t.Fatalf("load: %v", err)
	}

	api.results <- fetchResult{snap: snapshotV(2)}
	api.results <- fetchResult{snap: snapshotV(3)}
	deadline := time.After(2 * time.Second)
	for c.Current() == nil || c.Current().Version != 3 {
		select {
		case <-deadline:
			t.Fatalf("history never reached version 3")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	c.Undo()
	c.Undo()
	if got := c.Current().Version; got != 1 {
		t.Fatalf("cursor at version %d, want 1", got)
	}
	if !c.CanRedo() {
		t.Fatalf("view should be detached after undo")
	}

	res, err := c.SubmitMove(context.Background(), models.Move{UCI: "e2e4"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Branched {
		t.Fatalf("move from a historical snapshot must branch")
	}
	if got := c.GameID(); got != "g2" {
		t.Fatalf("controller tracks %q, want the branched game g2", got)
	}
	if c.CanRedo() || c.CanUndo() {
		t.Fatalf("history should be reseeded from the branch seed")
	}
	if req := api.moveReqs[0]; req.GameID != "g2" {
		t.Fatalf("move submitted against %q, want g2", req.GameID)
	}
}

func TestControllerTicksAndFinalizesTimeout(t *testing.T) {
	fc := clockwork.NewFakeClock()
	api := newFakeAPI()

	next := snapshotV(6)
	next.IsFinished = true
	api.fakeFinalizeAPI.result = &models.FinalizeTimeoutResult{NewState: next, IsFinished: true}

	clocks := make(chan map[string]time.Duration, 16)
	finished := make(chan *models.GameSnapshot, 1)
	c := testController(t, api, fc, Callbacks{
		OnClocks:   func(d map[string]time.Duration) { clocks <- d },
		OnFinished: func(s *models.GameSnapshot) { finished <- s },
	})

	last := fc.Now().Add(-20 * time.Second).UnixMilli()
	expired := &models.GameSnapshot{
		ID:              "g1",
		Version:         5,
		CurrentPlayerID: "p1",
		RemainingTimeMs: map[string]int64{"p1": 10000, "p2": 30000},
		LastTimestampMs: &last,
	}

	api.results <- fetchResult{snap: expired}
	if err := c.Load(context.Background(), "g1"); err != nil {
		t.Fatalf("load: %v", err)
	}

	fc.BlockUntil(1)
	fc.Advance(time.Second)

	select {
	case displays := <-clocks:
		if displays["p1"] != 0 {
			t.Fatalf("expired p1 clock displays %v, want 0", displays["p1"])
		}
		if displays["p2"] != 30*time.Second {
			t.Fatalf("off-move p2 clock displays %v, want 30s", displays["p2"])
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for clock tick")
	}

	select {
	case snap := <-finished:
		if snap.Version != 6 {
			t.Fatalf("finished at version %d, want 6 from the finalize response", snap.Version)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for timeout finalization")
	}

	if got := api.fakeFinalizeAPI.callCount(); got != 1 {
		t.Fatalf("finalize calls = %d, want 1", got)
	}
}

func TestControllerDelete(t *testing.T) {
	api := newFakeAPI()
	c := testController(t, api, clockwork.NewRealClock(), Callbacks{})

	api.results <- fetchResult{snap: snapshotV(1)}
	if err := c.Load(context.Background(), "g1"); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := c.Delete(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	api.deleteMu.Lock()
	defer api.deleteMu.Unlock()
	if len(api.deleted) != 1 || api.deleted[0] != "g1" {
		t.Fatalf("deleted = %v, want [g1]", api.deleted)
	}
}
