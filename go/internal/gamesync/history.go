package gamesync

import (
	"sync"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// History is the navigable timeline of snapshots for a single game:
// snapshots arrive from the sync loop in version order, the cursor moves
// under the user's undo/redo controls. The entry at the end of the
// timeline is the live head; the cursor stays pinned to it until the
// user travels backwards.
type History struct {
	mu      sync.Mutex
	entries []*models.GameSnapshot
	cursor  int
}

func NewHistory() *History {
	return &History{cursor: -1}
}

// Reset replaces the whole timeline with a single entry and moves the
// cursor to it. Called whenever a different game id is loaded.
func (h *History) Reset(snap *models.GameSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = []*models.GameSnapshot{snap}
	h.cursor = 0
}

// Push appends a new live snapshot. Re-delivery of an already recorded
// version (or anything older) is a no-op, which keeps the timeline
// monotonic in version order. The cursor follows the live head only when
// it was already there; a time-travelling cursor stays put so the view
// is not yanked forward mid-inspection.
func (h *History) Push(snap *models.GameSnapshot) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		h.entries = append(h.entries, snap)
		h.cursor = 0
		return true
	}

	last := h.entries[len(h.entries)-1]
	if snap.Version <= last.Version {
		return false
	}

	atLive := h.cursor == len(h.entries)-1
	h.entries = append(h.entries, snap)
	if atLive {
		h.cursor = len(h.entries) - 1
	}
	return true
}

// Undo moves the cursor one snapshot back; no-op at the start of the
// timeline. Returns the snapshot at the new cursor position.
func (h *History) Undo() *models.GameSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor > 0 {
		h.cursor--
	}
	return h.currentLocked()
}

// Redo moves the cursor one snapshot forward; no-op at the live head.
func (h *History) Redo() *models.GameSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor >= 0 && h.cursor < len(h.entries)-1 {
		h.cursor++
	}
	return h.currentLocked()
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

// CanRedo reports whether the cursor sits behind the live head, i.e. the
// user is viewing a historical snapshot.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor >= 0 && h.cursor < len(h.entries)-1
}

// Current returns the snapshot at the cursor, nil when empty.
func (h *History) Current() *models.GameSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentLocked()
}

// Live returns the snapshot at the end of the timeline, nil when empty.
func (h *History) Live() *models.GameSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return nil
	}
	return h.entries[len(h.entries)-1]
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) currentLocked() *models.GameSnapshot {
	if h.cursor < 0 || h.cursor >= len(h.entries) {
		return nil
	}
	return h.entries[h.cursor]
}
