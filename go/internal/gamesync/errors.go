package gamesync

import "errors"

var (
	// ErrSessionActive is returned when a sync session is started for a
	// game id that already has one running. Duplicate starts are rejected,
	// not queued.
	ErrSessionActive = errors.New("sync session already active for game")

	// ErrChoiceRequired is returned when a move needs a follow-up choice
	// (pawn promotion) before it can be submitted. The move is held as
	// pending until the choice is provided.
	ErrChoiceRequired = errors.New("move requires a promotion choice")

	// ErrNoPendingMove is returned when a choice arrives without a held
	// move, e.g. after the pending move was cancelled.
	ErrNoPendingMove = errors.New("no pending move awaiting a choice")

	// ErrNoSnapshot is returned when an operation needs a current
	// snapshot and the history is empty.
	ErrNoSnapshot = errors.New("no snapshot loaded")
)
