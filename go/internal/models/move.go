package models

// Move is a proposed move for the side the user controls. UCI carries
// chess moves, Action carries poker actions; Promotion is filled in once
// the user has picked a piece for an under-specified pawn promotion.
type Move struct {
	UCI       string `json:"uci,omitempty"`
	Action    string `json:"action,omitempty"`
	Promotion string `json:"promotion,omitempty"`
}

// MoveRequest is the submit-move collaborator contract. The server
// rejects the request when ExpectedTurnNumber is stale or the move is
// illegal.
type MoveRequest struct {
	GameID             string `json:"game_id"`
	PlayerID           string `json:"player_id"`
	Move               Move   `json:"move"`
	ExpectedTurnNumber int    `json:"expected_turn_number"`
}

// MoveResult is the server's response to an accepted move.
type MoveResult struct {
	NewState   *GameSnapshot `json:"new_state"`
	NewEvents  []GameEvent   `json:"new_events,omitempty"`
	NewBalance *float64      `json:"new_balance,omitempty"`
}

// CreateFromStateRequest asks the server to create a new game instance
// seeded from a historical snapshot so play can continue from that point
// without mutating the original game.
type CreateFromStateRequest struct {
	Seed         *GameSnapshot `json:"seed"`
	SourceAgent  string        `json:"source_agent"`
	OpponentMode OpponentMode  `json:"opponent_mode"`
	Side         string        `json:"side"`
}

// FinalizeTimeoutResult is the server's response to a finalize-timeout
// request for the participant whose clock ran out.
type FinalizeTimeoutResult struct {
	NewState   *GameSnapshot `json:"new_state"`
	NewEvents  []GameEvent   `json:"new_events,omitempty"`
	IsFinished bool          `json:"is_finished"`
}
