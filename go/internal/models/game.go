package models

import (
	"encoding/json"
	"time"
)

// GameType defines the kind of game a snapshot belongs to.
type GameType string

const (
	GameTypeChess GameType = "chess"
	GameTypePoker GameType = "poker"
)

// OpponentMode defines who plays the other side of a branched game.
type OpponentMode string

const (
	OpponentModeAgent OpponentMode = "agent"
	OpponentModeSelf  OpponentMode = "self"
)

// GameSnapshot is a complete, immutable description of a game at one
// server-assigned version. The State blob is game-specific (chess: FEN,
// poker: table state) and is only interpreted by the per-game rules
// adapters, never by the sync engine itself.
type GameSnapshot struct {
	ID              string           `json:"id"`
	GameType        GameType         `json:"game_type"`
	Version         int64            `json:"version"`
	TurnNumber      int              `json:"turn_number"`
	IsFinished      bool             `json:"is_finished"`
	Winner          string           `json:"winner,omitempty"`
	CurrentPlayerID string           `json:"current_player_id"`
	State           json.RawMessage  `json:"state"`
	RemainingTimeMs map[string]int64 `json:"remaining_time_ms,omitempty"`
	// LastTimestampMs is the server wall-clock time (unix millis) the
	// snapshot was produced; nil while timers are inactive.
	LastTimestampMs *int64 `json:"last_timestamp_ms,omitempty"`
}

// TimersActive reports whether the server is running clocks for this game.
func (s *GameSnapshot) TimersActive() bool {
	return s.LastTimestampMs != nil && len(s.RemainingTimeMs) > 0
}

// LastTimestamp converts LastTimestampMs to a time.Time. Zero when timers
// are inactive.
func (s *GameSnapshot) LastTimestamp() time.Time {
	if s.LastTimestampMs == nil {
		return time.Time{}
	}
	return time.UnixMilli(*s.LastTimestampMs)
}

// GameEvent is a single entry of a game's event log (moves, chat,
// lifecycle notices). The engine only transports these; formatting is up
// to the consumer.
type GameEvent struct {
	ID        string          `json:"id"`
	GameID    string          `json:"game_id"`
	Type      string          `json:"type"`
	Message   string          `json:"message,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
