// Package chess adapts the generic sync engine to chess snapshots: it
// interprets the FEN state blob, pre-validates moves locally and detects
// pawn promotions that still need a piece choice.
package chess

import (
	"encoding/json"
	"fmt"

	chesslib "github.com/corentings/chess/v2"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// State is the chess-specific snapshot blob.
type State struct {
	FEN string `json:"fen"`
}

// Advisor implements gamesync.RulesAdvisor for chess.
type Advisor struct{}

func NewAdvisor() Advisor {
	return Advisor{}
}

// NeedsChoice reports whether the move is a pawn promotion missing its
// piece choice: the from/to squares match a legal promoting move but the
// UCI string carries no promotion suffix.
func (Advisor) NeedsChoice(state json.RawMessage, move models.Move) (bool, error) {
	if len(move.UCI) != 4 {
		return false, nil
	}

	game, err := gameFromState(state)
	if err != nil {
		return false, err
	}

	for _, m := range game.Position().ValidMoves() {
		if m.S1().String()+m.S2().String() == move.UCI && m.Promo() != chesslib.NoPieceType {
			return true, nil
		}
	}
	return false, nil
}

// CheckMove verifies the move is legal for the position, so illegal
// moves are rejected without a server round trip. A promotion move that
// still lacks its choice passes here; NeedsChoice handles that case.
func (a Advisor) CheckMove(state json.RawMessage, move models.Move) error {
	uci := move.UCI + move.Promotion
	if len(move.UCI) == 4 && move.Promotion == "" {
		if needs, err := a.NeedsChoice(state, move); err != nil {
			return err
		} else if needs {
			return nil
		}
	}

	game, err := gameFromState(state)
	if err != nil {
		return err
	}

	parsed, err := chesslib.UCINotation{}.Decode(game.Position(), uci)
	if err != nil {
		return fmt.Errorf("illegal move %q: %w (a check may need to be addressed first)", uci, err)
	}
	for _, m := range game.Position().ValidMoves() {
		if m.S1() == parsed.S1() && m.S2() == parsed.S2() && m.Promo() == parsed.Promo() {
			return nil
		}
	}
	return fmt.Errorf("illegal move %q (a check may need to be addressed first)", uci)
}

// SideToMove returns "white" or "black" for the position.
func (Advisor) SideToMove(state json.RawMessage) (string, error) {
	game, err := gameFromState(state)
	if err != nil {
		return "", err
	}
	if game.Position().Turn() == chesslib.White {
		return "white", nil
	}
	return "black", nil
}

func gameFromState(state json.RawMessage) (*chesslib.Game, error) {
	var s State
	if err := json.Unmarshal(state, &s); err != nil {
		return nil, fmt.Errorf("failed to decode chess state: %w", err)
	}

	fenOpt, err := chesslib.FEN(s.FEN)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", s.FEN, err)
	}
	return chesslib.NewGame(fenOpt), nil
}
