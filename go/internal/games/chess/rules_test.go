package chess

import (
	"encoding/json"
	"testing"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

const (
	startFEN     = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	promotionFEN = "4k3/P7/8/8/8/8/8/4K3 w - - 0 1"
)

func stateJSON(t *testing.T, fen string) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(State{FEN: fen})
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	return data
}

func TestCheckMoveLegal(t *testing.T) {
	advisor := NewAdvisor()
	if err := advisor.CheckMove(stateJSON(t, startFEN), models.Move{UCI: "e2e4"}); err != nil {
		t.Fatalf("e2e4 from the start position should be legal: %v", err)
	}
}

func TestCheckMoveIllegal(t *testing.T) {
	advisor := NewAdvisor()
	if err := advisor.CheckMove(stateJSON(t, startFEN), models.Move{UCI: "e2e5"}); err == nil {
		t.Fatalf("e2e5 from the start position should be rejected")
	}
}

func TestNeedsChoiceForPromotion(t *testing.T) {
	advisor := NewAdvisor()

	needs, err := advisor.NeedsChoice(stateJSON(t, promotionFEN), models.Move{UCI: "a7a8"})
	if err != nil {
		t.Fatalf("needs choice: %v", err)
	}
	if !needs {
		t.Fatalf("a7a8 is a promotion and must require a piece choice")
	}
}

func TestNeedsChoiceFalseForOrdinaryMove(t *testing.T) {
	advisor := NewAdvisor()

	needs, err := advisor.NeedsChoice(stateJSON(t, startFEN), models.Move{UCI: "e2e4"})
	if err != nil {
		t.Fatalf("needs choice: %v", err)
	}
	if needs {
		t.Fatalf("e2e4 is not a promotion")
	}
}

func TestNeedsChoiceFalseWhenChoiceSupplied(t *testing.T) {
	advisor := NewAdvisor()

	needs, err := advisor.NeedsChoice(stateJSON(t, promotionFEN), models.Move{UCI: "a7a8q"})
	if err != nil {
		t.Fatalf("needs choice: %v", err)
	}
	if needs {
		t.Fatalf("a move already carrying its promotion piece needs no choice")
	}
}

func TestCheckMoveCompletedPromotion(t *testing.T) {
	advisor := NewAdvisor()

	if err := advisor.CheckMove(stateJSON(t, promotionFEN), models.Move{UCI: "a7a8", Promotion: "q"}); err != nil {
		t.Fatalf("a7a8q should be legal: %v", err)
	}
}

func TestCheckMovePendingPromotionPasses(t *testing.T) {
	advisor := NewAdvisor()

	// An under-specified promotion is not an illegal move; it is held for
	// a choice instead.
	if err := advisor.CheckMove(stateJSON(t, promotionFEN), models.Move{UCI: "a7a8"}); err != nil {
		t.Fatalf("pending promotion should pass the legality check: %v", err)
	}
}

func TestSideToMove(t *testing.T) {
	advisor := NewAdvisor()

	side, err := advisor.SideToMove(stateJSON(t, startFEN))
	if err != nil {
		t.Fatalf("side to move: %v", err)
	}
	if side != "white" {
		t.Fatalf("side = %s, want white", side)
	}

	blackFEN := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	side, err = advisor.SideToMove(stateJSON(t, blackFEN))
	if err != nil {
		t.Fatalf("side to move: %v", err)
	}
	if side != "black" {
		t.Fatalf("side = %s, want black", side)
	}
}

func TestBadStateBlob(t *testing.T) {
	advisor := NewAdvisor()

	if _, err := advisor.NeedsChoice(json.RawMessage(`{"fen":"not a fen"}`), models.Move{UCI: "e2e4"}); err == nil {
		t.Fatalf("invalid FEN should error")
	}
	if err := advisor.CheckMove(json.RawMessage(`not json`), models.Move{UCI: "e2e4"}); err == nil {
		t.Fatalf("undecodable state should error")
	}
}
