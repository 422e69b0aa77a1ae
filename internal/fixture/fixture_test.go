package fixture_test

import (
	"testing"

	"github.com/takmcts/engine/internal/fixture"
	"github.com/takmcts/engine/pkg/position"
)

func TestDoMoveReverseMoveRoundTrip(t *testing.T) {
	g := fixture.New(5, 4, 1)
	var moves []fixture.Move
	g.GenerateMoves(&moves)
	if len(moves) != 25 {
		t.Fatalf("expected 25 legal moves on an empty 5x5 board, got %d", len(moves))
	}

	before := g.ZobristHash()
	m := moves[3]
	g.DoMove(m)
	if g.ZobristHash() == before {
		t.Fatalf("hash did not change after DoMove")
	}
	g.ReverseMove(m)
	if g.ZobristHash() != before {
		t.Fatalf("hash after ReverseMove = %d, want original %d", g.ZobristHash(), before)
	}
}

func TestRoadWinIsTerminal(t *testing.T) {
	g := fixture.New(4, 4, 2)
	// White fills the entire top row, winning the road; black plays
	// elsewhere in between so the alternation stays legal.
	whiteRow := []fixture.Move{0, 1, 2, 3}
	blackCells := []fixture.Move{4, 5, 6}
	for i, m := range whiteRow {
		g.DoMove(m)
		if _, ok := g.GameResult(); ok && i < len(whiteRow)-1 {
			t.Fatalf("game ended early after %d white moves", i+1)
		}
		if i < len(blackCells) {
			g.DoMove(blackCells[i])
		}
	}

	result, ok := g.GameResult()
	if !ok {
		t.Fatalf("expected the position to be terminal after a completed road")
	}
	if result != position.ResultLoss {
		t.Fatalf("result = %v, want ResultLoss (reported from the side that didn't complete the road)", result)
	}
}
