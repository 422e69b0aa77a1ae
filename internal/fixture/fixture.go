// Package fixture implements a tiny synthetic placement game used only
// by pkg/mcts's own tests. It is not a Tak engine and enforces no real
// Tak legality — it exists purely so the generic search core has a
// concrete position.Position[M] to drive end to end.
package fixture

import (
	"math/rand"

	"github.com/takmcts/engine/pkg/position"
)

// Move places a stone on one empty cell, identified by its board index.
type Move int

// Game is an N*N board where players alternately place a stone on any
// empty cell. The game ends in a win for the side that just moved when
// they complete a straight line of RoadLength consecutive stones along
// a row or column, or in a draw once the board fills. This is a
// deliberately simplified stand-in for Tak's road-win condition, chosen
// to exercise exactly the same terminal-detection and move-generation
// shape pkg/mcts depends on, without requiring a real Tak rules
// implementation.
type Game struct {
	size       int
	roadLength int
	cells      []int8 // 0 = empty, 1 = white, 2 = black
	toMove     position.Color
	plies      int
	zobrist    []uint64 // size*size*2 table, indexed [cell*2 + colorIndex]
	hash       uint64
}

// New builds an empty board of size*size cells. seed controls the
// Zobrist table so hashes are reproducible across runs with the same
// seed.
func New(size, roadLength int, seed int64) *Game {
	rng := rand.New(rand.NewSource(seed))
	zobrist := make([]uint64, size*size*2)
	for i := range zobrist {
		zobrist[i] = rng.Uint64()
	}
	return &Game{
		size:       size,
		roadLength: roadLength,
		cells:      make([]int8, size*size),
		toMove:     position.White,
		zobrist:    zobrist,
	}
}

func (g *Game) colorIndex(c position.Color) int {
	if c == position.White {
		return 0
	}
	return 1
}

// SideToMove implements position.Position.
func (g *Game) SideToMove() position.Color { return g.toMove }

// DoMove implements position.Position.
func (g *Game) DoMove(m Move) {
	g.cells[int(m)] = int8(g.colorIndex(g.toMove) + 1)
	g.hash ^= g.zobrist[int(m)*2+g.colorIndex(g.toMove)]
	g.toMove = opponent(g.toMove)
	g.plies++
}

// ReverseMove implements position.Position.
func (g *Game) ReverseMove(m Move) {
	g.toMove = opponent(g.toMove)
	g.hash ^= g.zobrist[int(m)*2+g.colorIndex(g.toMove)]
	g.cells[int(m)] = 0
	g.plies--
}

// GenerateMoves implements position.Position.
func (g *Game) GenerateMoves(out *[]Move) {
	*out = (*out)[:0]
	for i, c := range g.cells {
		if c == 0 {
			*out = append(*out, Move(i))
		}
	}
}

// GameResult implements position.Position: the side that just moved
// wins if they completed a road; the side to move next reports that as
// a loss for itself.
func (g *Game) GameResult() (position.Result, bool) {
	justMoved := opponent(g.toMove)
	if g.hasRoad(int8(g.colorIndex(justMoved) + 1)) {
		return position.ResultLoss, true // from g.toMove's perspective, it just lost
	}
	if g.plies == g.size*g.size {
		return position.ResultDraw, true
	}
	return position.ResultNone, false
}

// ZobristHash implements position.Position.
func (g *Game) ZobristHash() uint64 { return g.hash }

// HalfMovesPlayed implements position.Position.
func (g *Game) HalfMovesPlayed() int { return g.plies }

// ValueFeatures returns a small fixed feature vector: stone-count
// differential and center control, enough to give the linear value
// model something non-degenerate to dot against.
func (g *Game) ValueFeatures() []float32 {
	var mine, theirs, centerMine float32
	me := g.colorIndex(g.toMove) + 1
	center := g.size / 2
	for i, c := range g.cells {
		switch int(c) {
		case me:
			mine++
			if row, col := i/g.size, i%g.size; abs(row-center) <= 1 && abs(col-center) <= 1 {
				centerMine++
			}
		case 0:
		default:
			theirs++
		}
	}
	return []float32{mine - theirs, centerMine, 1}
}

// PolicyFeatures returns a feature vector for placing at m: center
// distance and a constant bias term.
func (g *Game) PolicyFeatures(m Move) []float32 {
	row, col := int(m)/g.size, int(m)%g.size
	center := g.size / 2
	dist := float32(abs(row-center) + abs(col-center))
	return []float32{-dist, 1}
}

func (g *Game) hasRoad(player int8) bool {
	n := g.size
	at := func(r, c int) int8 { return g.cells[r*n+c] }

	for r := 0; r < n; r++ {
		run := 0
		for c := 0; c < n; c++ {
			if at(r, c) == player {
				run++
				if run >= g.roadLength {
					return true
				}
			} else {
				run = 0
			}
		}
	}
	for c := 0; c < n; c++ {
		run := 0
		for r := 0; r < n; r++ {
			if at(r, c) == player {
				run++
				if run >= g.roadLength {
					return true
				}
			} else {
				run = 0
			}
		}
	}
	return false
}

func opponent(c position.Color) position.Color {
	if c == position.White {
		return position.Black
	}
	return position.White
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
