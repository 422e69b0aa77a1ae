package mcts

import (
	"runtime"
	"time"

	"github.com/takmcts/engine/pkg/arena"
	"github.com/takmcts/engine/pkg/position"
)

// TimeControl decides when the search loop stops. Exactly one of the
// two constructors below should be used; the zero value is a Time
// control with no remaining time and no increment, which stops at the
// first clock poll, after 128 iterations.
type TimeControl struct {
	fixedNodes uint32
	isFixed    bool

	remaining time.Duration
	increment time.Duration
}

// FixedNodes stops the search once the root has accumulated n visits.
func FixedNodes(n uint32) TimeControl {
	return TimeControl{fixedNodes: n, isFixed: true}
}

// Time stops the search after a clock-derived budget computed from the
// remaining time and increment.
func Time(remaining, increment time.Duration) TimeControl {
	return TimeControl{remaining: remaining, increment: increment}
}

// budget computes the per-move thinking time for a Time control, using
// a gentler formula for the opening (fewer than 4 plies played) than
// for the middlegame and beyond.
func (tc TimeControl) budget(halfMovesPlayed int) time.Duration {
	if halfMovesPlayed < 4 {
		return min(tc.remaining/80+tc.increment/6, 40*time.Second)
	}
	return min(tc.remaining/40+tc.increment/3, 40*time.Second)
}

func min(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// StopReason explains why a search loop returned.
type StopReason int

const (
	StopBudgetReached StopReason = iota
	StopArenaFull
	StopNoLegalMoves
)

// StatsListener receives progress callbacks during a search, invoked
// synchronously from inside the search loop rather than polled after
// the fact.
type StatsListener struct {
	// OnIteration is called after every completed iteration with the
	// current root visit count.
	OnIteration func(rootVisits uint32)
	// OnStop is called exactly once when the loop exits.
	OnStop func(reason StopReason, rootVisits uint32)
}

func (l StatsListener) iteration(visits uint32) {
	if l.OnIteration != nil {
		l.OnIteration(visits)
	}
}

func (l StatsListener) stop(reason StopReason, visits uint32) {
	if l.OnStop != nil {
		l.OnStop(reason, visits)
	}
}

// SetListener installs progress callbacks for this tree's searches.
func (t *Tree[M]) SetListener(l StatsListener) {
	t.listener = l
}

// Run drives the search loop until tc's stop predicate fires or the
// arena fills. pos must be positioned at the tree's root position; Run
// mutates it via DoMove/ReverseMove during descent but always returns
// it to the root position before returning.
//
// This loop is strictly single-threaded and synchronous end to end.
// Concurrency across independent searches belongs to pkg/poolsearch,
// never inside this loop.
func (t *Tree[M]) Run(pos position.Position[M], tc TimeControl) StopReason {
	start := time.Now()
	var budget time.Duration
	if !tc.isFixed {
		budget = tc.budget(pos.HalfMovesPlayed())
	}

	root := t.getNode(t.root)
	if len(t.getEdges(root)) == 0 {
		t.listener.stop(StopNoLegalMoves, root.visits)
		return StopNoLegalMoves
	}

	var iterations int
	for {
		ok := t.runIteration(pos)
		iterations++
		t.playouts++
		root = t.getNode(t.root)
		t.listener.iteration(root.visits)

		if !ok {
			t.listener.stop(StopArenaFull, root.visits)
			return StopArenaFull
		}

		if t.settings.YieldEvery > 0 && iterations%t.settings.YieldEvery == 0 {
			runtime.Gosched()
		}

		// Poll wall-clock and arena utilisation every 128 iterations.
		if iterations%128 == 0 {
			if t.arena.Utilization() >= 1 {
				t.listener.stop(StopArenaFull, root.visits)
				return StopArenaFull
			}
			if !tc.isFixed && time.Since(start) >= budget {
				t.listener.stop(StopBudgetReached, root.visits)
				return StopBudgetReached
			}
		}

		if tc.isFixed && root.visits >= tc.fixedNodes {
			t.listener.stop(StopBudgetReached, root.visits)
			return StopBudgetReached
		}
	}
}

// runIteration performs one SELECT-then-EXPAND-then-BACKUP pass from the
// root, recording the descent as a stack of arena indices rather than a
// recursive descent, since a recursive descent would need to mutably
// alias a node across the recursive call boundary. Returns false iff the
// arena could not satisfy an allocation.
func (t *Tree[M]) runIteration(pos position.Position[M]) bool {
	var path []pathStep[M]
	var played []M
	unwind := func() {
		for i := len(played) - 1; i >= 0; i-- {
			pos.ReverseMove(played[i])
		}
	}

	current := t.root
	for {
		n := t.getNode(current)

		if n.terminal {
			// A re-visit of an already-terminal node: its own visit
			// was already counted once at expansion time, so every
			// further rollout landing here must bump it again or its
			// visits would stay stuck at 1 while every ancestor keeps
			// counting this playout.
			n.accumulate(n.meanActionValue)
			t.backup(path, n.meanActionValue)
			unwind()
			return true
		}

		edges := t.getEdges(n)
		if len(edges) == 0 {
			// Stunted leaf (children allocation failed earlier) or a
			// freshly scored leaf whose children array is still empty
			// because it has zero legal moves but wasn't flagged
			// terminal: either way, nothing further to select, but a
			// re-visit must still count toward this node's own visits.
			n.accumulate(n.meanActionValue)
			t.backup(path, n.meanActionValue)
			unwind()
			return true
		}

		best := t.selectEdge(n, edges)
		e := &edges[best]

		if e.child.IsNone() {
			pos.DoMove(e.move)
			played = append(played, e.move)

			childIdx, allocated := arena.Add(t.arena, node[M]{})
			if !allocated {
				unwind()
				return false
			}
			e.child = childIdx

			value, _ := t.expand(pos, childIdx)
			path = append(path, pathStep[M]{node: current})
			t.backup(path, value)
			unwind()
			// A non-terminal child left without a child array is a
			// stunted leaf: the arena could not hold its edges.
			child := t.getNode(childIdx)
			return child.terminal || !child.children.IsNone()
		}

		pos.DoMove(e.move)
		played = append(played, e.move)
		path = append(path, pathStep[M]{node: current})
		current = e.child
	}
}
