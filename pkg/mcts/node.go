package mcts

import (
	"github.com/takmcts/engine/pkg/arena"
	"github.com/takmcts/engine/pkg/position"
)

// edge is one entry in a node's child array: a legal move, the index of
// the node it leads to (none until expanded), and its prior probability
// computed once at the parent's expansion time.
type edge[M position.Move] struct {
	move  M
	child arena.Index[node[M]]
	prior float32
}

// node is the arena-resident payload for one visited position: a
// running mean action-value, visit count, the prior on the edge leading
// into it, a cached static eval for first-play-urgency, its child array,
// and terminal status. Stored through pkg/arena instead of native Go
// pointers so a whole tree lives in one bounded, bump-allocated buffer.
type node[M position.Move] struct {
	meanActionValue  float32
	visits           uint32
	priorProbability float32
	heuristicScore   float32
	children         arena.SliceIndex[edge[M]]
	terminal         bool
	terminalResult   position.Result
}

func (n *node[M]) isExpanded() bool {
	return n.terminal || !n.children.IsNone()
}

func (n *node[M]) isLeaf() bool {
	return !n.terminal && n.children.IsNone()
}

// accumulate folds one backed-up value into the node's running mean:
// new_mean = (visits*old + v) / (visits+1), where v is already expressed
// from this node's own side-to-move perspective.
func (n *node[M]) accumulate(v float32) {
	n.meanActionValue = (float32(n.visits)*n.meanActionValue + v) / float32(n.visits+1)
	n.visits++
}
