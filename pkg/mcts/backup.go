package mcts

import "github.com/takmcts/engine/pkg/arena"

// pathStep records one traversal step so the search loop can walk the
// path read-only on the way down and replay it with ordinary exclusive
// access on the way back up, rather than holding mutable references to
// every node on the path at once.
type pathStep[M any] struct {
	node arena.Index[node[M]]
}

// backup walks path in reverse, accumulating v into each node's running
// mean and flipping its sign at every ply so each node sees the value
// from its own side-to-move.
func (t *Tree[M]) backup(path []pathStep[M], leafValue float32) {
	v := leafValue
	for i := len(path) - 1; i >= 0; i-- {
		v = 1 - v // the node one ply back sees the opposite side's value
		n := t.getNode(path[i].node)
		n.accumulate(v)
	}
}
