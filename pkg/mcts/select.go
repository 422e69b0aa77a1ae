package mcts

import (
	"github.com/chewxy/math32"

	"github.com/takmcts/engine/pkg/position"
)

// selectEdge applies the PUCT formula:
//
//	u(i) = q_eff(i) + c_puct * p_i * sqrt(Np) / (1 + n_i)
//
// where q_eff flips an expanded child's mean action value to the
// parent's perspective, or falls back to first-play-urgency — the
// parent's own heuristic score, reduced per already-visited sibling —
// for an edge whose child has not been expanded yet. Ties are broken by
// lowest edge index.
func (t *Tree[M]) selectEdge(parent *node[M], edges []edge[M]) int {
	if len(edges) == 0 {
		return -1
	}

	Np := float32(parent.visits)
	sqrtNp := math32.Sqrt(Np)

	visitedSiblings := 0
	for i := range edges {
		if !edges[i].child.IsNone() {
			visitedSiblings++
		}
	}

	best := -1
	var bestScore float32
	for i := range edges {
		e := &edges[i]
		var qEff float32
		if !e.child.IsNone() {
			child := t.getNode(e.child)
			qEff = 1 - child.meanActionValue
		} else {
			qEff = parent.heuristicScore - t.settings.FPUReduction*float32(visitedSiblings)
		}

		nI := float32(0)
		if !e.child.IsNone() {
			nI = float32(t.getNode(e.child).visits)
		}

		score := qEff + t.settings.CPuct*e.prior*sqrtNp/(1+nI)
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

// sampleMove draws one move from dist with temperature tau via
// pi^(1/tau) renormalised, or arg-max when tau is at or near zero.
func sampleMove[M position.Move](rng interface{ Float32() float32 }, dist []MoveVisits[M], tau float32) (M, bool) {
	var zero M
	if len(dist) == 0 {
		return zero, false
	}
	if tau <= 1e-3 {
		best := 0
		for i := range dist {
			if dist[i].Fraction > dist[best].Fraction {
				best = i
			}
		}
		return dist[best].Move, true
	}

	weights := make([]float32, len(dist))
	var sum float32
	for i, d := range dist {
		w := math32.Pow(d.Fraction, 1/tau)
		weights[i] = w
		sum += w
	}
	if sum <= math32.SmallestNonzeroFloat32 {
		return dist[0].Move, true
	}

	r := rng.Float32() * sum
	var cum float32
	for i, w := range weights {
		cum += w
		if r <= cum {
			return dist[i].Move, true
		}
	}
	return dist[len(dist)-1].Move, true
}
