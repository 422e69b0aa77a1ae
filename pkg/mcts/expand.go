package mcts

import (
	"github.com/chewxy/math32"

	"github.com/takmcts/engine/pkg/arena"
	"github.com/takmcts/engine/pkg/linear"
	"github.com/takmcts/engine/pkg/position"
)

// expand turns the leaf at idx into an internal node: checks for a
// terminal result, probes the transposition table or falls back to a
// static evaluation, generates legal moves and scores them with the
// policy model, allocates the child edge array, and optionally runs a
// shallow rollout blended with the static eval. It returns the
// resulting value from the leaf's own side-to-move perspective.
func (t *Tree[M]) expand(pos position.Position[M], idx arena.Index[node[M]]) (float32, error) {
	n := t.getNode(idx)

	// Step 1: terminal check.
	if result, ok := pos.GameResult(); ok {
		n.terminal = true
		n.terminalResult = result
		v := result.Value()
		n.meanActionValue = v
		n.visits = 1
		return v, nil
	}

	hash := pos.ZobristHash()

	// Steps 2-3: TT probe, else static eval via the value linear model.
	var staticEval float32
	if cached, ok := t.probeTT(hash); ok {
		staticEval = cached
	} else {
		staticEval = t.valueModel.Eval(pos.ValueFeatures())
		t.insertTT(hash, staticEval, 1)
	}
	n.heuristicScore = staticEval
	n.meanActionValue = staticEval

	// Step 4: generate legal moves, score each with the policy model,
	// softmax over the full legal set.
	var moves []M
	pos.GenerateMoves(&moves)

	if len(moves) == 0 {
		// No legal moves and not flagged terminal by the collaborator:
		// treat as a draw-valued dead end rather than crashing the
		// search (an external-collaborator contract violation, not an
		// internal invariant of this module).
		n.terminal = true
		n.terminalResult = 0
		n.meanActionValue = 0.5
		n.visits = 1
		return 0.5, nil
	}

	logits := make([]float32, len(moves))
	for i, m := range moves {
		logits[i] = t.policyModel.Logit(pos.PolicyFeatures(m))
	}
	priors := linear.Softmax(logits)

	// Step 5: allocate the child array. A failed allocation leaves this
	// node a permanent "stunted" leaf — not an error, a graceful degrade
	// the search loop treats as a stop signal (runIteration returns false).
	edges := make([]edge[M], len(moves))
	for i, m := range moves {
		edges[i] = edge[M]{move: m, prior: priors[i]}
	}
	sliceIdx, ok := arena.AddSlice(t.arena, edges)
	if ok {
		n.children = sliceIdx
	}

	// Step 6: optional shallow rollout, blended with the static eval.
	value := staticEval
	if t.settings.RolloutDepth > 0 {
		rolloutValue := t.rollout(pos, t.settings.RolloutDepth)
		value = (staticEval + rolloutValue) / 2
	}

	n.meanActionValue = value
	n.visits = 1
	return value, nil
}

func (t *Tree[M]) probeTT(hash uint64) (float32, bool) {
	if t.table == nil {
		return 0, false
	}
	return t.table.Get(hash)
}

func (t *Tree[M]) insertTT(hash uint64, value float32, visits uint32) {
	if t.table == nil {
		return
	}
	t.table.Insert(hash, value, visits)
}

// rollout performs a policy-greedy-with-temperature playout for up to
// depth plies past a freshly expanded leaf, stopping early at a terminal
// position. The position is mutated and then fully unwound via
// ReverseMove so the caller's position is left exactly as it was passed
// in.
func (t *Tree[M]) rollout(pos position.Position[M], depth int) float32 {
	played := make([]M, 0, depth)
	defer func() {
		for i := len(played) - 1; i >= 0; i-- {
			pos.ReverseMove(played[i])
		}
	}()

	rootSide := pos.SideToMove()
	for i := 0; i < depth; i++ {
		if result, ok := pos.GameResult(); ok {
			v := result.Value()
			if pos.SideToMove() != rootSide {
				v = 1 - v
			}
			return v
		}

		var moves []M
		pos.GenerateMoves(&moves)
		if len(moves) == 0 {
			return 0.5
		}

		logits := make([]float32, len(moves))
		for j, m := range moves {
			logits[j] = t.policyModel.Logit(pos.PolicyFeatures(m))
		}
		priors := linear.Softmax(logits)

		rng := func() float32 { return t.rng.Float32() }
		chosen := argmaxTemperature(priors, t.settings.RolloutTemperature, rng)
		pos.DoMove(moves[chosen])
		played = append(played, moves[chosen])
	}

	value := t.valueModel.Eval(pos.ValueFeatures())
	if pos.SideToMove() != rootSide {
		value = 1 - value
	}
	return value
}

// argmaxTemperature picks an index from priors by temperature-weighted
// sampling, falling back to arg-max at low temperature — the same
// move-choice rule the root uses at the end of a search, reused here
// for rollout move selection.
func argmaxTemperature(priors []float32, tau float32, float32rand func() float32) int {
	if tau <= 1e-3 || len(priors) == 0 {
		best := 0
		for i := range priors {
			if priors[i] > priors[best] {
				best = i
			}
		}
		return best
	}
	weights := make([]float32, len(priors))
	var sum float32
	for i, p := range priors {
		w := math32.Pow(p, 1/tau)
		weights[i] = w
		sum += w
	}
	if sum <= 1e-12 {
		return 0
	}
	r := float32rand() * sum
	var cum float32
	for i, w := range weights {
		cum += w
		if r <= cum {
			return i
		}
	}
	return len(priors) - 1
}
