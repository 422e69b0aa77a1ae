// Package mcts implements the search core: tree selection via PUCT,
// policy/value-guided expansion, backpropagation, time and node budget
// controls, and the public PlayMoveTime / MCTSTraining / BestMove entry
// points. Tree storage is the pkg/arena slab allocator; selection,
// expansion, and backup all operate on arena indices rather than native
// pointers so a whole search tree lives in one bounded buffer.
package mcts

import (
	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/takmcts/engine/pkg/arena"
	"github.com/takmcts/engine/pkg/errs"
	"github.com/takmcts/engine/pkg/linear"
	"github.com/takmcts/engine/pkg/position"
	"github.com/takmcts/engine/pkg/tt"
)

// slotSize is the arena's maximum single-value payload size in bytes,
// sized generously for a node[M] with a modest move encoding; callers
// with wider move types still get a correctness check for free via
// arena.Supports at tree construction.
const slotSize = 64

// Tree owns one search: its arena, its root, and the shared collaborators
// (value/policy models, optional transposition table) it was built with.
// One Tree is used by exactly one single-threaded search at a time.
type Tree[M position.Move] struct {
	arena    *arena.Arena
	root     arena.Index[node[M]]
	settings Settings
	table    *tt.Table // may be nil, which disables caching; Settings.TTSizeBuckets is not read here

	valueModel  linear.ValueModel
	policyModel linear.PolicyModel

	rng       *distrand.Rand
	rngSource distrand.Source

	rootDirichlet []float64 // sampled once, only when settings.DirichletEnabled

	listener StatsListener

	playouts int
}

// New constructs a Tree rooted at pos's current position. If table is
// shared with other searches, New bumps its generation counter first so
// entries written by earlier searches age out correctly. It then
// allocates the arena per settings.MemoryBudgetBytes, expands the root
// immediately so priors exist before the first selection, and — if
// Dirichlet noise is enabled — draws the root noise sample now, from
// the explicitly supplied seed rather than a process-global source, so
// two trees built with the same seed select identically.
func New[M position.Move](pos position.Position[M], settings Settings, valueModel linear.ValueModel, policyModel linear.PolicyModel, table *tt.Table, seed uint64) (*Tree[M], error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	capacity := int(settings.MemoryBudgetBytes / slotSize)
	if capacity < 1 {
		capacity = 1
	}

	source := distrand.NewSource(seed)
	t := &Tree[M]{
		arena:       arena.New(capacity, slotSize),
		settings:    settings,
		table:       table,
		valueModel:  valueModel,
		policyModel: policyModel,
		rng:         distrand.New(source),
		rngSource:   source,
	}

	if !arena.Supports[node[M]](t.arena) {
		return nil, errs.InvalidConfiguration("node type does not fit within one arena slot; widen Move or raise slot size")
	}

	if table != nil {
		table.NextGeneration()
	}

	rootIdx, ok := arena.Add(t.arena, node[M]{})
	if !ok {
		return nil, errs.InternalInvariant("arena too small to hold even the root node")
	}
	t.root = rootIdx

	if _, err := t.expand(pos, rootIdx); err != nil {
		return nil, err
	}

	if settings.DirichletEnabled {
		t.mixRootNoise(pos)
	}

	return t, nil
}

func (t *Tree[M]) getNode(idx arena.Index[node[M]]) *node[M] {
	return arena.Get(t.arena, idx)
}

func (t *Tree[M]) getEdges(n *node[M]) []edge[M] {
	return arena.GetSlice(t.arena, n.children)
}

// RootVisits returns the root's completed rollout count, used by
// FixedNodes time control and the "monotone visits" testable property.
func (t *Tree[M]) RootVisits() uint32 {
	return t.getNode(t.root).visits
}

// ArenaUtilization returns the fraction (0..1) of slot capacity
// consumed, the same figure the search loop polls to detect a full arena.
func (t *Tree[M]) ArenaUtilization() float64 {
	return t.arena.Utilization()
}

// ArenaStats exposes the raw allocator counters for diagnostics.
func (t *Tree[M]) ArenaStats() arena.ArenaStats {
	return t.arena.Stats()
}

// RootDistribution returns the empirical (move, visits/Σvisits) list
// over root children — the search's reported output.
func (t *Tree[M]) RootDistribution() []MoveVisits[M] {
	root := t.getNode(t.root)
	edges := t.getEdges(root)
	out := make([]MoveVisits[M], 0, len(edges))
	var total uint32
	visits := make([]uint32, len(edges))
	for i, e := range edges {
		if e.child.IsNone() {
			continue
		}
		v := t.getNode(e.child).visits
		visits[i] = v
		total += v
	}
	if total == 0 {
		// Root never descended into any child (no search iteration has
		// run yet): report a uniform distribution over legal moves so
		// callers still get a valid, normalised report.
		if len(edges) == 0 {
			return out
		}
		uniform := float32(1) / float32(len(edges))
		for _, e := range edges {
			out = append(out, MoveVisits[M]{Move: e.move, Visits: 0, Fraction: uniform})
		}
		return out
	}
	for i, e := range edges {
		out = append(out, MoveVisits[M]{
			Move:     e.move,
			Visits:   visits[i],
			Fraction: float32(visits[i]) / float32(total),
		})
	}
	return out
}

// MoveVisits is one entry of a root visit-count report.
type MoveVisits[M position.Move] struct {
	Move     M
	Visits   uint32
	Fraction float32
}

// mixRootNoise draws a single Dirichlet sample over the root's legal
// moves and mixes it into their priors: p_i := (1-eps)*p_i + eps*d_i.
// Only affects root selection, and only when settings.DirichletEnabled.
func (t *Tree[M]) mixRootNoise(pos position.Position[M]) {
	root := t.getNode(t.root)
	edges := t.getEdges(root)
	n := len(edges)
	if n == 0 {
		return
	}

	alpha := make([]float64, n)
	for i := range alpha {
		alpha[i] = float64(t.settings.DirichletAlpha)
	}
	dist := distmv.NewDirichlet(alpha, t.rngSource)
	noise := dist.Rand(nil)
	t.rootDirichlet = noise

	eps := t.settings.DirichletEps
	for i := range edges {
		d := float32(noise[i])
		edges[i].prior = (1-eps)*edges[i].prior + eps*d
	}
}
