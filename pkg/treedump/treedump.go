// Package treedump exports a finished mcts search tree to Graphviz DOT
// for offline inspection. It is not part of the search hot path.
package treedump

import (
	"fmt"
	"io"

	"github.com/awalterschulze/gographviz"

	"github.com/takmcts/engine/pkg/mcts"
	"github.com/takmcts/engine/pkg/position"
)

const graphName = "search"

// WriteDOT reads tree without modifying it and writes a DOT graph to w
// holding the root and, when maxDepth >= 1, one node per root child
// (visited or not). Each node is labelled with its visit count and its
// share of the root's child visits; deeper levels are not written, and
// mean action values and priors are not shown.
func WriteDOT[M position.Move](w io.Writer, tree *mcts.Tree[M], maxDepth int) error {
	graph := gographviz.NewGraph()
	if err := graph.SetName(graphName); err != nil {
		return err
	}
	if err := graph.SetDir(true); err != nil {
		return err
	}

	rootLabel := "root"
	if err := graph.AddNode(graphName, rootLabel, dumpAttrs(tree.RootVisits(), 1)); err != nil {
		return err
	}

	dist := tree.RootDistribution()
	walkChildren(graph, rootLabel, dist, 1, maxDepth)

	_, err := io.WriteString(w, graph.String())
	return err
}

// walkChildren renders one level of a MoveVisits report as DOT nodes
// and edges hanging off parentLabel. Deeper recursion would need
// mcts.Tree to expose per-child sub-distributions; that accessor isn't
// part of the public API, so this export is intentionally bounded to
// the root's direct children — enough to eyeball a finished search's
// move ranking.
func walkChildren[M position.Move](graph *gographviz.Graph, parentLabel string, dist []mcts.MoveVisits[M], depth, maxDepth int) {
	if depth > maxDepth {
		return
	}
	for i, d := range dist {
		label := fmt.Sprintf("%s_%d", parentLabel, i)
		_ = graph.AddNode(graphName, label, dumpAttrs(d.Visits, d.Fraction))
		_ = graph.AddEdge(parentLabel, label, true, map[string]string{
			"label": fmt.Sprintf("\"%v\"", d.Move),
		})
	}
}

func dumpAttrs(visits uint32, fraction float32) map[string]string {
	return map[string]string{
		"label": fmt.Sprintf("\"visits=%d fraction=%.3f\"", visits, fraction),
	}
}
