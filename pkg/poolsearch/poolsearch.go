// Package poolsearch runs several independent mcts searches concurrently,
// each with its own arena and position, optionally sharing one
// transposition table. This is explicitly NOT multi-threaded tree
// search over one tree — every job here gets its own Tree, and search
// itself stays single-threaded.
package poolsearch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/takmcts/engine/pkg/linear"
	"github.com/takmcts/engine/pkg/mcts"
	"github.com/takmcts/engine/pkg/position"
	"github.com/takmcts/engine/pkg/tt"
)

// Job describes one independent search to run.
type Job[M position.Move] struct {
	Position    position.Position[M]
	Settings    mcts.Settings
	TimeControl mcts.TimeControl
	ValueModel  linear.ValueModel
	PolicyModel linear.PolicyModel
	Seed        uint64
}

// Outcome is one job's result.
type Outcome[M position.Move] struct {
	Distribution []mcts.MoveVisits[M]
	Err          error
}

// Run executes jobs concurrently, at most concurrency at a time, and
// returns one Outcome per job in the same order. table may be nil (each
// job gets no shared cache) or a single *tt.Table shared across every
// job — safe for concurrent use because tt.Table.Insert/Get each take a
// per-bucket mutex. A job whose context is already cancelled before it
// starts is skipped; ctx only gates whether new jobs are dispatched, not
// a job already in flight.
func Run[M position.Move](ctx context.Context, jobs []Job[M], concurrency int, table *tt.Table) []Outcome[M] {
	outcomes := make([]Outcome[M], len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = Outcome[M]{Err: err}
				return nil
			}
			dist, err := mcts.MCTSTraining(job.Position, job.TimeControl, job.Settings, job.ValueModel, job.PolicyModel, table, job.Seed)
			outcomes[i] = Outcome[M]{Distribution: dist, Err: err}
			return nil
		})
	}

	_ = g.Wait() // job-level errors are carried per-Outcome, never aggregated into a group error
	return outcomes
}
