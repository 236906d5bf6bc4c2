// Package cds sequences jobs on an m-machine permutation flow shop with the
// Campbell-Dudek-Smith heuristic.
package cds

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/abourget/llerrgroup"

	"github.com/joshharrison/linesched/internal/flowshop"
	"github.com/joshharrison/linesched/internal/johnson"
)

// Candidate is the Johnson order obtained for one split point.
type Candidate struct {
	Split    int               `json:"split"`
	Sequence flowshop.Sequence `json:"sequence"`
	Makespan int               `json:"makespan"`
}

// Result is the best sequence found across all split points.
type Result struct {
	Sequence   flowshop.Sequence `json:"sequence"`
	Makespan   int               `json:"makespan"`
	Split      int               `json:"split"` // 0 when no split was evaluated
	Candidates []Candidate       `json:"candidates,omitempty"`
}

type options struct {
	parallelism int
	logger      *slog.Logger
}

// Option configures Solve.
type Option func(*options)

// WithParallelism bounds how many split points are evaluated at once.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Solve returns the CDS sequence for jobs.
//
// Every split k in 1..m-1 is projected to two virtual machines, ordered with
// Johnson's rule and scored with the full m-machine makespan. The lowest
// makespan wins; on ties the smallest k wins. A single machine has no split,
// so the input order is returned unchanged.
func Solve(ctx context.Context, jobs []flowshop.Job, opts ...Option) (*Result, error) {
	o := options{
		parallelism: runtime.NumCPU(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	n := len(jobs)
	if n == 0 {
		return &Result{Sequence: flowshop.Sequence{}}, nil
	}
	m := flowshop.MachineCount(jobs)
	if err := flowshop.Validate(jobs, m); err != nil {
		return nil, err
	}

	if m == 1 {
		seq := flowshop.Identity(n)
		return &Result{Sequence: seq, Makespan: flowshop.Makespan(jobs, seq)}, nil
	}

	candidates := make([]Candidate, m-1)
	eg := llerrgroup.New(o.parallelism)
	for k := 1; k < m; k++ {
		if eg.Stop() {
			break
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := evaluate(jobs, k)
			if err != nil {
				return err
			}
			candidates[k-1] = c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate splits: %w", err)
	}

	best := reduce(candidates)
	if err := flowshop.ValidatePermutation(best.Sequence, n); err != nil {
		panic(fmt.Sprintf("cds: split %d produced an invalid sequence: %v", best.Split, err))
	}

	o.logger.Debug("cds sequence selected",
		"jobs", n,
		"machines", m,
		"split", best.Split,
		"makespan", best.Makespan,
	)

	return &Result{
		Sequence:   best.Sequence,
		Makespan:   best.Makespan,
		Split:      best.Split,
		Candidates: candidates,
	}, nil
}

func evaluate(jobs []flowshop.Job, k int) (Candidate, error) {
	pairs, err := johnson.Project(jobs, k)
	if err != nil {
		return Candidate{}, err
	}
	seq := flowshop.Sequence(johnson.Order(pairs))
	return Candidate{
		Split:    k,
		Sequence: seq,
		Makespan: flowshop.Makespan(jobs, seq),
	}, nil
}

// reduce keeps the first candidate with a strictly smaller makespan.
// candidates must be ordered by split.
func reduce(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Makespan < best.Makespan {
			best = c
		}
	}
	return best
}
