package planner

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/joshharrison/linesched/internal/cds"
	"github.com/joshharrison/linesched/internal/flowshop"
	"github.com/joshharrison/linesched/internal/production"
	"github.com/joshharrison/linesched/internal/schedule"
)

// Generate schedules the given quantities on the catalog's line: quantities
// are expanded into one job per unit, sequenced with CDS and simulated.
func Generate(ctx context.Context, catalog *production.Catalog, quantities map[string]int, config PlanConfig) (*Plan, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	jobs, err := catalog.Expand(quantities)
	if err != nil {
		return nil, fmt.Errorf("expand quantities: %w", err)
	}
	if jobs == nil {
		jobs = []flowshop.Job{}
	}

	best, err := cds.Solve(ctx, jobs,
		cds.WithParallelism(config.Parallelism),
		cds.WithLogger(config.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("sequence jobs: %w", err)
	}

	result, err := schedule.Simulate(jobs, best.Sequence, catalog.Machines)
	if err != nil {
		return nil, fmt.Errorf("simulate schedule: %w", err)
	}

	plan := &Plan{
		ID:         fmt.Sprintf("line-%s", uuid.NewString()[:8]),
		CreatedAt:  time.Now(),
		Machines:   catalog.Machines,
		Quantities: maps.Clone(quantities),
		Jobs:       jobs,
		Sequence:   best.Sequence,
		Makespan:   best.Makespan,
		Split:      best.Split,
		Candidates: best.Candidates,
		Schedule:   result,
		Config:     config,
	}
	if plan.Quantities == nil {
		plan.Quantities = map[string]int{}
	}

	config.Logger.Info("schedule generated",
		"plan_id", plan.ID,
		"units", len(jobs),
		"makespan", plan.Makespan,
		"split", plan.Split,
	)
	for _, j := range result.Overloaded() {
		config.Logger.Warn("machine capacity overrun",
			"plan_id", plan.ID,
			"machine", catalog.Machines[j].Name,
			"capacity", catalog.Machines[j].Capacity,
			"overrun", result.Overrun[j],
		)
	}

	return plan, nil
}

// Optimize solves the production mix for the given minimums and schedules it.
func Optimize(ctx context.Context, catalog *production.Catalog, solver production.MixSolver, minimums map[string]int, config PlanConfig) (*Plan, error) {
	mix, err := solver.Solve(ctx, catalog, minimums)
	if err != nil {
		return nil, fmt.Errorf("solve production mix: %w", err)
	}

	plan, err := Generate(ctx, catalog, mix.Quantities, config)
	if err != nil {
		return nil, err
	}
	profit := mix.Profit
	plan.Profit = &profit
	return plan, nil
}
