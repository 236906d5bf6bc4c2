// Package schedule replays a fixed job order through every machine of the
// line and records start/end times and idle totals.
package schedule

import (
	"fmt"

	"github.com/joshharrison/linesched/internal/flowshop"
)

// Simulate dispatches jobs in seq order.
//
// Each machine keeps a clock. A job starts stage j once its own stage j-1 has
// finished and machine j is free; any wait on the machine side counts as
// idle. After the last job, unused capacity is added to idle. A machine that
// runs past its capacity is reported in Overrun rather than clamped.
func Simulate(jobs []flowshop.Job, seq flowshop.Sequence, machines flowshop.MachineSet) (*Result, error) {
	if err := machines.Validate(); err != nil {
		return nil, err
	}
	m := len(machines)
	if err := flowshop.Validate(jobs, m); err != nil {
		return nil, err
	}
	if err := flowshop.ValidatePermutation(seq, len(jobs)); err != nil {
		return nil, fmt.Errorf("%w: %v", flowshop.ErrInvalidInput, err)
	}

	clock := make([]int, m)
	res := &Result{
		Jobs: make([]JobRecord, 0, len(seq)),
		Idle: make([]int, m),
		Busy: make([]int, m),
	}

	for _, idx := range seq {
		job := jobs[idx]
		rec := JobRecord{
			Product: job.Product,
			Start:   make([]int, m),
			End:     make([]int, m),
		}

		for j, d := range job.Durations {
			start := clock[j]
			if j > 0 {
				start = max(rec.End[j-1], clock[j])
			}
			if start > clock[j] {
				res.Idle[j] += start - clock[j]
			}
			rec.Start[j] = start
			rec.End[j] = start + d
			res.Busy[j] += d
			clock[j] = rec.End[j]
		}

		res.Jobs = append(res.Jobs, rec)
	}

	for j, mc := range machines {
		switch {
		case clock[j] < mc.Capacity:
			res.Idle[j] += mc.Capacity - clock[j]
		case clock[j] > mc.Capacity:
			if res.Overrun == nil {
				res.Overrun = make([]int, m)
			}
			res.Overrun[j] = clock[j] - mc.Capacity
		}
	}
	res.Makespan = clock[m-1]

	return res, nil
}
