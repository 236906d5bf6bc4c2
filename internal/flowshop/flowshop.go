// Package flowshop holds the permutation flow-shop data model: jobs, machines,
// input validation, and the completion-time recurrence shared by the sequencer
// and the simulator.
package flowshop

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks malformed scheduling input. It is always returned
// before any computation starts.
var ErrInvalidInput = errors.New("invalid input")

// Validate checks that the machine set is non-empty and that no capacity is negative.
func (ms MachineSet) Validate() error {
	if len(ms) == 0 {
		return fmt.Errorf("%w: machine count must be >= 1", ErrInvalidInput)
	}
	for i, m := range ms {
		if m.Capacity < 0 {
			return fmt.Errorf("%w: machine %d (%s) has negative capacity %d", ErrInvalidInput, i, m.Name, m.Capacity)
		}
	}
	return nil
}

// Validate checks every job against a line of m machines.
// An empty job list is valid.
func Validate(jobs []Job, m int) error {
	if m <= 0 {
		return fmt.Errorf("%w: machine count must be >= 1 (got %d)", ErrInvalidInput, m)
	}
	for i, j := range jobs {
		if len(j.Durations) != m {
			return fmt.Errorf("%w: job %d (%s) has %d durations, want %d", ErrInvalidInput, i, j.Product, len(j.Durations), m)
		}
		for k, d := range j.Durations {
			if d < 0 {
				return fmt.Errorf("%w: job %d (%s) has negative duration %d on machine %d", ErrInvalidInput, i, j.Product, d, k)
			}
		}
	}
	return nil
}

// MachineCount infers m from the job list. It returns 0 for no jobs.
func MachineCount(jobs []Job) int {
	if len(jobs) == 0 {
		return 0
	}
	return len(jobs[0].Durations)
}

// ValidatePermutation checks that seq is a bijection onto 0..n-1.
func ValidatePermutation(seq Sequence, n int) error {
	if len(seq) != n {
		return fmt.Errorf("sequence length must be %d (got %d)", n, len(seq))
	}
	seen := make([]bool, n)
	for pos, idx := range seq {
		if idx < 0 || idx >= n {
			return fmt.Errorf("sequence[%d]=%d out of range [0,%d)", pos, idx, n)
		}
		if seen[idx] {
			return fmt.Errorf("sequence[%d]=%d is a duplicate", pos, idx)
		}
		seen[idx] = true
	}
	return nil
}

// Completion builds the completion matrix for seq: C[i][j] is the finish time
// of the i-th sequenced job on machine j. Jobs must already be validated.
func Completion(jobs []Job, seq Sequence) [][]int {
	n := len(seq)
	if n == 0 {
		return nil
	}
	m := len(jobs[seq[0]].Durations)

	c := make([][]int, n)
	for i := range c {
		c[i] = make([]int, m)
	}

	first := jobs[seq[0]].Durations
	c[0][0] = first[0]
	for j := 1; j < m; j++ {
		c[0][j] = c[0][j-1] + first[j]
	}

	for i := 1; i < n; i++ {
		d := jobs[seq[i]].Durations
		c[i][0] = c[i-1][0] + d[0]
		for j := 1; j < m; j++ {
			c[i][j] = max(c[i-1][j], c[i][j-1]) + d[j]
		}
	}
	return c
}

// Makespan returns the completion time of the last job on the last machine,
// or 0 when seq is empty.
func Makespan(jobs []Job, seq Sequence) int {
	c := Completion(jobs, seq)
	if len(c) == 0 {
		return 0
	}
	last := c[len(c)-1]
	return last[len(last)-1]
}

// TotalDuration sums every duration of every job.
func TotalDuration(jobs []Job) int {
	total := 0
	for _, j := range jobs {
		for _, d := range j.Durations {
			total += d
		}
	}
	return total
}
