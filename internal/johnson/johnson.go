// Package johnson implements Johnson's rule for the two-machine flow shop and
// the projection that collapses an m-machine job into two virtual machines.
package johnson

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/joshharrison/linesched/internal/flowshop"
)

// Pair is a job reduced to two aggregate durations.
type Pair struct {
	Index int // position in the original job list
	A     int // virtual machine 1
	B     int // virtual machine 2
}

// Order returns the job indices in Johnson order.
//
// Jobs with A < B go first, ascending by A. The rest (A >= B) follow,
// descending by B. Both sorts are stable, so equal keys keep their input
// order and the result is reproducible.
func Order(pairs []Pair) []int {
	var head, tail []Pair
	for _, p := range pairs {
		if p.A < p.B {
			head = append(head, p)
		} else {
			tail = append(tail, p)
		}
	}

	slices.SortStableFunc(head, func(x, y Pair) int { return cmp.Compare(x.A, y.A) })
	slices.SortStableFunc(tail, func(x, y Pair) int { return cmp.Compare(y.B, x.B) })

	order := make([]int, 0, len(pairs))
	for _, p := range head {
		order = append(order, p.Index)
	}
	for _, p := range tail {
		order = append(order, p.Index)
	}
	return order
}

// Project splits every job at machine k: A sums durations[0:k] and B sums
// durations[k:m]. k must satisfy 1 <= k < m.
func Project(jobs []flowshop.Job, k int) ([]Pair, error) {
	m := flowshop.MachineCount(jobs)
	if len(jobs) > 0 && (k < 1 || k >= m) {
		return nil, fmt.Errorf("%w: split %d outside [1,%d)", flowshop.ErrInvalidInput, k, m)
	}

	pairs := make([]Pair, len(jobs))
	for i, j := range jobs {
		p := Pair{Index: i}
		for s, d := range j.Durations {
			if s < k {
				p.A += d
			} else {
				p.B += d
			}
		}
		pairs[i] = p
	}
	return pairs, nil
}

// FromTwoMachine builds pairs directly from two-stage jobs.
func FromTwoMachine(jobs []flowshop.Job) ([]Pair, error) {
	if err := flowshop.Validate(jobs, 2); err != nil {
		return nil, err
	}
	return Project(jobs, 1)
}
