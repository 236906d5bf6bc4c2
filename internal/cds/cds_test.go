package cds

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/linesched/internal/flowshop"
	"github.com/joshharrison/linesched/internal/johnson"
)

func TestSolve_TwoJobScenario(t *testing.T) {
	jobs := []flowshop.Job{
		{Product: "A", Durations: []int{3, 2}},
		{Product: "B", Durations: []int{2, 4}},
	}

	res, err := Solve(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, flowshop.Sequence{1, 0}, res.Sequence)
	assert.Equal(t, 8, res.Makespan)
	assert.Equal(t, 1, res.Split)
	require.Len(t, res.Candidates, 1)
}

func TestSolve_ThreeMachineExample(t *testing.T) {
	jobs := []flowshop.Job{
		{Durations: []int{2, 3, 2}},
		{Durations: []int{4, 1, 3}},
		{Durations: []int{3, 2, 4}},
	}

	res, err := Solve(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	// k=1: pairs (2,5) (4,4) (3,6) -> head 0,2 then 1 -> makespan 14
	// k=2: pairs (5,2) (5,3) (5,4) -> tail by B desc 2,1,0 -> makespan 14
	assert.Equal(t, flowshop.Sequence{0, 2, 1}, res.Candidates[0].Sequence)
	assert.Equal(t, 14, res.Candidates[0].Makespan)
	assert.Equal(t, flowshop.Sequence{2, 1, 0}, res.Candidates[1].Sequence)
	assert.Equal(t, 14, res.Candidates[1].Makespan)

	// equal makespans: the earlier split is kept
	assert.Equal(t, 1, res.Split)
	assert.Equal(t, 14, res.Makespan)
	assert.Equal(t, flowshop.Sequence{0, 2, 1}, res.Sequence)
}

func TestSolve_NoJobs(t *testing.T) {
	res, err := Solve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Sequence)
	assert.NotNil(t, res.Sequence)
	assert.Equal(t, 0, res.Makespan)
}

func TestSolve_SingleMachineKeepsInputOrder(t *testing.T) {
	jobs := []flowshop.Job{
		{Product: "C", Durations: []int{5}},
		{Product: "A", Durations: []int{1}},
		{Product: "B", Durations: []int{3}},
	}

	res, err := Solve(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, flowshop.Sequence{0, 1, 2}, res.Sequence)
	assert.Equal(t, 9, res.Makespan)
	assert.Equal(t, 0, res.Split)
	assert.Empty(t, res.Candidates)
}

func TestSolve_InvalidInput(t *testing.T) {
	tests := map[string][]flowshop.Job{
		"ragged":   {{Durations: []int{1, 2}}, {Durations: []int{1}}},
		"negative": {{Durations: []int{1, -2}}},
		"empty":    {{Durations: []int{}}},
	}
	for name, jobs := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Solve(context.Background(), jobs)
			assert.ErrorIs(t, err, flowshop.ErrInvalidInput)
		})
	}
}

func TestSolve_TiesPreferEarliestSplit(t *testing.T) {
	jobs := []flowshop.Job{
		{Durations: []int{1, 1, 1, 1}},
		{Durations: []int{1, 1, 1, 1}},
		{Durations: []int{1, 1, 1, 1}},
	}

	for _, p := range []int{1, 2, 8} {
		res, err := Solve(context.Background(), jobs, WithParallelism(p))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Split, "parallelism %d", p)
		assert.Equal(t, 6, res.Makespan)
	}
}

func TestSolve_PermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(20)
		m := 1 + rng.Intn(6)
		jobs := randomJobs(rng, n, m)

		res, err := Solve(context.Background(), jobs)
		require.NoError(t, err)
		require.NoError(t, flowshop.ValidatePermutation(res.Sequence, n))
		assert.Equal(t, flowshop.Makespan(jobs, res.Sequence), res.Makespan)

		for _, c := range res.Candidates {
			assert.LessOrEqual(t, res.Makespan, c.Makespan)
		}
	}
}

func TestSolve_ParallelismDoesNotChangeResult(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	jobs := randomJobs(rng, 30, 8)

	serial, err := Solve(context.Background(), jobs, WithParallelism(1))
	require.NoError(t, err)
	parallel, err := Solve(context.Background(), jobs, WithParallelism(16))
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestSolve_TwoMachinesMatchesJohnson(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for trial := 0; trial < 30; trial++ {
		n := 1 + rng.Intn(6)
		jobs := randomJobs(rng, n, 2)

		res, err := Solve(context.Background(), jobs)
		require.NoError(t, err)

		pairs, err := johnson.FromTwoMachine(jobs)
		require.NoError(t, err)
		assert.Equal(t, flowshop.Sequence(johnson.Order(pairs)), res.Sequence)

		best := res.Makespan
		permute(flowshop.Identity(n), 0, func(seq flowshop.Sequence) {
			assert.LessOrEqual(t, best, flowshop.Makespan(jobs, seq))
		})
	}
}

func TestSolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := randomJobs(rand.New(rand.NewSource(3)), 4, 3)
	_, err := Solve(ctx, jobs)
	assert.ErrorIs(t, err, context.Canceled)
}

func randomJobs(rng *rand.Rand, n, m int) []flowshop.Job {
	jobs := make([]flowshop.Job, n)
	for i := range jobs {
		d := make([]int, m)
		for j := range d {
			d[j] = rng.Intn(12)
		}
		jobs[i] = flowshop.Job{Product: "P", Durations: d}
	}
	return jobs
}

func permute(seq flowshop.Sequence, k int, visit func(flowshop.Sequence)) {
	if k == len(seq) {
		visit(seq)
		return
	}
	for i := k; i < len(seq); i++ {
		seq[k], seq[i] = seq[i], seq[k]
		permute(seq, k+1, visit)
		seq[k], seq[i] = seq[i], seq[k]
	}
}
