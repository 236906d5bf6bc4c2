package production

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/joshharrison/linesched/internal/flowshop"
)

var (
	// ErrInfeasible means the minimum quantities do not fit the machine capacities.
	ErrInfeasible = errors.New("production mix is infeasible")
	// ErrUnbounded means a profitable product consumes no machine time.
	ErrUnbounded = errors.New("production mix is unbounded")
	// ErrSearchLimit means the solver gave up before proving optimality.
	ErrSearchLimit = errors.New("production mix search limit reached")
)

// DefaultMaxNodes bounds the branch-and-bound search.
const DefaultMaxNodes = 5_000_000

// Mix is an integer production plan.
type Mix struct {
	Quantities map[string]int `json:"quantities"`
	Profit     int            `json:"profit"`
}

// MixSolver decides how many units of each product to build.
type MixSolver interface {
	Solve(ctx context.Context, c *Catalog, minimums map[string]int) (*Mix, error)
}

// BranchAndBound is an exact integer solver for small catalogs. It maximizes
// total profit subject to per-machine capacity and per-product minimums.
type BranchAndBound struct {
	MaxNodes int // 0 means DefaultMaxNodes
}

var _ MixSolver = (*BranchAndBound)(nil)

// Solve explores products in catalog order, trying larger quantities first.
// Among equally profitable mixes the first one found is returned.
func (s *BranchAndBound) Solve(ctx context.Context, c *Catalog, minimums map[string]int) (*Mix, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for name, q := range minimums {
		if _, ok := c.Product(name); !ok {
			return nil, fmt.Errorf("%w: product %q not found in catalog", flowshop.ErrInvalidInput, name)
		}
		if q < 0 {
			return nil, fmt.Errorf("%w: product %q has negative minimum %d", flowshop.ErrInvalidInput, name, q)
		}
	}

	maxNodes := s.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	times := make([][]int, len(c.Products))
	remaining := c.Machines.Capacities()
	base := 0
	for i, p := range c.Products {
		times[i] = c.Durations(p)
		q := minimums[p.Name]
		base += q * p.Profit
		for j, t := range times[i] {
			remaining[j] -= q * t
		}
		if p.Profit > 0 && isZero(times[i]) {
			return nil, fmt.Errorf("%w: product %q has profit %d but uses no machine time", ErrUnbounded, p.Name, p.Profit)
		}
	}
	for j, r := range remaining {
		if r < 0 {
			return nil, fmt.Errorf("%w: minimums exceed %s capacity by %d", ErrInfeasible, c.Machines[j].Name, -r)
		}
	}

	b := &bnb{
		ctx:      ctx,
		profits:  make([]int, len(c.Products)),
		times:    times,
		extra:    make([]int, len(c.Products)),
		best:     make([]int, len(c.Products)),
		bestGain: -1,
		maxNodes: maxNodes,
	}
	for i, p := range c.Products {
		b.profits[i] = p.Profit
	}
	if err := b.search(0, remaining, 0); err != nil {
		return nil, err
	}

	mix := &Mix{Quantities: make(map[string]int, len(c.Products)), Profit: base + b.bestGain}
	for i, p := range c.Products {
		mix.Quantities[p.Name] = minimums[p.Name] + b.best[i]
	}
	return mix, nil
}

type bnb struct {
	ctx      context.Context
	profits  []int
	times    [][]int
	extra    []int
	best     []int
	bestGain int
	nodes    int
	maxNodes int
}

func (b *bnb) search(i int, remaining []int, gain int) error {
	b.nodes++
	if b.nodes > b.maxNodes {
		return fmt.Errorf("%w: %d nodes", ErrSearchLimit, b.maxNodes)
	}
	if b.nodes%1024 == 0 {
		if err := b.ctx.Err(); err != nil {
			return err
		}
	}

	if i == len(b.profits) {
		if gain > b.bestGain {
			b.bestGain = gain
			copy(b.best, b.extra)
		}
		return nil
	}

	if gain+b.bound(i, remaining) <= b.bestGain {
		return nil
	}

	upper := 0
	if b.profits[i] > 0 {
		upper = maxUnits(b.times[i], remaining)
	}

	next := make([]int, len(remaining))
	for q := upper; q >= 0; q-- {
		for j, r := range remaining {
			next[j] = r - q*b.times[i][j]
		}
		b.extra[i] = q
		if err := b.search(i+1, next, gain+q*b.profits[i]); err != nil {
			return err
		}
	}
	b.extra[i] = 0
	return nil
}

// bound is an optimistic estimate of the gain still available from products i..n-1.
func (b *bnb) bound(i int, remaining []int) int {
	total := 0
	for k := i; k < len(b.profits); k++ {
		if b.profits[k] > 0 {
			total += b.profits[k] * maxUnits(b.times[k], remaining)
		}
	}
	return total
}

func maxUnits(times, remaining []int) int {
	units := math.MaxInt
	for j, t := range times {
		if t > 0 {
			units = min(units, remaining[j]/t)
		}
	}
	if units == math.MaxInt {
		return 0
	}
	return units
}

func isZero(xs []int) bool {
	for _, x := range xs {
		if x != 0 {
			return false
		}
	}
	return true
}
