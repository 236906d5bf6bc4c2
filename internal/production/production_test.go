package production

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/linesched/internal/flowshop"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	require.NoError(t, DefaultCatalog().Validate())
}

func TestExpand(t *testing.T) {
	c := DefaultCatalog()

	jobs, err := c.Expand(map[string]int{"Product C": 2, "Product A": 1})
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	// catalog order, not map order
	assert.Equal(t, flowshop.Job{Product: "Product A", Durations: []int{3, 3, 2}}, jobs[0])
	assert.Equal(t, flowshop.Job{Product: "Product C", Durations: []int{3, 1, 1}}, jobs[1])
	assert.Equal(t, flowshop.Job{Product: "Product C", Durations: []int{3, 1, 1}}, jobs[2])

	// units do not share duration storage
	jobs[1].Durations[0] = 99
	assert.Equal(t, 3, jobs[2].Durations[0])
}

func TestExpand_Errors(t *testing.T) {
	c := DefaultCatalog()

	_, err := c.Expand(map[string]int{"Product Z": 1})
	assert.ErrorIs(t, err, flowshop.ErrInvalidInput)

	_, err = c.Expand(map[string]int{"Product A": -1})
	assert.ErrorIs(t, err, flowshop.ErrInvalidInput)

	jobs, err := c.Expand(nil)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestCatalogValidate(t *testing.T) {
	tests := map[string]*Catalog{
		"no machines": {Products: []Product{{Name: "A"}}},
		"duplicate machine": {
			Machines: flowshop.MachineSet{{Name: "M1"}, {Name: "M1"}},
		},
		"missing time": {
			Machines: flowshop.MachineSet{{Name: "M1"}, {Name: "M2"}},
			Products: []Product{{Name: "A", Times: map[string]int{"M1": 1}}},
		},
		"unknown machine": {
			Machines: flowshop.MachineSet{{Name: "M1"}},
			Products: []Product{{Name: "A", Times: map[string]int{"M1": 1, "M9": 1}}},
		},
		"negative time": {
			Machines: flowshop.MachineSet{{Name: "M1"}},
			Products: []Product{{Name: "A", Times: map[string]int{"M1": -1}}},
		},
		"duplicate product": {
			Machines: flowshop.MachineSet{{Name: "M1"}},
			Products: []Product{
				{Name: "A", Times: map[string]int{"M1": 1}},
				{Name: "A", Times: map[string]int{"M1": 2}},
			},
		},
	}
	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, c.Validate(), flowshop.ErrInvalidInput)
		})
	}
}

func TestLoadCatalog_RoundTrip(t *testing.T) {
	data, err := DefaultCatalog().Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), c)
}

func TestLoadCatalog_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
machines:
  - name: Saw
    capacity: 8
  - name: Lathe
    capacity: 6
products:
  - name: Shaft
    profit: 5
    times: {Saw: 1, Lathe: 2}
`), 0644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Saw", "Lathe"}, c.Machines.Names())
	assert.Equal(t, []int{8, 6}, c.Machines.Capacities())

	p, ok := c.Product("Shaft")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, c.Durations(p))
}

func TestLoadCatalog_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("machines: []\n"), 0644))

	_, err := LoadCatalog(path)
	assert.ErrorIs(t, err, flowshop.ErrInvalidInput)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseQuantities(t *testing.T) {
	q, err := ParseQuantities([]byte(`{"Product A": 2, "Product B": 0}`), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Product A": 2, "Product B": 0}, q)

	q, err = ParseQuantities([]byte(`{"products_min": {"Product C": 1}}`), "products_min")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Product C": 1}, q)
}

func TestParseQuantities_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{name: "invalid json", data: `{"a": `},
		{name: "not an object", data: `[1, 2]`},
		{name: "missing path", data: `{"a": 1}`, path: "products_min"},
		{name: "fractional", data: `{"a": 1.5}`},
		{name: "string", data: `{"a": "2"}`},
		{name: "negative", data: `{"a": -3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuantities([]byte(tt.data), tt.path)
			assert.ErrorIs(t, err, flowshop.ErrInvalidInput)
		})
	}
}

func TestBranchAndBound_DefaultCatalog(t *testing.T) {
	s := &BranchAndBound{}

	mix, err := s.Solve(context.Background(), DefaultCatalog(), nil)
	require.NoError(t, err)
	assert.Equal(t, 40, mix.Profit)
	assert.Equal(t, map[string]int{"Product A": 0, "Product B": 0, "Product C": 4}, mix.Quantities)

	mix, err = s.Solve(context.Background(), DefaultCatalog(), map[string]int{"Product A": 1})
	require.NoError(t, err)
	assert.Equal(t, 37, mix.Profit)
	assert.Equal(t, map[string]int{"Product A": 1, "Product B": 0, "Product C": 3}, mix.Quantities)
}

func TestBranchAndBound_RespectsCapacity(t *testing.T) {
	c := DefaultCatalog()
	mix, err := (&BranchAndBound{}).Solve(context.Background(), c, map[string]int{"Product B": 2})
	require.NoError(t, err)

	for _, m := range c.Machines {
		used := 0
		for _, p := range c.Products {
			used += mix.Quantities[p.Name] * p.Times[m.Name]
		}
		assert.LessOrEqual(t, used, m.Capacity, m.Name)
	}
	assert.GreaterOrEqual(t, mix.Quantities["Product B"], 2)
}

func TestBranchAndBound_Errors(t *testing.T) {
	s := &BranchAndBound{}
	ctx := context.Background()

	_, err := s.Solve(ctx, DefaultCatalog(), map[string]int{"Product A": 5})
	assert.ErrorIs(t, err, ErrInfeasible)

	_, err = s.Solve(ctx, DefaultCatalog(), map[string]int{"Product Z": 1})
	assert.ErrorIs(t, err, flowshop.ErrInvalidInput)

	free := DefaultCatalog()
	free.Products = append(free.Products, Product{
		Name:   "Product D",
		Profit: 1,
		Times:  map[string]int{"Machine 1": 0, "Machine 2": 0, "Machine 3": 0},
	})
	_, err = s.Solve(ctx, free, nil)
	assert.ErrorIs(t, err, ErrUnbounded)

	_, err = (&BranchAndBound{MaxNodes: 2}).Solve(ctx, DefaultCatalog(), nil)
	assert.ErrorIs(t, err, ErrSearchLimit)
}
