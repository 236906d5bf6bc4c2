// Package production holds the static machine and product tables, turns
// production quantities into flow-shop jobs, and solves the product mix.
package production

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/linesched/internal/flowshop"
)

// Product is one catalog entry.
type Product struct {
	Name   string         `yaml:"name" json:"name"`
	Profit int            `yaml:"profit" json:"profit"` // per unit
	Times  map[string]int `yaml:"times" json:"times"`   // machine name -> time per unit
}

// Catalog describes the line and what can be built on it.
type Catalog struct {
	Machines flowshop.MachineSet `yaml:"machines" json:"machines"`
	Products []Product           `yaml:"products" json:"products"`
}

// DefaultCatalog returns the built-in three-machine, three-product line.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Machines: flowshop.MachineSet{
			{Name: "Machine 1", Capacity: 12},
			{Name: "Machine 2", Capacity: 9},
			{Name: "Machine 3", Capacity: 9},
		},
		Products: []Product{
			{Name: "Product A", Profit: 7, Times: map[string]int{"Machine 1": 3, "Machine 2": 3, "Machine 3": 2}},
			{Name: "Product B", Profit: 4, Times: map[string]int{"Machine 1": 2, "Machine 2": 1, "Machine 3": 2}},
			{Name: "Product C", Profit: 10, Times: map[string]int{"Machine 1": 3, "Machine 2": 1, "Machine 3": 1}},
		},
	}
}

// LoadCatalog reads a YAML catalog from path and validates it.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Marshal renders the catalog as YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks machines, unique product names and complete time tables.
func (c *Catalog) Validate() error {
	if err := c.Machines.Validate(); err != nil {
		return err
	}
	seenMachine := make(map[string]bool)
	for _, m := range c.Machines {
		if seenMachine[m.Name] {
			return fmt.Errorf("%w: duplicate machine %q", flowshop.ErrInvalidInput, m.Name)
		}
		seenMachine[m.Name] = true
	}

	seen := make(map[string]bool)
	for _, p := range c.Products {
		if p.Name == "" {
			return fmt.Errorf("%w: product with empty name", flowshop.ErrInvalidInput)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate product %q", flowshop.ErrInvalidInput, p.Name)
		}
		seen[p.Name] = true

		for _, m := range c.Machines {
			t, ok := p.Times[m.Name]
			if !ok {
				return fmt.Errorf("%w: product %q has no time for %q", flowshop.ErrInvalidInput, p.Name, m.Name)
			}
			if t < 0 {
				return fmt.Errorf("%w: product %q has negative time %d on %q", flowshop.ErrInvalidInput, p.Name, t, m.Name)
			}
		}
		for name := range p.Times {
			if !seenMachine[name] {
				return fmt.Errorf("%w: product %q references unknown machine %q", flowshop.ErrInvalidInput, p.Name, name)
			}
		}
	}
	return nil
}

// Product looks up a product by name.
func (c *Catalog) Product(name string) (Product, bool) {
	for _, p := range c.Products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}

// Durations returns a product's per-unit times in machine order.
func (c *Catalog) Durations(p Product) []int {
	d := make([]int, len(c.Machines))
	for i, m := range c.Machines {
		d[i] = p.Times[m.Name]
	}
	return d
}

// Expand turns quantities into one job per unit. Products appear in catalog
// order; products with zero quantity are skipped.
func (c *Catalog) Expand(quantities map[string]int) ([]flowshop.Job, error) {
	for name, q := range quantities {
		if _, ok := c.Product(name); !ok {
			return nil, fmt.Errorf("%w: product %q not found in catalog", flowshop.ErrInvalidInput, name)
		}
		if q < 0 {
			return nil, fmt.Errorf("%w: product %q has negative quantity %d", flowshop.ErrInvalidInput, name, q)
		}
	}

	var jobs []flowshop.Job
	for _, p := range c.Products {
		q := quantities[p.Name]
		if q == 0 {
			continue
		}
		d := c.Durations(p)
		for range q {
			jobs = append(jobs, flowshop.Job{
				Product:   p.Name,
				Durations: append([]int(nil), d...),
			})
		}
	}
	return jobs, nil
}
