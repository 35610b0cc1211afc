// Package catalog holds the fixed set of membership plans sold on the site.
//
// The catalog is read once at startup, from the embedded plans.yaml or from
// an operator supplied file, and is read-only afterwards. Accessors hand out
// copies so callers can never mutate the shared entries.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var embeddedPlans []byte

var (
	// ErrPlanNotFound is returned when a plan id is not in the catalog
	ErrPlanNotFound = errors.New("plan not found")

	// ErrEmptyCatalog is returned when a catalog document lists no plans
	ErrEmptyCatalog = errors.New("catalog has no plans")
)

// Plan is one purchasable membership offering.
type Plan struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Price       int      `yaml:"price" json:"price"`
	Period      string   `yaml:"period" json:"period"`
	Badge       string   `yaml:"badge,omitempty" json:"badge,omitempty"`
	Features    []string `yaml:"features" json:"features"`
}

// PriceLabel renders the price with its billing-cycle suffix, e.g. "$ 82.000/mes".
func (p Plan) PriceLabel() string {
	return FormatPrice(p.Price) + p.Period
}

func (p Plan) clone() Plan {
	p.Features = append([]string(nil), p.Features...)
	return p
}

type document struct {
	Plans []Plan `yaml:"plans"`
}

// Catalog is an ordered, immutable list of plans.
type Catalog struct {
	plans []Plan
	index map[string]int
}

// Default loads the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Parse(embeddedPlans)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded plans.yaml is invalid: %v", err))
	}
	return c
}

// Load reads the catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(embeddedPlans)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Plans)
}

// New builds a catalog from plans, keeping their order.
func New(plans []Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		plans: make([]Plan, 0, len(plans)),
		index: make(map[string]int, len(plans)),
	}
	for i, p := range plans {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("plan #%d: id is required", i+1)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("plan %q: duplicate id", p.ID)
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("plan %q: name is required", p.ID)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("plan %q: price must be positive", p.ID)
		}
		c.index[p.ID] = len(c.plans)
		c.plans = append(c.plans, p.clone())
	}
	return c, nil
}

// All returns every plan in catalog order.
func (c *Catalog) All() []Plan {
	out := make([]Plan, len(c.plans))
	for i, p := range c.plans {
		out[i] = p.clone()
	}
	return out
}

// Len reports the number of plans.
func (c *Catalog) Len() int { return len(c.plans) }

// Find looks a plan up by id.
func (c *Catalog) Find(id string) (Plan, error) {
	i, ok := c.index[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrPlanNotFound, id)
	}
	return c.plans[i].clone(), nil
}

// Featured is the plan preselected when the selector opens: the first
// badge-flagged plan, else the first entry.
func (c *Catalog) Featured() Plan {
	for _, p := range c.plans {
		if p.Badge != "" {
			return p.clone()
		}
	}
	return c.plans[0].clone()
}
