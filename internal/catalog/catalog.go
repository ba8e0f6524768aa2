package catalog

import (
	"fmt"

	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/pkg/errors"
)

// Catalog is the immutable registry of parameter definitions. Lookups
// are by code; listings preserve declaration order.
type Catalog struct {
	params map[string]*model.ParameterDefinition
	order  []string
}

// New builds a catalog from definitions, rejecting duplicates and
// ranges that violate the ordering invariants.
func New(defs []model.ParameterDefinition) (*Catalog, error) {
	c := &Catalog{
		params: make(map[string]*model.ParameterDefinition, len(defs)),
		order:  make([]string, 0, len(defs)),
	}
	for i := range defs {
		def := defs[i]
		if def.Code == "" {
			return nil, fmt.Errorf("parameter %d: missing code", i)
		}
		if def.Name == "" {
			return nil, fmt.Errorf("parameter %s: missing name", def.Code)
		}
		if _, ok := c.params[def.Code]; ok {
			return nil, fmt.Errorf("parameter %s: duplicate code", def.Code)
		}
		if err := checkRanges(&def); err != nil {
			return nil, fmt.Errorf("parameter %s: %w", def.Code, err)
		}
		c.params[def.Code] = &def
		c.order = append(c.order, def.Code)
	}
	return c, nil
}

// MustNew is New for statically known definitions.
func MustNew(defs []model.ParameterDefinition) *Catalog {
	c, err := New(defs)
	if err != nil {
		panic(err)
	}
	return c
}

func checkRanges(def *model.ParameterDefinition) error {
	ranges := []model.Range{def.Reference}
	if len(def.GenderRanges) > 0 {
		if _, ok := def.GenderRanges[model.GenderMale]; !ok {
			return fmt.Errorf("gender ranges must cover both genders")
		}
		if _, ok := def.GenderRanges[model.GenderFemale]; !ok {
			return fmt.Errorf("gender ranges must cover both genders")
		}
		for _, r := range def.GenderRanges {
			ranges = append(ranges, r)
		}
	}
	for _, r := range ranges {
		if r.Min > r.Max {
			return fmt.Errorf("range min %v above max %v", r.Min, r.Max)
		}
		if def.Critical != nil {
			if def.Critical.Low >= r.Min {
				return fmt.Errorf("critical low %v not below range min %v", def.Critical.Low, r.Min)
			}
			if def.Critical.High <= r.Max {
				return fmt.Errorf("critical high %v not above range max %v", def.Critical.High, r.Max)
			}
		}
	}
	return nil
}

// Get returns the definition for code.
func (c *Catalog) Get(code string) (*model.ParameterDefinition, bool) {
	def, ok := c.params[code]
	return def, ok
}

// Lookup is Get with an unknown-parameter error for misses.
func (c *Catalog) Lookup(code string) (*model.ParameterDefinition, error) {
	def, ok := c.params[code]
	if !ok {
		return nil, errors.NewUnknownParameter(code)
	}
	return def, nil
}

// List returns all definitions in declaration order.
func (c *Catalog) List() []model.ParameterDefinition {
	out := make([]model.ParameterDefinition, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, *c.params[code])
	}
	return out
}

// ListGroup returns the definitions belonging to group, in declaration
// order.
func (c *Catalog) ListGroup(group model.ParameterGroup) []model.ParameterDefinition {
	var out []model.ParameterDefinition
	for _, code := range c.order {
		if c.params[code].Group == group {
			out = append(out, *c.params[code])
		}
	}
	return out
}

// Codes returns all parameter codes in declaration order.
func (c *Catalog) Codes() []string {
	return append([]string(nil), c.order...)
}

// Len returns the number of registered parameters.
func (c *Catalog) Len() int {
	return len(c.order)
}
