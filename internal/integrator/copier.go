package integrator

import (
	"context"
	"fmt"

	"github.com/swash-sim/swash/internal/particle"
)

// Copier commits a property's staged "_next" buffers into the live integral
// arrays for one entity. Copiers are generated by the execution-list
// compiler, one per stepped (property, entity) pair, and are appended after
// every property's stepper phase. That two-phase split is the consistency
// invariant of a timestep: every stepper reads the prior step's committed
// state, and no stepper observes another property's update in progress.
type Copier struct {
	id     string
	prop   string
	entity particle.Entity
	from   []string
	to     []string
}

// NewCopier creates the commit step for one (property, entity) pair.
func NewCopier(id string, p *Property, entity particle.Entity) *Copier {
	from := make([]string, len(p.Integrals))
	to := make([]string, len(p.Integrals))
	for i, name := range p.Integrals {
		from[i] = StagedName(name)
		to[i] = name
	}
	return &Copier{
		id:     id,
		prop:   p.Name,
		entity: entity,
		from:   from,
		to:     to,
	}
}

// ID implements Component.
func (c *Copier) ID() string { return c.id }

// Property returns the committed property name.
func (c *Copier) Property() string { return c.prop }

// Entity returns the entity whose arrays are committed.
func (c *Copier) Entity() particle.Entity { return c.entity }

// FromArrays returns the staged source array names.
func (c *Copier) FromArrays() []string { return append([]string(nil), c.from...) }

// ToArrays returns the live destination array names.
func (c *Copier) ToArrays() []string { return append([]string(nil), c.to...) }

// Execute implements Component.
func (c *Copier) Execute(_ context.Context, _ int) error {
	parr := c.entity.Particles()
	for i := range c.from {
		src, ok := parr.Get(c.from[i])
		if !ok {
			return &MissingArrayError{Entity: c.entity.Name(), Array: c.from[i]}
		}
		dst, ok := parr.Get(c.to[i])
		if !ok {
			return &MissingArrayError{Entity: c.entity.Name(), Array: c.to[i]}
		}
		copy(dst, src)
	}
	return nil
}

// String describes the copier for plan dumps.
func (c *Copier) String() string {
	return fmt.Sprintf("copier property=%s entity=%s from=%v to=%v",
		c.prop, c.entity.Name(), c.from, c.to)
}
