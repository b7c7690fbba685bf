package testutil

import (
	"github.com/swash-sim/swash/internal/particle"
)

// NewEntity builds an entity with the given arrays installed and the given
// properties enabled. Panics on malformed fixture data; fixtures are test
// code, not inputs.
func NewEntity(name string, kind particle.Kind, arrays map[string][]float64, properties ...string) *particle.Base {
	var parr *particle.Array
	if len(arrays) > 0 {
		n := -1
		for _, data := range arrays {
			n = len(data)
			break
		}
		parr = particle.NewArray(name, n)
		for field, data := range arrays {
			if err := parr.Set(field, data); err != nil {
				panic("testutil: " + err.Error())
			}
		}
	}
	e := particle.NewEntity(name, kind, parr)
	for _, p := range properties {
		e.EnableProperty(p)
	}
	return e
}

// PlanarEntity builds the canonical test fixture from the forward-Euler
// scenario: x=[-1,0,1], y=[1,0,-1], u=[-1,1,0], v=[0,1,1].
func PlanarEntity(name string, kind particle.Kind, properties ...string) *particle.Base {
	return NewEntity(name, kind, map[string][]float64{
		"x": {-1, 0, 1},
		"y": {1, 0, -1},
		"u": {-1, 1, 0},
		"v": {0, 1, 1},
	}, properties...)
}
