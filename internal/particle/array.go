package particle

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// CanonicalName returns the NFC-normalized form of a property or array name.
// All string keys in the framework (array names, property names) are stored
// and looked up in canonical form so that visually identical names compare
// equal regardless of their Unicode encoding.
func CanonicalName(name string) string {
	return norm.NFC.String(name)
}

// Array is a fixed-size collection of named per-particle float64 fields.
//
// Fields are addressed by string key and share a common particle count.
// Field names iterate in insertion order - this order is load-bearing for
// deterministic plan compilation and requirement derivation.
//
// Array is not safe for concurrent mutation. The execution list runs
// single-threaded per rank; steppers may parallelize internally over
// particles because each writes only its own staged fields.
type Array struct {
	name   string
	count  int
	fields map[string][]float64
	order  []string
}

// NewArray creates an array for count particles with no fields.
func NewArray(name string, count int) *Array {
	return &Array{
		name:   CanonicalName(name),
		count:  count,
		fields: make(map[string][]float64),
	}
}

// Name returns the array's identifier.
func (a *Array) Name() string { return a.name }

// Len returns the particle count shared by every field.
func (a *Array) Len() int { return a.count }

// Names returns the field names in insertion order.
func (a *Array) Names() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Has reports whether the named field exists.
func (a *Array) Has(name string) bool {
	_, ok := a.fields[CanonicalName(name)]
	return ok
}

// Get returns the named field. The returned slice aliases the live data:
// writes through it are visible to every other reader.
func (a *Array) Get(name string) ([]float64, bool) {
	f, ok := a.fields[CanonicalName(name)]
	return f, ok
}

// Set installs field data, copying the input slice. The data length must
// match the array's particle count.
func (a *Array) Set(name string, data []float64) error {
	if len(data) != a.count {
		return fmt.Errorf("array %s: field %q has %d values, want %d",
			a.name, name, len(data), a.count)
	}
	key := CanonicalName(name)
	if _, exists := a.fields[key]; !exists {
		a.order = append(a.order, key)
	}
	field := make([]float64, a.count)
	copy(field, data)
	a.fields[key] = field
	return nil
}

// Ensure returns the named field, allocating it zero-filled if absent.
// Used by steppers to lazily create staged "_next" buffers at setup.
func (a *Array) Ensure(name string) []float64 {
	key := CanonicalName(name)
	if f, ok := a.fields[key]; ok {
		return f
	}
	f := make([]float64, a.count)
	a.fields[key] = f
	a.order = append(a.order, key)
	return f
}
