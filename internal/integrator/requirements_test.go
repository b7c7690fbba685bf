package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swash-sim/swash/internal/particle"
)

func TestDeriveRequirements(t *testing.T) {
	r := NewRegistry(SchemeEuler)
	require.NoError(t, r.AddProperty("density",
		[]string{"rho_rate"}, []string{"rho"},
		[]particle.Kind{particle.KindFluid}, nil))
	require.NoError(t, r.AddEntityKind("density", particle.KindBoundary))

	req := r.DeriveRequirements()

	// The wildcard bucket carries the kinematic arrays every kind needs.
	assert.ElementsMatch(t,
		[]string{"ax", "ay", "az", "u", "v", "w", "x", "y", "z"},
		req.Write[particle.KindAny])

	// Fluid gets density arrays from the eligible set, boundary from the
	// requirement table.
	assert.Equal(t, []string{"rho", "rho_rate"}, req.Write[particle.KindFluid])
	assert.Equal(t, []string{"rho", "rho_rate"}, req.Write[particle.KindBoundary])

	// Only the write category is populated by this derivation; read and
	// private stay empty for external consumers to fill.
	assert.Empty(t, req.Read)
	assert.Empty(t, req.Private)
}

func TestDeriveRequirements_Deterministic(t *testing.T) {
	r := NewRegistry(SchemeEuler)
	require.NoError(t, r.AddProperty("density",
		[]string{"rho_rate"}, []string{"rho"},
		[]particle.Kind{particle.KindFluid}, nil))

	a := r.DeriveRequirements()
	b := r.DeriveRequirements()
	assert.Equal(t, a.Write, b.Write)

	// Sorted output within each kind.
	assert.Equal(t, []string{"rho", "rho_rate"}, a.Write[particle.KindFluid])
}

func TestRequirements_MergeReadPrivate(t *testing.T) {
	r := NewRegistry(SchemeEuler)
	req := r.DeriveRequirements()

	req.MergeRead(particle.KindFluid, []string{"h", "cs"})
	req.MergeRead(particle.KindFluid, []string{"h"})
	req.MergePrivate(particle.KindFluid, []string{"scratch"})

	assert.Equal(t, []string{"cs", "h"}, req.Read[particle.KindFluid])
	assert.Equal(t, []string{"scratch"}, req.Private[particle.KindFluid])
}
