package particle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray_SetGet(t *testing.T) {
	a := NewArray("fluid", 3)

	require.NoError(t, a.Set("x", []float64{-1, 0, 1}))
	require.NoError(t, a.Set("u", []float64{-1, 1, 0}))

	x, ok := a.Get("x")
	require.True(t, ok)
	assert.Equal(t, []float64{-1, 0, 1}, x)

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, []string{"x", "u"}, a.Names(), "insertion order preserved")
}

func TestArray_SetCopiesInput(t *testing.T) {
	a := NewArray("fluid", 2)
	src := []float64{1, 2}
	require.NoError(t, a.Set("x", src))

	src[0] = 99
	x, _ := a.Get("x")
	assert.Equal(t, []float64{1, 2}, x)
}

func TestArray_SetLengthMismatch(t *testing.T) {
	a := NewArray("fluid", 3)
	err := a.Set("x", []float64{1, 2})
	assert.Error(t, err)
	assert.False(t, a.Has("x"), "failed Set must not register the field")
}

func TestArray_EnsureAllocatesZeroFilled(t *testing.T) {
	a := NewArray("fluid", 3)

	next := a.Ensure("x_next")
	assert.Equal(t, []float64{0, 0, 0}, next)
	assert.True(t, a.Has("x_next"))

	// Second Ensure returns the same backing slice.
	next[1] = 5
	again := a.Ensure("x_next")
	assert.Equal(t, []float64{0, 5, 0}, again)
}

func TestArray_GetAliasesLiveData(t *testing.T) {
	a := NewArray("fluid", 2)
	require.NoError(t, a.Set("rho", []float64{1, 1}))

	rho, _ := a.Get("rho")
	rho[0] = 2

	again, _ := a.Get("rho")
	assert.Equal(t, []float64{2, 1}, again)
}

func TestCanonicalName_NFC(t *testing.T) {
	// "e" + combining acute vs precomposed "é" must address the same field.
	decomposed := "rhoé"
	precomposed := "rhoé"

	a := NewArray("fluid", 1)
	require.NoError(t, a.Set(decomposed, []float64{3}))

	v, ok := a.Get(precomposed)
	require.True(t, ok)
	assert.Equal(t, []float64{3}, v)
}

func TestEntity_PropertyOptIn(t *testing.T) {
	e := NewFluid("dam", NewArray("dam", 4))

	assert.False(t, e.IntegratesProperty("position"))
	e.EnableProperty("position")
	assert.True(t, e.IntegratesProperty("position"))
	assert.Equal(t, KindFluid, e.Kind())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"fluid", KindFluid, true},
		{"solid", KindSolid, true},
		{"boundary", KindBoundary, true},
		{"any", KindAny, true},
		{"gas", KindAny, false},
	}
	for _, tt := range tests {
		k, err := ParseKind(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, k)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

func TestTimeStep_SetValue(t *testing.T) {
	ts := NewTimeStep(1.0)
	assert.Equal(t, 1.0, ts.Value())

	ts.Set(0.5)
	assert.Equal(t, 0.5, ts.Value())
}
