package clsrc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kernelSrc = `$density_sum
__kernel void density_sum(__global REAL* rho) {
    rho[get_global_id(0)] = 0.0F;
}
$density_sum
$pressure_force
__kernel void pressure_force(__global REAL4* f) {}
$pressure_force
`

func TestSource_DoubleHeader(t *testing.T) {
	out, err := Source("__kernel void k() {}", Double, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "#pragma OPENCL EXTENSION cl_khr_fp64 : enable\n"))
	assert.Contains(t, out, "#define REAL double\n")
	assert.Contains(t, out, "#define REAL4 double4\n")
	assert.Contains(t, out, "#define REAL8 double8\n")
	assert.True(t, strings.HasSuffix(out, "__kernel void k() {}"))
}

func TestSource_SingleHeader(t *testing.T) {
	out, err := Source("__kernel void k() {}", Single, "")
	require.NoError(t, err)

	assert.Contains(t, out, "#define F f \n")
	assert.Contains(t, out, "#define REAL float\n")
	assert.Contains(t, out, "#define REAL2 float2\n")
	assert.NotContains(t, out, "cl_khr_fp64")
}

func TestSource_BlockExtraction(t *testing.T) {
	out, err := Source(kernelSrc, Single, "density_sum")
	require.NoError(t, err)

	assert.Contains(t, out, "__kernel void density_sum")
	assert.NotContains(t, out, "pressure_force")
}

func TestSource_MissingBlock(t *testing.T) {
	_, err := Source(kernelSrc, Single, "viscosity")
	assert.Error(t, err)
}

func TestSource_InvalidPrecision(t *testing.T) {
	_, err := Source("", Precision("half"), "")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernels.cl")
	require.NoError(t, os.WriteFile(path, []byte(kernelSrc), 0o644))

	out, err := ReadFile(path, Double, "pressure_force")
	require.NoError(t, err)
	assert.Contains(t, out, "__kernel void pressure_force")

	_, err = ReadFile(filepath.Join(dir, "missing.cl"), Double, "")
	assert.Error(t, err)
}

func TestReal(t *testing.T) {
	v, err := Real(0.1, Double)
	require.NoError(t, err)
	assert.Equal(t, 0.1, v)

	v, err = Real(0.1, Single)
	require.NoError(t, err)
	assert.Equal(t, float64(float32(0.1)), v)
	assert.NotEqual(t, 0.1, v, "single precision loses bits")

	_, err = Real(1.0, Precision("half"))
	assert.Error(t, err)
}
