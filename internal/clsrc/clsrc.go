// Package clsrc prepares OpenCL kernel source for device compilation:
// precision #defines, optional named-block extraction from template files,
// and host-side float coercion. It performs string templating only; actual
// device/platform compilation happens elsewhere.
package clsrc

import (
	"fmt"
	"os"
	"strings"
)

// Precision selects the floating point width kernels are compiled for.
// OpenCL source is written against the REAL typedef; the generated header
// pins REAL (and REAL2/3/4/8) to float or double.
type Precision string

const (
	Single Precision = "single"
	Double Precision = "double"
)

var realWidths = []string{"", "2", "3", "4", "8"}

// Source prepends the precision header to OpenCL source. When function is
// non-empty the block delimited by "$<function>" markers is extracted first;
// a template holds one block per kernel, fenced by a marker pair.
func Source(src string, precision Precision, function string) (string, error) {
	hdr, err := header(precision)
	if err != nil {
		return "", err
	}

	if function != "" {
		parts := strings.Split(src, "$"+function)
		if len(parts) < 2 {
			return "", fmt.Errorf("no block %q in source", function)
		}
		src = parts[1]
	}

	return hdr + src, nil
}

// ReadFile reads an OpenCL template file and applies Source.
func ReadFile(path string, precision Precision, function string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read kernel source: %w", err)
	}
	return Source(string(data), precision, function)
}

// header builds the #define preamble for the requested precision. Double
// precision additionally enables the cl_khr_fp64 extension.
func header(precision Precision) (string, error) {
	var b strings.Builder
	var typ string

	switch precision {
	case Single:
		typ = "float"
		b.WriteString("#define F f \n")
	case Double:
		typ = "double"
		b.WriteString("#pragma OPENCL EXTENSION cl_khr_fp64 : enable\n")
		b.WriteString("#define F \n")
	default:
		return "", fmt.Errorf("invalid precision %q: must be %q or %q", precision, Single, Double)
	}

	for _, w := range realWidths {
		fmt.Fprintf(&b, "#define REAL%s %s%s\n", w, typ, w)
	}
	return b.String(), nil
}

// Real coerces a host value to the arithmetic width the kernels run at:
// single precision round-trips the value through float32.
func Real(val float64, precision Precision) (float64, error) {
	switch precision {
	case Single:
		return float64(float32(val)), nil
	case Double:
		return val, nil
	default:
		return 0, fmt.Errorf("precision %q not supported", precision)
	}
}
