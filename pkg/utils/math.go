package utils

import (
	"fmt"
	"math"
)

// RoundToMesh snaps a value to the nearest multiple of the mesh size.
// A value already on the mesh grid is returned unchanged.
func RoundToMesh(value, meshSize float64) float64 {
	if meshSize <= 0 {
		return value
	}
	return math.Round(value/meshSize) * meshSize
}

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ArgminAbsDiff returns the index of the value with the smallest
// absolute distance to target, or -1 for an empty slice.
func ArgminAbsDiff(values []float64, target float64) int {
	best := -1
	bestDiff := math.Inf(1)
	for i, v := range values {
		diff := math.Abs(v - target)
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best
}

// Linspace returns n evenly spaced values over [start, stop] inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// PolyFit fits a polynomial of the given degree to (x, y) points by
// least squares and returns the coefficients ordered from the constant
// term upward. It needs at least degree+1 points.
func PolyFit(x, y []float64, degree int) ([]float64, error) {
	if degree < 0 {
		return nil, fmt.Errorf("polynomial degree must be non-negative, got %d", degree)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("mismatched sample lengths: %d vs %d", len(x), len(y))
	}
	n := degree + 1
	if len(x) < n {
		return nil, fmt.Errorf("need at least %d points for a degree-%d fit, got %d", n, degree, len(x))
	}

	// Normal equations A^T*A*c = A^T*y for the Vandermonde matrix A.
	ata := make([][]float64, n)
	aty := make([]float64, n)
	for i := range ata {
		ata[i] = make([]float64, n)
	}
	for k := range x {
		powers := make([]float64, n)
		p := 1.0
		for i := 0; i < n; i++ {
			powers[i] = p
			p *= x[k]
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				ata[i][j] += powers[i] * powers[j]
			}
			aty[i] += powers[i] * y[k]
		}
	}

	coeffs, err := solveLinearSystem(ata, aty)
	if err != nil {
		return nil, fmt.Errorf("degree-%d fit failed: %w", degree, err)
	}
	return coeffs, nil
}

// PolyEval evaluates a polynomial with coefficients ordered from the
// constant term upward at x.
func PolyEval(coeffs []float64, x float64) float64 {
	result := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result*x + coeffs[i]
	}
	return result
}

// solveLinearSystem solves a*x = b by Gaussian elimination with
// partial pivoting. a and b are modified in place.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}
