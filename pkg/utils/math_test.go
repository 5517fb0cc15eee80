package utils

import (
	"math"
	"testing"
)

func TestRoundToMesh(t *testing.T) {
	tests := []struct {
		value    float64
		meshSize float64
		expected float64
	}{
		{103.4, 1.0, 103.0},
		{103.5, 1.0, 104.0},
		{102.0, 1.0, 102.0},
		{7.3, 0.5, 7.5},
		{-2.6, 1.0, -3.0},
		{1234.0, 10.0, 1230.0},
	}

	for _, tt := range tests {
		got := RoundToMesh(tt.value, tt.meshSize)
		if got != tt.expected {
			t.Errorf("RoundToMesh(%v, %v) = %v, expected %v", tt.value, tt.meshSize, got, tt.expected)
		}
	}
}

func TestRoundToMeshIdempotent(t *testing.T) {
	values := []float64{103.4, 7.3, -2.6, 0, 99999.5}
	meshes := []float64{1.0, 0.5, 2.0, 0.25}

	for _, v := range values {
		for _, m := range meshes {
			once := RoundToMesh(v, m)
			twice := RoundToMesh(once, m)
			if once != twice {
				t.Errorf("RoundToMesh not idempotent for (%v, %v): %v != %v", v, m, once, twice)
			}
		}
	}
}

func TestRoundToMeshNonPositiveMesh(t *testing.T) {
	if got := RoundToMesh(12.34, 0); got != 12.34 {
		t.Errorf("expected value unchanged for zero mesh, got %v", got)
	}
}

func TestClampFloat64(t *testing.T) {
	if got := ClampFloat64(5, 0, 10); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
	if got := ClampFloat64(-1, 0, 10); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := ClampFloat64(11, 0, 10); got != 10 {
		t.Errorf("expected 10, got %v", got)
	}
}

func TestArgminAbsDiff(t *testing.T) {
	values := []float64{2.05e9, 2.03e9, 2.01e9, 1.99e9}
	if got := ArgminAbsDiff(values, 2.0e9); got != 2 {
		t.Errorf("expected index 2, got %d", got)
	}
	if got := ArgminAbsDiff(nil, 1.0); got != -1 {
		t.Errorf("expected -1 for empty slice, got %d", got)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 10, 5)
	expected := []float64{0, 2.5, 5, 7.5, 10}
	if len(got) != len(expected) {
		t.Fatalf("expected %d points, got %d", len(expected), len(got))
	}
	for i := range expected {
		if math.Abs(got[i]-expected[i]) > 1e-12 {
			t.Errorf("point %d: expected %v, got %v", i, expected[i], got[i])
		}
	}

	if got := Linspace(3, 4, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("expected single start point, got %v", got)
	}
	if got := Linspace(0, 1, 0); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
}

func TestPolyFitLinear(t *testing.T) {
	// x = 2*y + 1
	y := []float64{1, 2, 3, 4}
	x := []float64{3, 5, 7, 9}

	coeffs, err := PolyFit(y, x, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coeffs) != 2 {
		t.Fatalf("expected 2 coefficients, got %d", len(coeffs))
	}
	if math.Abs(coeffs[0]-1) > 1e-9 || math.Abs(coeffs[1]-2) > 1e-9 {
		t.Errorf("expected coefficients [1 2], got %v", coeffs)
	}
	if got := PolyEval(coeffs, 2.5); math.Abs(got-6) > 1e-9 {
		t.Errorf("expected eval 6 at y=2.5, got %v", got)
	}
}

func TestPolyFitQuadratic(t *testing.T) {
	// x = y^2 - 3*y + 2
	y := []float64{0, 1, 2, 3, 4}
	x := make([]float64, len(y))
	for i, v := range y {
		x[i] = v*v - 3*v + 2
	}

	coeffs, err := PolyFit(y, x, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{2, -3, 1}
	for i := range want {
		if math.Abs(coeffs[i]-want[i]) > 1e-9 {
			t.Errorf("coefficient %d: expected %v, got %v", i, want[i], coeffs[i])
		}
	}
}

func TestPolyFitErrors(t *testing.T) {
	if _, err := PolyFit([]float64{1, 2}, []float64{1}, 1); err == nil {
		t.Errorf("expected error for mismatched lengths")
	}
	if _, err := PolyFit([]float64{1}, []float64{1}, 1); err == nil {
		t.Errorf("expected error for too few points")
	}
	if _, err := PolyFit([]float64{1, 2}, []float64{1, 2}, -1); err == nil {
		t.Errorf("expected error for negative degree")
	}
	// Identical sample positions make the system singular.
	if _, err := PolyFit([]float64{2, 2, 2}, []float64{1, 2, 3}, 1); err == nil {
		t.Errorf("expected error for singular system")
	}
}
