package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}
	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}
}

func TestDBConversions(t *testing.T) {
	linear := DBToLinear(-6)
	db := LinearToDB(linear)
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}

func TestAmplitudeToDB(t *testing.T) {
	tests := []struct {
		name      string
		amplitude float64
		expected  float64
	}{
		{name: "unity", amplitude: 1.0, expected: 0},
		{name: "half", amplitude: 0.5, expected: -6.0206},
		{name: "silence", amplitude: 0, expected: -96},
		{name: "negative", amplitude: -0.5, expected: -96},
		{name: "tiny", amplitude: 1e-10, expected: -96},
		{name: "hot", amplitude: 2.0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmplitudeToDB(tt.amplitude, -96, 0)
			if !NearlyEqual(got, tt.expected, 1e-3) {
				t.Fatalf("AmplitudeToDB(%v) = %v, want %v", tt.amplitude, got, tt.expected)
			}
		})
	}
}
