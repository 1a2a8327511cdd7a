package utils

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateFare(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		duration float64
		want     float64
	}{
		{"zero trip", 0, 0, 2.5},
		{"short trip", 2, 5, 2.5 + 3.0 + 1.5},
		{"airport run", 10, 20, 2.5 + 15.0 + 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateFare(tt.distance, tt.duration)
			if !almostEqual(got, tt.want) {
				t.Errorf("CalculateFare(%v, %v) = %v, want %v", tt.distance, tt.duration, got, tt.want)
			}
		})
	}
}

func TestFallbackEstimate(t *testing.T) {
	// One degree of longitude apart on the equator: 111 km straight line.
	est := FallbackEstimate(0, 0, 0, 1)

	if !almostEqual(est.Distance, 111.0) {
		t.Errorf("Distance = %v, want 111.0", est.Distance)
	}
	if !almostEqual(est.Duration, 222.0) {
		t.Errorf("Duration = %v, want 222.0 (two minutes per km)", est.Duration)
	}
	if !almostEqual(est.Fare, 5.0+111.0*1.5) {
		t.Errorf("Fare = %v, want %v", est.Fare, 5.0+111.0*1.5)
	}
}

func TestFallbackEstimateZeroDistance(t *testing.T) {
	est := FallbackEstimate(40.7, -74.0, 40.7, -74.0)

	if est.Distance != 0 {
		t.Errorf("Distance = %v, want 0", est.Distance)
	}
	if est.Duration != 0 {
		t.Errorf("Duration = %v, want 0", est.Duration)
	}
	if !almostEqual(est.Fare, FallbackBaseFare) {
		t.Errorf("Fare = %v, want base fare %v", est.Fare, FallbackBaseFare)
	}
}

func TestFallbackEstimateRounding(t *testing.T) {
	est := FallbackEstimate(0, 0, 0.001, 0.002)

	for name, v := range map[string]float64{
		"distance": est.Distance,
		"duration": est.Duration,
		"fare":     est.Fare,
	} {
		if rounded := math.Round(v*100) / 100; v != rounded {
			t.Errorf("%s = %v, not rounded to 2 decimal places", name, v)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.0},
		{1.006, 1.01},
		{12.3456, 12.35},
		{-2.346, -2.35},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
