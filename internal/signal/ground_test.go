package signal

import (
	"math"
	"testing"
)

func TestGroundLevel_TrailingWindow(t *testing.T) {
	const sampleRate = 100.0

	// 2 s of motion at 1.0 m followed by 1.5 s of quiet standing at 0.25 m
	position := make([]float64, 350)
	for i := range position {
		if i < 200 {
			position[i] = 1.0
		} else {
			position[i] = 0.25
		}
	}

	ground := GroundLevel(position, sampleRate, 1.5)
	if math.Abs(ground-0.25) > 1e-9 {
		t.Errorf("Expected ground level 0.25, got %f", ground)
	}
}

func TestGroundLevel_FallbackToFullSeries(t *testing.T) {
	position := []float64{1, 2, 3, 4}

	// Window longer than the series falls back to the full-series mean
	ground := GroundLevel(position, 100, 10)
	if math.Abs(ground-2.5) > 1e-9 {
		t.Errorf("Expected full-series mean 2.5, got %f", ground)
	}
}

func TestGroundLevel_Empty(t *testing.T) {
	if ground := GroundLevel(nil, 100, 1.5); ground != 0 {
		t.Errorf("Expected 0 for empty series, got %f", ground)
	}
}

func TestGroundLevel_OffsetInvariance(t *testing.T) {
	const offset = 0.87

	position := make([]float64, 300)
	shifted := make([]float64, 300)
	for i := range position {
		position[i] = 0.1 * math.Sin(float64(i)/25)
		shifted[i] = position[i] + offset
	}

	base := GroundLevel(position, 100, 1.5)
	moved := GroundLevel(shifted, 100, 1.5)
	if math.Abs(moved-base-offset) > 1e-9 {
		t.Errorf("Expected ground level to shift by %f, got %f", offset, moved-base)
	}
}
