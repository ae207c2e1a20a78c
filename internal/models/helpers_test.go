package models

import (
	"math"
	"testing"
)

func TestClamp01(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"inside", 0.42, 0.42},
		{"below", -0.3, 0},
		{"above", 1.7, 1},
		{"zero", 0, 0},
		{"one", 1, 1},
		{"nan collapses", math.NaN(), 0},
		{"positive inf", math.Inf(1), 1},
		{"negative inf", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp01(tt.in)
			if got != tt.want {
				t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampReward(t *testing.T) {
	if got := ClampReward(2.4); got != 1 {
		t.Errorf("ClampReward(2.4) = %v, want 1", got)
	}
	if got := ClampReward(-3); got != -1 {
		t.Errorf("ClampReward(-3) = %v, want -1", got)
	}
	if got := ClampReward(math.NaN()); got != -1 {
		t.Errorf("ClampReward(NaN) = %v, want -1", got)
	}
}

func TestStabilityIndex(t *testing.T) {
	s := EmotionalState{PainLevel: 0.5}
	if got := s.StabilityIndex(); got != 1 {
		t.Errorf("StabilityIndex at midpoint = %v, want 1", got)
	}
	s.PainLevel = 1
	if got := s.StabilityIndex(); got != 0 {
		t.Errorf("StabilityIndex at extreme = %v, want 0", got)
	}
}
