package models

import "time"

// ModelTier selects between the cheap default backend and the more capable
// one used under sustained pain.
type ModelTier string

const (
	TierBase      ModelTier = "base"
	TierEscalated ModelTier = "escalated"
)

// EmotionalState is the rolling internal state of a session. All five
// scalars stay clamped to [0,1] after every update. One instance per
// session; mutated only by the homeostasis controller.
type EmotionalState struct {
	PainLevel           float64   `json:"pain_level"`
	SatisfactionLevel   float64   `json:"satisfaction_level"`
	CreativityDrive     float64   `json:"creativity_drive"`
	ExplorationTendency float64   `json:"exploration_tendency"`
	StabilityNeed       float64   `json:"stability_need"`
	Emotion             string    `json:"emotion_label"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultState returns the waking-up state of a fresh session.
func DefaultState() EmotionalState {
	return EmotionalState{
		PainLevel:           0.5,
		SatisfactionLevel:   0.5,
		CreativityDrive:     0.7,
		ExplorationTendency: 0.6,
		StabilityNeed:       0.4,
		Emotion:             "neutralité",
		UpdatedAt:           time.Now(),
	}
}

// StabilityIndex reports how far the state sits from the pain midpoint.
// 1.0 is perfectly balanced, 0.0 is pinned to either extreme.
func (s EmotionalState) StabilityIndex() float64 {
	idx := 1 - abs(s.PainLevel-0.5)*2
	if idx < 0 {
		return 0
	}
	return idx
}

// GenerationConfig is the sampling configuration derived from an
// EmotionalState. It is a pure view: recomputed every turn and never a
// source of truth on its own.
type GenerationConfig struct {
	Tier             ModelTier `json:"model_tier"`
	Temperature      float64   `json:"temperature"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
