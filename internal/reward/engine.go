// Package reward turns a feature vector into a hedonic score and a
// discrete emotion label.
package reward

import (
	"github.com/anima-ai/anima/internal/config"
	"github.com/anima-ai/anima/internal/models"
)

// Engine computes the scalar reward in [-1,1] for one exchange. It is a
// pure function of its inputs: callers persist the result.
type Engine struct {
	policy config.Policy
}

// NewEngine creates a reward engine with the given policy.
func NewEngine(policy config.Policy) *Engine {
	return &Engine{policy: policy}
}

// Score combines the feature vector into a reward and classifies the
// emotion. tone is the dominant lexicon category reported by the
// feature extractor.
func (e *Engine) Score(f models.Features, tone string) models.Score {
	w := e.policy.Weights
	raw := w.Novelty*f.Novelty +
		w.Relevance*f.Relevance +
		w.Entropy*f.Entropy +
		w.Coherence*f.Coherence +
		w.Intensity*f.Intensity

	switch tone {
	case "pain", "frustration":
		raw -= e.policy.PainAdjustment
	case "joy", "wonder":
		raw += e.policy.PleasureAdjustment
	}

	// Repetition sanction: an explicit malus before the final shift, and a
	// flag for downstream consumers.
	repetition := f.Novelty < e.policy.RepetitionThreshold
	if repetition {
		raw -= e.policy.RepetitionMalus
	}

	reward := models.ClampReward(raw*2 - 1)

	pain := painScore(reward, tone)

	return models.Score{
		Reward:       reward,
		Emotion:      classify(reward, f, tone, repetition),
		Pain:         pain,
		Satisfaction: models.Clamp01((reward + 1) / 2),
		Repetition:   repetition,
	}
}

// painScore derives the felt pain of an exchange from its reward, with a
// push when the dominant tone is itself painful.
func painScore(reward float64, tone string) float64 {
	pain := (1 - reward) / 2
	if tone == "pain" || tone == "frustration" {
		pain += 0.1
	}
	return models.Clamp01(pain)
}

// highIntensity is the intensity level above which negative rewards read
// as creative anguish rather than flat frustration.
const highIntensity = 0.5

// classify picks the emotion label by matching the (reward, intensity,
// tone) region against a fixed rule table. The label is never empty.
func classify(reward float64, f models.Features, tone string, repetition bool) string {
	switch {
	case reward < -0.3 && f.Intensity >= highIntensity:
		return "angoisse créative"
	case reward < -0.3 && repetition:
		return "frustration"
	case reward < -0.3:
		return "douleur"
	case reward > 0.5:
		return "émerveillement"
	case reward > 0.2:
		return "curiosité"
	}

	// Mid-band: fall back to the dominant tone of the text itself.
	switch tone {
	case "joy":
		return "joie"
	case "pain":
		return "douleur"
	case "curiosity":
		return "curiosité"
	case "frustration":
		return "frustration"
	case "wonder":
		return "émerveillement"
	}
	return "neutralité"
}
