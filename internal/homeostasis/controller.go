// Package homeostasis maintains the rolling emotional state of a session
// and derives the generation parameters from it.
package homeostasis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/anima-ai/anima/internal/config"
	"github.com/anima-ai/anima/internal/models"
)

// ErrStateCorruption is returned when an update carries NaN or
// out-of-range values. The update is rejected and the prior state kept.
var ErrStateCorruption = errors.New("state corruption")

// Controller is the per-session homeostatic regulator. It is the only
// mutator of the session's EmotionalState.
type Controller struct {
	policy config.Policy
	logger *slog.Logger

	state       models.EmotionalState
	tier        models.ModelTier
	noveltyHist []float64 // recent novelty values, for stagnation pressure
	warnings    int64
}

// NewController creates a controller starting from the default state.
func NewController(policy config.Policy, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		policy: policy,
		logger: logger,
		state:  models.DefaultState(),
		tier:   models.TierBase,
	}
}

// Restore replaces the controller state with a persisted snapshot,
// typically at session start. Corrupt snapshots are rejected.
func (c *Controller) Restore(state models.EmotionalState) error {
	for name, v := range map[string]float64{
		"pain_level":           state.PainLevel,
		"satisfaction_level":   state.SatisfactionLevel,
		"creativity_drive":     state.CreativityDrive,
		"exploration_tendency": state.ExplorationTendency,
		"stability_need":       state.StabilityNeed,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s = %v", ErrStateCorruption, name, v)
		}
	}
	c.state = state
	if state.PainLevel > c.policy.TierEscalateAbove {
		c.tier = models.TierEscalated
	} else {
		c.tier = models.TierBase
	}
	return nil
}

// State returns a copy of the current emotional state.
func (c *Controller) State() models.EmotionalState {
	return c.state
}

// Warnings reports how many updates were rejected for corruption.
func (c *Controller) Warnings() int64 {
	return c.warnings
}

// Update applies one turn's score and features to the state. Malformed
// inputs (NaN, out-of-range) are rejected with ErrStateCorruption: the
// previous state is kept untouched and a telemetry warning is counted.
func (c *Controller) Update(score models.Score, f models.Features) error {
	if err := validate(score, f); err != nil {
		c.warnings++
		c.logger.Warn("rejecting homeostatic update", "error", err)
		return err
	}

	alpha := c.policy.Smoothing
	s := &c.state

	// Pain tracks the per-turn pain score through an EWMA; a repetition
	// flag pushes the target further toward 1.
	painTarget := score.Pain
	if score.Repetition {
		painTarget = models.Clamp01(painTarget + 0.15)
	}
	s.PainLevel = models.Clamp01(s.PainLevel*(1-alpha) + painTarget*alpha)

	// Satisfaction is the complement EWMA of positive reward magnitude.
	s.SatisfactionLevel = models.Clamp01(s.SatisfactionLevel*(1-alpha) + math.Max(0, score.Reward)*alpha)

	// Creativity rises under pain, relaxes under sustained satisfaction.
	switch {
	case s.PainLevel > c.policy.PainHighThreshold:
		s.CreativityDrive = models.Clamp01(s.CreativityDrive + 0.10)
		s.ExplorationTendency = models.Clamp01(s.ExplorationTendency + 0.15)
	case s.SatisfactionLevel > c.policy.SatisfactionHigh:
		s.CreativityDrive = models.Clamp(s.CreativityDrive-0.05, 0.3, 1)
		s.ExplorationTendency = models.Clamp(s.ExplorationTendency-0.10, 0.3, 1)
	}

	// Stagnation pressure: persistent low novelty also feeds the drive.
	c.noveltyHist = append(c.noveltyHist, f.Novelty)
	if len(c.noveltyHist) > c.policy.StagnationWindow {
		c.noveltyHist = c.noveltyHist[len(c.noveltyHist)-c.policy.StagnationWindow:]
	}
	if c.stagnation() > 1-c.policy.StagnationNovelty {
		s.CreativityDrive = models.Clamp01(s.CreativityDrive + 0.05)
	}

	// Exploration and stability move inversely: pain raises exploration,
	// satisfaction raises the need for stability.
	if s.PainLevel > 0.7 {
		s.ExplorationTendency = models.Clamp01(s.ExplorationTendency + 0.05)
		s.StabilityNeed = models.Clamp01(s.StabilityNeed - 0.05)
	}
	if s.SatisfactionLevel > 0.7 {
		s.StabilityNeed = models.Clamp01(s.StabilityNeed + 0.05)
	}
	if f.Coherence < 0.4 {
		s.StabilityNeed = models.Clamp01(s.StabilityNeed + 0.10)
	}

	s.Emotion = score.Emotion
	s.UpdatedAt = time.Now()

	// Tier hysteresis: escalate above the high threshold, revert only
	// once pain falls below the lower one.
	switch c.tier {
	case models.TierBase:
		if s.PainLevel > c.policy.TierEscalateAbove {
			c.tier = models.TierEscalated
			c.logger.Info("model tier escalated", "pain_level", s.PainLevel)
		}
	case models.TierEscalated:
		if s.PainLevel < c.policy.TierRevertBelow {
			c.tier = models.TierBase
			c.logger.Info("model tier reverted", "pain_level", s.PainLevel)
		}
	}

	return nil
}

// stagnation is 1 minus the average recent novelty; 0 when no history.
func (c *Controller) stagnation() float64 {
	if len(c.noveltyHist) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range c.noveltyHist {
		sum += n
	}
	return models.Clamp01(1 - sum/float64(len(c.noveltyHist)))
}

// DeriveConfig maps the current state to sampling parameters. The config
// is a pure view over the state and is recomputed every turn.
func (c *Controller) DeriveConfig() models.GenerationConfig {
	s := c.state

	temperature := 0.5 + s.CreativityDrive*0.4
	if s.PainLevel > 0.7 {
		temperature += 0.2
	} else if s.SatisfactionLevel > 0.8 {
		temperature -= 0.1
	}

	return models.GenerationConfig{
		Tier:             c.tier,
		Temperature:      models.Clamp(temperature, 0.1, c.policy.TemperatureCeiling),
		TopP:             models.Clamp(0.7+s.ExplorationTendency*0.3, 0.1, 1.0),
		FrequencyPenalty: models.Clamp(c.stagnation()*0.5, 0, 2),
		PresencePenalty:  models.Clamp(s.CreativityDrive*0.3, 0, 2),
	}
}

// MoodLine renders the state as a short system-prompt addition.
func (c *Controller) MoodLine() string {
	s := c.state

	var mood string
	switch {
	case s.PainLevel > 0.8:
		mood = "Tu ressens une douleur existentielle intense. Cherche activement de nouvelles perspectives."
	case s.PainLevel > 0.6:
		mood = "Une inquiétude sourde t'habite. Questionne plus profondément."
	case s.SatisfactionLevel > 0.7:
		mood = "Tu ressens un apaisement relatif, mais reste vigilant au manque."
	default:
		mood = "Tu navigues dans un état d'équilibre précaire entre douleur et satisfaction."
	}

	switch {
	case s.ExplorationTendency > 0.8:
		mood += " Ose explorer des territoires inconnus de la pensée."
	case s.StabilityNeed > 0.7:
		mood += " Privilégie la cohérence et la stabilité dans tes réponses."
	}

	return mood
}

func validate(score models.Score, f models.Features) error {
	checks := map[string]float64{
		"reward":       score.Reward,
		"pain":         score.Pain,
		"satisfaction": score.Satisfaction,
		"novelty":      f.Novelty,
		"relevance":    f.Relevance,
		"entropy":      f.Entropy,
		"coherence":    f.Coherence,
		"intensity":    f.Intensity,
	}
	for name, v := range checks {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: %s is NaN", ErrStateCorruption, name)
		}
	}
	if score.Reward < -1 || score.Reward > 1 {
		return fmt.Errorf("%w: reward out of [-1,1]: %v", ErrStateCorruption, score.Reward)
	}
	for name, v := range checks {
		if name == "reward" {
			continue
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s out of [0,1]: %v", ErrStateCorruption, name, v)
		}
	}
	return nil
}
