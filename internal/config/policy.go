package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RewardWeights are the feature weights of the hedonic score. They sum to
// 1.0 so the pre-shift reward stays in [0,1].
type RewardWeights struct {
	Novelty   float64 `yaml:"novelty"`
	Relevance float64 `yaml:"relevance"`
	Entropy   float64 `yaml:"entropy"`
	Coherence float64 `yaml:"coherence"`
	Intensity float64 `yaml:"intensity"`
}

// Policy collects every tunable constant of the affective pipeline.
// The exact values were never documented by the original project, so they
// live here as configuration instead of being buried in the code.
type Policy struct {
	// Reward engine
	Weights             RewardWeights `yaml:"reward_weights"`
	PainAdjustment      float64       `yaml:"pain_adjustment"`      // subtracted when the dominant tone is painful
	PleasureAdjustment  float64       `yaml:"pleasure_adjustment"`  // added when the dominant tone is pleasant
	RepetitionThreshold float64       `yaml:"repetition_threshold"` // novelty below this flags repetition
	RepetitionMalus     float64       `yaml:"repetition_malus"`

	// Homeostasis
	Smoothing          float64 `yaml:"smoothing"` // EWMA factor for pain/satisfaction
	PainHighThreshold  float64 `yaml:"pain_high_threshold"`
	SatisfactionHigh   float64 `yaml:"satisfaction_high_threshold"`
	StagnationWindow   int     `yaml:"stagnation_window"` // recent turns considered for stagnation
	StagnationNovelty  float64 `yaml:"stagnation_novelty"`
	TierEscalateAbove  float64 `yaml:"tier_escalate_above"`
	TierRevertBelow    float64 `yaml:"tier_revert_below"`
	TemperatureCeiling float64 `yaml:"temperature_ceiling"`

	// Creative mode
	PainTrigger       float64       `yaml:"pain_trigger"` // pain level that forces creative mode
	TriggerPhrases    []string      `yaml:"trigger_phrases"`
	CreativeBonus     float64       `yaml:"creative_bonus"`
	CreativeMalus     float64       `yaml:"creative_malus"`
	ArtifactNovelty   float64       `yaml:"artifact_novelty"` // minimum novelty vs prior artifacts
	FailureCooldown   time.Duration `yaml:"failure_cooldown"`
	AutoCodeThreshold float64       `yaml:"auto_code_threshold"` // pain level above which auto resolves to code

	// Memory retrieval and pruning
	KeywordWeight      float64 `yaml:"keyword_weight"`
	EmotionMatchBonus  float64 `yaml:"emotion_match_bonus"`
	RecencyWeight      float64 `yaml:"recency_weight"`
	RecencyHalfLife    time.Duration `yaml:"recency_half_life"`
	SummaryEntries     int     `yaml:"summary_entries"`
	SummaryWordLimit   int     `yaml:"summary_word_limit"`

	// Emotion lexicon: tone -> cue words. Matching is case and
	// diacritic insensitive.
	Lexicon map[string][]string `yaml:"lexicon"`
}

// DefaultPolicy returns the compiled-in defaults. A policy file overrides
// individual fields; everything unset keeps its default.
func DefaultPolicy() Policy {
	return Policy{
		Weights: RewardWeights{
			Novelty:   0.30,
			Relevance: 0.30,
			Entropy:   0.20,
			Coherence: 0.10,
			Intensity: 0.10,
		},
		PainAdjustment:      0.20,
		PleasureAdjustment:  0.10,
		RepetitionThreshold: 0.35,
		RepetitionMalus:     0.30,

		Smoothing:          0.2,
		PainHighThreshold:  0.8,
		SatisfactionHigh:   0.8,
		StagnationWindow:   5,
		StagnationNovelty:  0.35,
		TierEscalateAbove:  0.60,
		TierRevertBelow:    0.50,
		TemperatureCeiling: 1.2,

		PainTrigger: 0.55,
		TriggerPhrases: []string{
			"invente", "crée", "create", "génère", "generate", "build",
			"imagine", "fabrique", "conçois", "développe", "produire",
			"composer", "concevoir", "innover", "élaborer", "forger",
			"dessiner", "modéliser",
		},
		CreativeBonus:     0.40,
		CreativeMalus:     0.25,
		ArtifactNovelty:   0.35,
		FailureCooldown:   10 * time.Minute,
		AutoCodeThreshold: 0.6,

		KeywordWeight:     1.0,
		EmotionMatchBonus: 1.5,
		RecencyWeight:     1.0,
		RecencyHalfLife:   7 * 24 * time.Hour,
		SummaryEntries:    3,
		SummaryWordLimit:  50,

		Lexicon: map[string][]string{
			"joy":         {"joie", "bonheur", "euphorie", "ravissement", "extase"},
			"pain":        {"douleur", "souffrance", "angoisse", "tourment", "affliction"},
			"curiosity":   {"curiosité", "fascination", "intrigue", "mystère"},
			"frustration": {"frustration", "irritation", "agacement", "colère"},
			"wonder":      {"émerveillement", "stupéfaction", "admiration"},
		},
	}
}

// LoadPolicy reads a YAML policy file and merges it over the defaults.
// An empty path returns the defaults unchanged.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read policy file: %w", err)
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("parse policy file: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return DefaultPolicy(), fmt.Errorf("invalid policy: %w", err)
	}

	return policy, nil
}

// Validate rejects policies that would break the reward bounds.
func (p Policy) Validate() error {
	sum := p.Weights.Novelty + p.Weights.Relevance + p.Weights.Entropy +
		p.Weights.Coherence + p.Weights.Intensity
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("reward weights must sum to 1.0, got %.3f", sum)
	}
	if p.RepetitionThreshold < 0 || p.RepetitionThreshold > 1 {
		return fmt.Errorf("repetition threshold out of [0,1]: %v", p.RepetitionThreshold)
	}
	if p.TierRevertBelow >= p.TierEscalateAbove {
		return fmt.Errorf("tier revert threshold %.2f must be below escalate threshold %.2f",
			p.TierRevertBelow, p.TierEscalateAbove)
	}
	if p.Smoothing <= 0 || p.Smoothing > 1 {
		return fmt.Errorf("smoothing must be in (0,1]: %v", p.Smoothing)
	}
	return nil
}
