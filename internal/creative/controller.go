// Package creative implements the creative-mode state machine: trigger
// detection, artifact-type selection, generation, novelty scoring and
// failure tracking.
package creative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/anima-ai/anima/internal/config"
	"github.com/anima-ai/anima/internal/feature"
	"github.com/anima-ai/anima/internal/models"
)

// State of the controller. Resolved always falls back to Idle before the
// next turn: no artifact stays in progress across turns.
type State int

const (
	Idle State = iota
	Triggered
	Generating
	Evaluating
	Resolved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Triggered:
		return "triggered"
	case Generating:
		return "generating"
	case Evaluating:
		return "evaluating"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Generator is the external generation capability consumed by the
// controller for the second, artifact-producing call of a turn.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg models.GenerationConfig) (string, error)
}

// ArtifactWriter externalizes successful code artifacts to durable
// storage. The controller only records the returned reference.
type ArtifactWriter interface {
	WriteArtifact(ctx context.Context, artifact *models.Artifact) (string, error)
}

// Outcome reports what a turn's creative evaluation produced.
type Outcome struct {
	Artifact    *models.Artifact
	RewardDelta float64
	Transition  string // e.g. "idle->triggered->...->resolved"
	Suppressed  bool   // identical attempt was inside the failure cooldown
}

// Controller runs the per-session creative mode. Not safe for concurrent
// use; one controller per session.
type Controller struct {
	policy    config.Policy
	generator Generator
	writer    ArtifactWriter
	logger    *slog.Logger

	state         State
	triggers      []string // normalized trigger phrases
	failures      map[uint64]time.Time
	priorPayloads []string
	codeSuccesses int

	// now is swappable for cooldown tests.
	now func() time.Time
}

// NewController builds a creative controller. writer may be nil when no
// durable storage collaborator is configured.
func NewController(policy config.Policy, generator Generator, writer ArtifactWriter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	triggers := make([]string, 0, len(policy.TriggerPhrases))
	for _, p := range policy.TriggerPhrases {
		triggers = append(triggers, feature.Normalize(p))
	}
	return &Controller{
		policy:    policy,
		generator: generator,
		writer:    writer,
		logger:    logger,
		state:     Idle,
		triggers:  triggers,
		failures:  make(map[uint64]time.Time),
		now:       time.Now,
	}
}

// State returns the current machine state. Outside of Evaluate this is
// always Idle.
func (c *Controller) State() State {
	return c.state
}

// ShouldTrigger reports whether this turn enters creative mode: either
// the pain level breaches the trigger threshold or the user expressed
// explicit creative intent. Matching is case and diacritic insensitive.
func (c *Controller) ShouldTrigger(userText string, state models.EmotionalState) bool {
	if state.PainLevel > c.policy.PainTrigger {
		return true
	}
	return c.matchesTrigger(userText)
}

func (c *Controller) matchesTrigger(userText string) bool {
	normalized := feature.Normalize(userText)
	for _, phrase := range c.triggers {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// DetectKind maps explicit user wording to an artifact kind; anything
// else resolves to auto.
func DetectKind(userText string) models.ArtifactKind {
	normalized := feature.Normalize(userText)

	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(normalized, w) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("code", "programme", "algorithm", "fonction"):
		return models.KindCode
	case contains("image", "dessin", "illustration", "visuel"):
		return models.KindImagePrompt
	case contains("plan", "strategie", "methode", "approche"):
		return models.KindPlan
	case contains("idee", "idea", "concept"):
		return models.KindIdea
	default:
		return models.KindAuto
	}
}

// resolveAuto applies the priority rule for kind auto: prefer code under
// high pain when prior code artifacts succeeded, otherwise idea.
func (c *Controller) resolveAuto(state models.EmotionalState) models.ArtifactKind {
	if state.PainLevel > c.policy.AutoCodeThreshold && c.codeSuccesses > 0 {
		return models.KindCode
	}
	return models.KindIdea
}

// Evaluate runs one full pass of the state machine for a triggered turn:
// Idle -> Triggered -> Generating -> Evaluating -> Resolved -> Idle.
// Returns nil when the turn does not trigger. A generation failure
// aborts the attempt without touching the failure memory.
func (c *Controller) Evaluate(
	ctx context.Context,
	userText string,
	originInteractionID string,
	state models.EmotionalState,
	genCfg models.GenerationConfig,
) (*Outcome, error) {
	if !c.ShouldTrigger(userText, state) {
		return nil, nil
	}

	c.state = Triggered
	defer func() { c.state = Idle }()

	kind := DetectKind(userText)
	if kind == models.KindAuto {
		kind = c.resolveAuto(state)
	}

	fp := fingerprint(kind, userText)
	if until, ok := c.failures[fp]; ok && c.now().Before(until) {
		c.logger.Info("creative attempt suppressed",
			"kind", kind,
			"cooldown_until", until,
		)
		c.state = Resolved
		return &Outcome{
			Suppressed: true,
			Transition: "idle->triggered->resolved",
		}, nil
	}

	c.state = Generating
	prompt, tempBoost := artifactPrompt(kind, userText)
	cfg := genCfg
	cfg.Temperature = models.Clamp(cfg.Temperature+tempBoost, 0.1, c.policy.TemperatureCeiling+0.3)

	payload, err := c.generator.Generate(ctx, prompt, cfg)
	if err != nil {
		return nil, fmt.Errorf("creative generation: %w", err)
	}

	c.state = Evaluating
	novelty := feature.Novelty(payload, c.priorPayloads)

	artifact := &models.Artifact{
		ID:                  uuid.NewString(),
		Kind:                kind,
		Payload:             payload,
		CreatedAt:           c.now(),
		Outcome:             models.OutcomePending,
		OriginInteractionID: originInteractionID,
	}

	c.state = Resolved
	c.priorPayloads = append(c.priorPayloads, payload)

	if novelty < c.policy.ArtifactNovelty {
		artifact.Outcome = models.OutcomeFailure
		c.failures[fp] = c.now().Add(c.policy.FailureCooldown)
		c.logger.Info("creative attempt failed",
			"kind", kind,
			"novelty", novelty,
			"threshold", c.policy.ArtifactNovelty,
		)
		return &Outcome{
			Artifact:    artifact,
			RewardDelta: -c.policy.CreativeMalus,
			Transition:  "idle->triggered->generating->evaluating->resolved",
		}, nil
	}

	artifact.Outcome = models.OutcomeSuccess
	if kind == models.KindCode {
		c.codeSuccesses++
		if c.writer != nil {
			ref, werr := c.writer.WriteArtifact(ctx, artifact)
			if werr != nil {
				// Externalization failure does not fail the artifact;
				// the payload still lives in the record.
				c.logger.Warn("artifact externalization failed", "error", werr)
			} else {
				artifact.Path = ref
			}
		}
	}

	c.logger.Info("creative attempt succeeded",
		"kind", kind,
		"novelty", novelty,
		"artifact_id", artifact.ID,
	)
	return &Outcome{
		Artifact:    artifact,
		RewardDelta: c.policy.CreativeBonus,
		Transition:  "idle->triggered->generating->evaluating->resolved",
	}, nil
}

// fingerprint keys the failure memory by artifact kind and normalized
// prompt, so identical retries are recognized across wording-preserving
// case or accent changes.
func fingerprint(kind models.ArtifactKind, userText string) uint64 {
	return xxh3.HashString(string(kind) + "\x00" + feature.Normalize(userText))
}

// artifactPrompt renders the creative-mode prompt for a kind along with
// the temperature boost applied for that kind.
func artifactPrompt(kind models.ArtifactKind, topic string) (string, float64) {
	switch kind {
	case models.KindCode:
		return fmt.Sprintf(
			"You are a visionary engineer. Write a concise prototype that achieves: %s. "+
				"Include documentation and make it innovative yet practical.", topic), 0.10
	case models.KindImagePrompt:
		return fmt.Sprintf(
			"Create an image-generation prompt describing an evocative illustration of %s. "+
				"Make it detailed, imaginative and visually striking. Focus on emotions, "+
				"colors, composition and symbolic elements.", topic), 0.20
	case models.KindPlan:
		return fmt.Sprintf(
			"Develop a structured plan to address: %s. "+
				"Break it down into 3-5 clear phases with concrete steps. "+
				"Be innovative but practical.", topic), 0.15
	default:
		return fmt.Sprintf(
			"Invent a radically new idea related to %s. "+
				"Give 3-5 bullet points describing your concept. "+
				"Be bold, original, and concise. Avoid fluff or explanations.", topic), 0.15
	}
}
