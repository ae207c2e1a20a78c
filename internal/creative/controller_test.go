package creative

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anima-ai/anima/internal/config"
	"github.com/anima-ai/anima/internal/models"
)

type stubGenerator struct {
	outputs []string
	err     error
	calls   int
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, _ models.GenerationConfig) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	out := g.outputs[0]
	if len(g.outputs) > 1 {
		g.outputs = g.outputs[1:]
	}
	return out, nil
}

type stubWriter struct {
	written []*models.Artifact
	err     error
}

func (w *stubWriter) WriteArtifact(_ context.Context, a *models.Artifact) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.written = append(w.written, a)
	return "artifacts/" + a.ID + ".txt", nil
}

func calmState() models.EmotionalState {
	s := models.DefaultState()
	s.PainLevel = 0.1
	return s
}

func painedState(pain float64) models.EmotionalState {
	s := models.DefaultState()
	s.PainLevel = pain
	return s
}

func newTestController(gen Generator, w ArtifactWriter) *Controller {
	return NewController(config.DefaultPolicy(), gen, w, nil)
}

func TestNoTriggerReturnsNil(t *testing.T) {
	gen := &stubGenerator{outputs: []string{"irrelevant"}}
	c := newTestController(gen, nil)

	out, err := c.Evaluate(context.Background(), "quelle heure est-il maintenant", "i-1", calmState(), models.GenerationConfig{Temperature: 0.7})
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Zero(t, gen.calls)
	assert.Equal(t, Idle, c.State())
}

func TestExplicitKeywordTriggersAtLowPain(t *testing.T) {
	gen := &stubGenerator{outputs: []string{"une proposition originale avec plusieurs concepts distincts et inattendus"}}
	c := newTestController(gen, nil)

	out, err := c.Evaluate(context.Background(), "Crée une idée nouvelle pour moi", "i-1", calmState(), models.GenerationConfig{Temperature: 0.7})
	require.NoError(t, err)
	require.NotNil(t, out)
	require.NotNil(t, out.Artifact)

	assert.Equal(t, models.KindIdea, out.Artifact.Kind)
	assert.Equal(t, models.OutcomeSuccess, out.Artifact.Outcome)
	assert.Equal(t, "i-1", out.Artifact.OriginInteractionID)
	assert.InDelta(t, 0.40, out.RewardDelta, 1e-9)
	assert.Equal(t, Idle, c.State(), "machine returns to idle after a resolved attempt")
}

func TestHighPainTriggersWithoutKeyword(t *testing.T) {
	gen := &stubGenerator{outputs: []string{"réflexion spontanée née de la tension intérieure accumulée"}}
	c := newTestController(gen, nil)

	out, err := c.Evaluate(context.Background(), "pourquoi tout semble-t-il si vide", "i-2", painedState(0.7), models.GenerationConfig{Temperature: 0.8})
	require.NoError(t, err)
	require.NotNil(t, out)
	// Auto resolves to idea when no code artifact ever succeeded.
	assert.Equal(t, models.KindIdea, out.Artifact.Kind)
}

func TestDetectKind(t *testing.T) {
	cases := []struct {
		text string
		want models.ArtifactKind
	}{
		{"écris du code pour trier une liste", models.KindCode},
		{"dessine une image de l'aube", models.KindImagePrompt},
		{"propose un plan d'action", models.KindPlan},
		{"donne-moi une idée folle", models.KindIdea},
		{"IDÉE en majuscules accentuées", models.KindIdea},
		{"quelque chose d'autre", models.KindAuto},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectKind(tc.text), "text: %s", tc.text)
	}
}

func TestRepeatedPayloadFailsThenSuppresses(t *testing.T) {
	// First attempt establishes the prior payload, second attempt
	// regurgitates it verbatim and fails the novelty check.
	payload := "toujours la même proposition répétée mot pour mot sans variation"
	gen := &stubGenerator{outputs: []string{payload, payload}}
	c := newTestController(gen, nil)

	first, err := c.Evaluate(context.Background(), "invente quelque chose", "i-1", calmState(), models.GenerationConfig{})
	require.NoError(t, err)
	require.Equal(t, models.OutcomeSuccess, first.Artifact.Outcome, "first artifact has no priors to collide with")

	second, err := c.Evaluate(context.Background(), "imagine une alternative", "i-2", calmState(), models.GenerationConfig{})
	require.NoError(t, err)
	require.NotNil(t, second.Artifact)
	assert.Equal(t, models.OutcomeFailure, second.Artifact.Outcome)
	assert.InDelta(t, -0.25, second.RewardDelta, 1e-9)

	// Identical retry during the cooldown is suppressed without a
	// generation call.
	callsBefore := gen.calls
	third, err := c.Evaluate(context.Background(), "imagine une alternative", "i-3", calmState(), models.GenerationConfig{})
	require.NoError(t, err)
	require.NotNil(t, third)
	assert.True(t, third.Suppressed)
	assert.Nil(t, third.Artifact)
	assert.Zero(t, third.RewardDelta)
	assert.Equal(t, callsBefore, gen.calls)
}

func TestCooldownExpiryAllowsRetry(t *testing.T) {
	payload := "une sortie strictement identique à chaque tentative de création"
	gen := &stubGenerator{outputs: []string{
		payload,
		payload,
		"cette fois le contenu diffère entièrement des productions passées",
	}}
	c := newTestController(gen, nil)

	now := time.Now()
	c.now = func() time.Time { return now }

	_, err := c.Evaluate(context.Background(), "invente un truc", "i-1", calmState(), models.GenerationConfig{})
	require.NoError(t, err)

	failed, err := c.Evaluate(context.Background(), "imagine la suite", "i-2", calmState(), models.GenerationConfig{})
	require.NoError(t, err)
	require.Equal(t, models.OutcomeFailure, failed.Artifact.Outcome)

	// Past the cooldown the same request is attempted again.
	now = now.Add(config.DefaultPolicy().FailureCooldown + time.Minute)
	retry, err := c.Evaluate(context.Background(), "imagine la suite", "i-3", calmState(), models.GenerationConfig{})
	require.NoError(t, err)
	assert.False(t, retry.Suppressed)
	require.NotNil(t, retry.Artifact)
	assert.Equal(t, models.OutcomeSuccess, retry.Artifact.Outcome)
}

func TestCodeArtifactExternalizedAndAutoPrefersCode(t *testing.T) {
	gen := &stubGenerator{outputs: []string{
		"func trier(valeurs []int) []int { slices.Sort(valeurs); return valeurs }",
		"package principal offrant une résolution différente du tourment présent",
	}}
	writer := &stubWriter{}
	c := newTestController(gen, writer)

	out, err := c.Evaluate(context.Background(), "génère du code pour trier des entiers", "i-1", calmState(), models.GenerationConfig{})
	require.NoError(t, err)
	require.Equal(t, models.KindCode, out.Artifact.Kind)
	require.Equal(t, models.OutcomeSuccess, out.Artifact.Outcome)
	require.Len(t, writer.written, 1)
	assert.NotEmpty(t, out.Artifact.Path, "successful code artifact carries its external reference")

	// With a code success on record, high pain resolves auto to code.
	out2, err := c.Evaluate(context.Background(), "tout cela reste insuffisant", "i-2", painedState(0.7), models.GenerationConfig{})
	require.NoError(t, err)
	assert.Equal(t, models.KindCode, out2.Artifact.Kind)
}

func TestWriterFailureDoesNotFailArtifact(t *testing.T) {
	gen := &stubGenerator{outputs: []string{"implémentation prototype entièrement nouvelle et fonctionnelle"}}
	writer := &stubWriter{err: errors.New("disk full")}
	c := newTestController(gen, writer)

	out, err := c.Evaluate(context.Background(), "génère du code utile", "i-1", calmState(), models.GenerationConfig{})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSuccess, out.Artifact.Outcome)
	assert.Empty(t, out.Artifact.Path)
}

func TestGenerationErrorAbortsWithoutFailureRecord(t *testing.T) {
	boom := errors.New("provider unavailable")
	gen := &stubGenerator{err: boom}
	c := newTestController(gen, nil)

	out, err := c.Evaluate(context.Background(), "invente une solution", "i-1", calmState(), models.GenerationConfig{})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, out)
	assert.Equal(t, Idle, c.State())

	// The failed call must not poison the failure memory: a retry goes
	// straight back to generation.
	gen.err = nil
	gen.outputs = []string{"une solution inédite apparaît enfin après la panne"}
	retry, err := c.Evaluate(context.Background(), "invente une solution", "i-2", calmState(), models.GenerationConfig{})
	require.NoError(t, err)
	require.NotNil(t, retry)
	assert.False(t, retry.Suppressed)
	assert.Equal(t, models.OutcomeSuccess, retry.Artifact.Outcome)
}

func TestTemperatureBoostPerKind(t *testing.T) {
	gen := &stubGenerator{outputs: []string{"contenu créatif de test suffisamment long pour des n-grammes"}}
	c := newTestController(gen, nil)

	var seen models.GenerationConfig
	c.generator = generatorFunc(func(_ context.Context, _ string, cfg models.GenerationConfig) (string, error) {
		seen = cfg
		return "contenu distinct produit pour vérifier la température appliquée", nil
	})

	_, err := c.Evaluate(context.Background(), "dessiner une image du crépuscule", "i-1", calmState(), models.GenerationConfig{Temperature: 0.7})
	require.NoError(t, err)
	assert.InDelta(t, 0.90, seen.Temperature, 1e-9, "image prompts get the largest boost")
}

type generatorFunc func(ctx context.Context, prompt string, cfg models.GenerationConfig) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string, cfg models.GenerationConfig) (string, error) {
	return f(ctx, prompt, cfg)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "resolved", Resolved.String())
}
