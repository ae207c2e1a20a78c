package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anima-ai/anima/internal/config"
	"github.com/anima-ai/anima/internal/db"
	"github.com/anima-ai/anima/internal/models"
)

// scriptedGenerator returns queued responses; both the main turn and the
// creative attempt draw from the same queue.
type scriptedGenerator struct {
	outputs []string
	err     error
	systems []string
	calls   int
}

func (g *scriptedGenerator) next() (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	out := g.outputs[0]
	if len(g.outputs) > 1 {
		g.outputs = g.outputs[1:]
	}
	return out, nil
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string, _ models.GenerationConfig) (string, error) {
	return g.next()
}

func (g *scriptedGenerator) GenerateWithSystem(_ context.Context, system, _ string, _ models.GenerationConfig) (string, error) {
	g.systems = append(g.systems, system)
	return g.next()
}

// fakePersistence records calls and injects failures.
type fakePersistence struct {
	entries   map[string][]models.MemoryEntry
	states    map[string]*db.StateSnapshot
	artifacts map[string][]models.Artifact
	saveErr   error
	wiped     []string
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{
		entries:   make(map[string][]models.MemoryEntry),
		states:    make(map[string]*db.StateSnapshot),
		artifacts: make(map[string][]models.Artifact),
	}
}

func (p *fakePersistence) SaveMemoryEntries(_ context.Context, session string, entries []models.MemoryEntry) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.entries[session] = entries
	return nil
}

func (p *fakePersistence) LoadMemoryEntries(_ context.Context, session string) ([]models.MemoryEntry, error) {
	return p.entries[session], nil
}

func (p *fakePersistence) SaveArtifact(_ context.Context, session string, artifact models.Artifact) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.artifacts[session] = append(p.artifacts[session], artifact)
	return nil
}

func (p *fakePersistence) ListArtifacts(_ context.Context, session string) ([]models.Artifact, error) {
	return p.artifacts[session], nil
}

func (p *fakePersistence) SaveState(_ context.Context, session string, state models.EmotionalState, tier models.ModelTier) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.states[session] = &db.StateSnapshot{Session: session, State: state, Tier: tier}
	return nil
}

func (p *fakePersistence) LoadState(_ context.Context, session string) (*db.StateSnapshot, error) {
	snapshot, ok := p.states[session]
	if !ok {
		return nil, fmt.Errorf("load state for session %q: %w", session, db.ErrNotFound)
	}
	return snapshot, nil
}

func (p *fakePersistence) WipeSession(_ context.Context, session string) error {
	p.wiped = append(p.wiped, session)
	delete(p.entries, session)
	delete(p.states, session)
	delete(p.artifacts, session)
	return nil
}

func testOptions(gen TextGenerator, persistence Persistence) Options {
	cfg := config.Config{SessionID: "test-session", MemoryMaxSize: 100}
	return Options{
		Config:      cfg,
		Policy:      config.DefaultPolicy(),
		Generator:   gen,
		Persistence: persistence,
	}
}

func TestProcessTurnUpdatesStateAndMemory(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		"La conscience est une question ouverte. Elle fascine les philosophes depuis toujours.",
	}}
	s := NewSession(testOptions(gen, nil))
	before := s.State()

	result, err := s.ProcessTurn(context.Background(), "parle-moi de la conscience")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Response)
	assert.NotEmpty(t, result.Score.Emotion)
	assert.Equal(t, 1, s.MemoryStats().Total)
	assert.NotEqual(t, before.UpdatedAt, result.State.UpdatedAt)
	assert.Nil(t, result.Artifact)

	// The system prompt carries mood and memory context.
	require.Len(t, gen.systems, 1)
	assert.Contains(t, gen.systems[0], "ANIMA")
	assert.Contains(t, gen.systems[0], "État intérieur")
}

func TestGenerationFailureLeavesSessionUntouched(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("provider down")}
	s := NewSession(testOptions(gen, nil))
	before := s.State()

	_, err := s.ProcessTurn(context.Background(), "une question quelconque")
	require.Error(t, err)

	assert.Equal(t, 0, s.MemoryStats().Total, "failed turn must not be archived")
	assert.Equal(t, before, s.State(), "failed turn must not move the state")
}

func TestCreativeTurnAttachesArtifact(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		"Je vais tenter quelque chose d'inédit pour répondre à ce manque.",
		"Concept : une cartographie des silences entre les pensées, rendue navigable.",
	}}
	persistence := newFakePersistence()
	s := NewSession(testOptions(gen, persistence))

	result, err := s.ProcessTurn(context.Background(), "invente un concept nouveau")
	require.NoError(t, err)
	require.NotNil(t, result.Artifact)

	assert.Equal(t, models.OutcomeSuccess, result.Artifact.Outcome)
	assert.Equal(t, 2, gen.calls, "main response plus creative generation")

	// The artifact is linked to the turn's memory entry and persisted.
	memories := s.Memories(1)
	require.Len(t, memories, 1)
	require.NotNil(t, memories[0].ArtifactRef)
	assert.Equal(t, result.Artifact.ID, *memories[0].ArtifactRef)
	require.Len(t, persistence.artifacts["test-session"], 1)

	assert.Equal(t, int64(1), s.Metrics().CreativeTriggers)
}

func TestPersistenceFailureDegrades(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		"Une réponse ordinaire sans aucune ambition créative particulière.",
	}}
	persistence := newFakePersistence()
	persistence.saveErr = errors.New("connection lost")
	s := NewSession(testOptions(gen, persistence))

	result, err := s.ProcessTurn(context.Background(), "raconte-moi ta journée")
	require.NoError(t, err, "persistence failure must not fail the turn")
	require.Error(t, result.PersistErr)

	assert.Equal(t, 1, s.MemoryStats().Total, "in-memory session keeps working")
}

func TestRestoreFreshSession(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"réponse"}}
	s := NewSession(testOptions(gen, newFakePersistence()))

	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, models.DefaultState().PainLevel, s.State().PainLevel)
}

func TestRestoreRecoversPersistedSession(t *testing.T) {
	persistence := newFakePersistence()
	state := models.DefaultState()
	state.PainLevel = 0.75
	persistence.states["test-session"] = &db.StateSnapshot{
		Session: "test-session", State: state, Tier: models.TierEscalated,
	}
	persistence.entries["test-session"] = []models.MemoryEntry{
		{Interaction: models.Interaction{ID: "i-1", UserText: "q", AIText: "r", Emotion: "douleur"}},
	}

	gen := &scriptedGenerator{outputs: []string{"réponse"}}
	s := NewSession(testOptions(gen, persistence))
	require.NoError(t, s.Restore(context.Background()))

	assert.Equal(t, 0.75, s.State().PainLevel)
	assert.Equal(t, models.TierEscalated, s.GenerationConfig().Tier)
	assert.Equal(t, 1, s.MemoryStats().Total)
}

func TestReset(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		"Une réponse qui sera oubliée après la remise à zéro.",
	}}
	persistence := newFakePersistence()
	s := NewSession(testOptions(gen, persistence))

	_, err := s.ProcessTurn(context.Background(), "souviens-toi de ceci")
	require.NoError(t, err)
	require.Equal(t, 1, s.MemoryStats().Total)

	require.NoError(t, s.Reset(context.Background()))
	assert.Equal(t, 0, s.MemoryStats().Total)
	assert.Equal(t, models.DefaultState().PainLevel, s.State().PainLevel)
	assert.Contains(t, persistence.wiped, "test-session")
}
