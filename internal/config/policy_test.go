package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyIsValid(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())
}

func TestLoadPolicyEmptyPath(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), policy)
}

func TestLoadPolicyOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := []byte(`
pain_trigger: 0.45
trigger_phrases: ["invente", "sculpte"]
repetition_threshold: 0.5
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	policy, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, 0.45, policy.PainTrigger)
	assert.Equal(t, []string{"invente", "sculpte"}, policy.TriggerPhrases)
	assert.Equal(t, 0.5, policy.RepetitionThreshold)
	// Untouched fields keep defaults.
	assert.Equal(t, DefaultPolicy().Weights, policy.Weights)
	assert.Equal(t, DefaultPolicy().CreativeBonus, policy.CreativeBonus)
}

func TestLoadPolicyRejectsBrokenWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := []byte(`
reward_weights:
  novelty: 0.9
  relevance: 0.9
  entropy: 0.0
  coherence: 0.0
  intensity: 0.0
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	_, err := LoadPolicy(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1.0")
}

func TestLoadPolicyRejectsInvertedHysteresis(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := []byte(`
tier_escalate_above: 0.4
tier_revert_below: 0.6
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	_, err := LoadPolicy(path)
	require.Error(t, err)
}
