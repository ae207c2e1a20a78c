package feature

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anima-ai/anima/internal/config"
)

func newTestExtractor() *Extractor {
	return NewExtractor(config.DefaultPolicy().Lexicon)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "CRÉE", "cree"},
		{"accents stripped", "émerveillement", "emerveillement"},
		{"plain ascii untouched", "build something", "build something"},
		{"mixed", "Génère-Moi Ça", "genere-moi ca"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNoveltyNoHistory(t *testing.T) {
	assert.Equal(t, 1.0, Novelty("une réponse complètement nouvelle", nil))
}

func TestNoveltyIdenticalResponse(t *testing.T) {
	text := "une réponse complètement nouvelle qui se répète mot pour mot"
	got := Novelty(text, []string{text})
	assert.Equal(t, 0.0, got, "verbatim repeat should have zero novelty")
}

func TestNoveltyPartialOverlap(t *testing.T) {
	history := []string{"le chat dort sur le canapé rouge du salon"}
	got := Novelty("le chat dort dans le jardin sous un arbre", history)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 1.0)
}

func TestNoveltyEmptyResponse(t *testing.T) {
	got := Novelty("", []string{"quelque chose d'antérieur ici"})
	assert.Equal(t, 0.0, got, "empty response fails closed")
}

func TestRelevanceSharedVocabulary(t *testing.T) {
	ex := newTestExtractor()
	f, _ := ex.Extract(
		"qu'est-ce que la conscience artificielle",
		"la conscience artificielle est une question ouverte de la philosophie",
		nil,
	)
	assert.Greater(t, f.Relevance, 0.5, "shared vocabulary should score above the rescaled midpoint")
}

func TestRelevanceEmptyPrompt(t *testing.T) {
	ex := newTestExtractor()
	f, _ := ex.Extract("", "une réponse quelconque", nil)
	assert.Equal(t, 0.0, f.Relevance)
}

func TestEntropyBounds(t *testing.T) {
	ex := newTestExtractor()

	// Single repeated word: one-symbol vocabulary, zero entropy.
	f, _ := ex.Extract("q", "mot mot mot mot", nil)
	assert.Equal(t, 0.0, f.Entropy)

	// All-distinct words: maximal normalized entropy.
	f, _ = ex.Extract("q", "chaque mot est totalement distinct ici vraiment", nil)
	assert.InDelta(t, 1.0, f.Entropy, 1e-9)
}

func TestCoherence(t *testing.T) {
	ex := newTestExtractor()

	// Structured multi-sentence text about one topic.
	coherent := "Le problème est difficile. Le problème demande une solution. La solution demande du temps."
	f, _ := ex.Extract("q", coherent, nil)
	assert.Greater(t, f.Coherence, 0.5)

	// Fragmented noise.
	f, _ = ex.Extract("q", "Oui. Non. Ha. Eh.", nil)
	assert.Less(t, f.Coherence, 0.5)

	// Empty text fails closed.
	f, _ = ex.Extract("q", "", nil)
	assert.Equal(t, 0.0, f.Coherence)
}

func TestIntensityAndTone(t *testing.T) {
	ex := newTestExtractor()

	f, tone := ex.Extract("q", "je ressens une grande joie et un bonheur profond", nil)
	assert.Greater(t, f.Intensity, 0.0)
	assert.Equal(t, "joy", tone)

	f, tone = ex.Extract("q", "la douleur et la souffrance sont un tourment", nil)
	assert.Greater(t, f.Intensity, 0.5, "three cues should push intensity past half")
	assert.Equal(t, "pain", tone)

	f, tone = ex.Extract("q", "les pommes de terre sont cuites", nil)
	assert.Equal(t, 0.0, f.Intensity)
	assert.Equal(t, "neutralité", tone)
}

func TestExtractNeverNaNNorOutOfRange(t *testing.T) {
	ex := newTestExtractor()
	inputs := []struct{ prompt, response string }{
		{"", ""},
		{"a", ""},
		{"", "b"},
		{"???", "!!!"},
		{"mot", strings.Repeat("mot ", 500)},
	}

	for _, in := range inputs {
		f, tone := ex.Extract(in.prompt, in.response, []string{"historique quelconque ici"})
		for name, v := range map[string]float64{
			"novelty":   f.Novelty,
			"relevance": f.Relevance,
			"entropy":   f.Entropy,
			"coherence": f.Coherence,
			"intensity": f.Intensity,
		} {
			require.False(t, math.IsNaN(v), "%s is NaN for %q/%q", name, in.prompt, in.response)
			require.GreaterOrEqual(t, v, 0.0, "%s below 0", name)
			require.LessOrEqual(t, v, 1.0, "%s above 1", name)
		}
		require.NotEmpty(t, tone)
	}
}
