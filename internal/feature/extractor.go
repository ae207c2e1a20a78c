// Package feature derives the signal vector the reward engine scores:
// novelty, relevance, entropy, coherence and emotional intensity.
package feature

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/anima-ai/anima/internal/models"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// stripDiacritics removes combining marks so "crée" matches "cree".
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text and strips diacritics. Trigger phrases and
// lexicon cues are matched against this form.
func Normalize(s string) string {
	out, _, err := transform.String(stripDiacritics, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Tokenize splits text into lowercase word tokens.
func Tokenize(s string) []string {
	return wordPattern.FindAllString(strings.ToLower(s), -1)
}

// Extractor computes feature vectors for generated responses. It carries
// only the emotion lexicon; conversation history is passed per call so a
// single extractor serves any session.
type Extractor struct {
	lexicon map[string][]string // tone -> normalized cue words
}

// NewExtractor builds an extractor from a tone lexicon.
func NewExtractor(lexicon map[string][]string) *Extractor {
	normalized := make(map[string][]string, len(lexicon))
	for tone, words := range lexicon {
		cues := make([]string, 0, len(words))
		for _, w := range words {
			cues = append(cues, Normalize(w))
		}
		normalized[tone] = cues
	}
	return &Extractor{lexicon: normalized}
}

// Extract computes the feature vector for a response in its conversation
// context. The returned tone is the dominant lexicon category, or
// "neutralité" when no cue matched. Every feature is in [0,1]; undefined
// ratios fail closed to 0.
func (e *Extractor) Extract(prompt, response string, history []string) (models.Features, string) {
	intensity, tone := e.intensity(response)
	f := models.Features{
		Novelty:   Novelty(response, history),
		Relevance: relevance(prompt, response),
		Entropy:   entropy(response),
		Coherence: coherence(response),
		Intensity: intensity,
	}
	return f, tone
}

// Novelty is 1 minus the highest n-gram overlap ratio (n in {2,3}) between
// text and the most similar entry of history. No history means full novelty.
func Novelty(text string, history []string) float64 {
	if len(history) == 0 {
		return 1
	}

	words := Tokenize(text)
	grams2 := ngrams(words, 2)
	grams3 := ngrams(words, 3)
	if len(grams2) == 0 && len(grams3) == 0 {
		// Nothing to compare against: treat as fully repeated.
		return 0
	}

	maxOverlap := 0.0
	for _, prior := range history {
		priorWords := Tokenize(prior)
		if r := overlapRatio(grams2, ngrams(priorWords, 2)); r > maxOverlap {
			maxOverlap = r
		}
		if r := overlapRatio(grams3, ngrams(priorWords, 3)); r > maxOverlap {
			maxOverlap = r
		}
	}

	return models.Clamp01(1 - maxOverlap)
}

func ngrams(words []string, n int) map[string]struct{} {
	if len(words) < n {
		return nil
	}
	grams := make(map[string]struct{}, len(words)-n+1)
	for i := 0; i+n <= len(words); i++ {
		grams[strings.Join(words[i:i+n], " ")] = struct{}{}
	}
	return grams
}

func overlapRatio(current, prior map[string]struct{}) float64 {
	if len(current) == 0 {
		return 0
	}
	shared := 0
	for g := range current {
		if _, ok := prior[g]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(current))
}

// relevance is the cosine similarity between the bag-of-words vectors of
// prompt and response, rescaled from [-1,1] to [0,1].
func relevance(prompt, response string) float64 {
	pv := termFrequencies(prompt)
	rv := termFrequencies(response)
	if len(pv) == 0 || len(rv) == 0 {
		return 0
	}

	var dot, pnorm, rnorm float64
	for term, pc := range pv {
		pnorm += pc * pc
		if rc, ok := rv[term]; ok {
			dot += pc * rc
		}
	}
	for _, rc := range rv {
		rnorm += rc * rc
	}

	denom := math.Sqrt(pnorm) * math.Sqrt(rnorm)
	if denom == 0 {
		return 0
	}
	return models.Clamp01((dot/denom + 1) / 2)
}

func termFrequencies(text string) map[string]float64 {
	freq := make(map[string]float64)
	for _, w := range Tokenize(text) {
		freq[w]++
	}
	return freq
}

// entropy is the normalized Shannon entropy of the word distribution,
// divided by log2(vocabulary size) to bound it to [0,1].
func entropy(text string) float64 {
	words := Tokenize(text)
	if len(words) == 0 {
		return 0
	}

	counts := make(map[string]int)
	for _, w := range words {
		counts[w]++
	}

	total := float64(len(words))
	h := 0.0
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log2(p)
	}

	maxEntropy := math.Log2(float64(len(counts)))
	if maxEntropy == 0 {
		return 0
	}
	return models.Clamp01(h / maxEntropy)
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

const minSentenceWords = 3

// coherence is a structural heuristic: the fraction of well-formed
// sentences, penalized when topic similarity drops abruptly between
// consecutive sentences.
func coherence(text string) float64 {
	raw := sentenceSplit.Split(text, -1)
	sentences := make([][]string, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		sentences = append(sentences, Tokenize(s))
	}

	if len(sentences) == 0 {
		return 0
	}
	if len(sentences) == 1 {
		// Too short to judge structure: neutral score.
		return 0.7
	}

	wellFormed := 0
	for _, s := range sentences {
		if len(s) >= minSentenceWords {
			wellFormed++
		}
	}
	base := float64(wellFormed) / float64(len(sentences))

	// Penalize abrupt topic drops between consecutive sentences.
	drops := 0
	for i := 0; i+1 < len(sentences); i++ {
		if len(sentences[i]) < minSentenceWords || len(sentences[i+1]) < minSentenceWords {
			continue
		}
		if jaccard(sentences[i], sentences[i+1]) < 0.05 {
			drops++
		}
	}
	penalty := 0.5 * float64(drops) / float64(len(sentences)-1)

	return models.Clamp01(base - penalty)
}

func jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, w := range b {
		setB[w] = struct{}{}
	}

	shared := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// intensitySaturation controls how fast lexicon hits saturate toward 1.
const intensitySaturation = 0.7

// intensity counts emotion-lexicon matches and saturates via 1-e^(-k*count).
// The second return value is the dominant tone.
func (e *Extractor) intensity(response string) (float64, string) {
	tokens := Tokenize(Normalize(response))
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	total := 0
	dominant := "neutralité"
	best := 0
	for tone, cues := range e.lexicon {
		hits := 0
		for _, cue := range cues {
			if _, ok := tokenSet[cue]; ok {
				hits++
			}
		}
		total += hits
		if hits > best {
			best = hits
			dominant = tone
		}
	}

	if total == 0 {
		return 0, dominant
	}
	return models.Clamp01(1 - math.Exp(-intensitySaturation*float64(total))), dominant
}
