// Package memory keeps the emotionally-weighted interaction archive of a
// session: recording, contextual retrieval, narrative summaries and
// adaptive pruning.
package memory

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anima-ai/anima/internal/config"
	"github.com/anima-ai/anima/internal/feature"
	"github.com/anima-ai/anima/internal/models"
)

const maxKeywordsPerEntry = 12

// Store is the per-session emotional memory. It owns every MemoryEntry
// and the Interactions inside them. Not safe for concurrent use: a
// session runs a single logical conversation thread.
type Store struct {
	policy  config.Policy
	logger  *slog.Logger
	maxSize int

	entries   []*models.MemoryEntry
	artifacts map[string]*models.Artifact // artifact id -> artifact, for prune guards
	byID      map[string]*models.MemoryEntry
}

// NewStore creates an empty store capped at maxSize entries.
func NewStore(policy config.Policy, maxSize int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		policy:    policy,
		logger:    logger,
		maxSize:   maxSize,
		artifacts: make(map[string]*models.Artifact),
		byID:      make(map[string]*models.MemoryEntry),
	}
}

// Record archives an interaction and returns its memory entry id (the
// interaction id). Priority is fixed here and never recomputed; only
// recency decay is layered on top during pruning.
func (s *Store) Record(inter models.Interaction) string {
	if inter.ID == "" {
		inter.ID = uuid.NewString()
	}
	if inter.Timestamp.IsZero() {
		inter.Timestamp = time.Now()
	}

	entry := &models.MemoryEntry{
		Interaction: inter,
		Priority:    priority(inter),
		Keywords:    extractKeywords(inter),
		Recorded:    inter.Timestamp,
	}

	s.entries = append(s.entries, entry)
	s.byID[inter.ID] = entry

	if len(s.entries) > s.maxSize {
		s.Prune(s.maxSize)
	}

	return inter.ID
}

// priority favors painful, emotionally extreme memories over bland ones.
func priority(inter models.Interaction) float64 {
	return inter.PainScore*2 + math.Abs(inter.Reward)*1.5 + 1.0
}

// extractKeywords keeps the most significant words of both sides of the
// exchange for later retrieval matching.
func extractKeywords(inter models.Interaction) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0, maxKeywordsPerEntry)

	add := func(text string) {
		for _, w := range feature.Tokenize(feature.Normalize(text)) {
			if len(keywords) >= maxKeywordsPerEntry {
				return
			}
			if len(w) <= 3 {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			keywords = append(keywords, w)
		}
	}

	add(inter.UserText)
	add(inter.AIText)
	return keywords
}

// AttachArtifact links an artifact to the entry of its origin
// interaction. Pending artifacts shield the entry from pruning until
// they resolve.
func (s *Store) AttachArtifact(interactionID string, artifact *models.Artifact) error {
	entry, ok := s.byID[interactionID]
	if !ok {
		return fmt.Errorf("attach artifact: no memory entry for interaction %s", interactionID)
	}
	id := artifact.ID
	entry.ArtifactRef = &id
	s.artifacts[id] = artifact
	return nil
}

// Retrieve returns up to limit entries ranked by contextual relevance:
// keyword overlap, emotion match bonus and recency decay, with priority
// as the tie breaker. An empty store yields an empty slice.
func (s *Store) Retrieve(keywords []string, emotion string, limit int) []models.MemoryEntry {
	if len(s.entries) == 0 || limit <= 0 {
		return []models.MemoryEntry{}
	}

	query := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		query[feature.Normalize(k)] = struct{}{}
	}

	type ranked struct {
		entry *models.MemoryEntry
		score float64
	}

	now := time.Now()
	candidates := make([]ranked, 0, len(s.entries))
	for _, e := range s.entries {
		overlap := 0
		for _, k := range e.Keywords {
			if _, ok := query[k]; ok {
				overlap++
			}
		}

		score := float64(overlap) * s.policy.KeywordWeight
		if emotion != "" && e.Interaction.Emotion == emotion {
			score += s.policy.EmotionMatchBonus
		}
		score += s.policy.RecencyWeight * recencyDecay(now.Sub(e.Recorded), s.policy.RecencyHalfLife)

		candidates = append(candidates, ranked{entry: e, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].entry.Priority > candidates[j].entry.Priority
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]models.MemoryEntry, 0, limit)
	for _, c := range candidates[:limit] {
		out = append(out, *c.entry)
	}
	return out
}

// recencyDecay halves with every halfLife elapsed.
func recencyDecay(age, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 1
	}
	return math.Exp2(-age.Hours() / halfLife.Hours())
}

// Summarize renders the most recent entries as a narrative string for
// prompt injection.
func (s *Store) Summarize(limit int) string {
	if len(s.entries) == 0 {
		return "Éveil initial - aucun souvenir formé"
	}
	if limit <= 0 {
		limit = s.policy.SummaryEntries
	}

	recent := s.Tail(limit)
	fragments := make([]string, 0, len(recent))
	for _, e := range recent {
		words := strings.Fields(e.Interaction.AIText)
		truncated := e.Interaction.AIText
		if len(words) > s.policy.SummaryWordLimit {
			truncated = strings.Join(words[:s.policy.SummaryWordLimit], " ") + "..."
		}

		artifactNote := ""
		if e.ArtifactRef != nil {
			if a, ok := s.artifacts[*e.ArtifactRef]; ok {
				artifactNote = fmt.Sprintf(" + %s artifact", a.Kind)
			}
		}

		fragments = append(fragments, fmt.Sprintf("[%s%s] %s", e.Interaction.Emotion, artifactNote, truncated))
	}

	return strings.Join(fragments, " | ")
}

// Tail returns the n most recent entries in chronological order.
func (s *Store) Tail(n int) []models.MemoryEntry {
	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]models.MemoryEntry, 0, n)
	for _, e := range s.entries[len(s.entries)-n:] {
		out = append(out, *e)
	}
	return out
}

// RecentResponses returns the AI side of the last n exchanges, for
// novelty comparison.
func (s *Store) RecentResponses(n int) []string {
	tail := s.Tail(n)
	out := make([]string, 0, len(tail))
	for _, e := range tail {
		out = append(out, e.Interaction.AIText)
	}
	return out
}

// Prune evicts the lowest-priority entries until at most maxSize remain.
// Emotionally extreme and recent memories survive preferentially. The
// single most recent entry and entries holding a pending artifact are
// never evicted. A store already under capacity is untouched.
func (s *Store) Prune(maxSize int) {
	if len(s.entries) <= maxSize || maxSize <= 0 {
		return
	}

	now := time.Now()
	newest := s.entries[len(s.entries)-1]

	type scored struct {
		entry     *models.MemoryEntry
		effective float64
	}
	evictable := make([]scored, 0, len(s.entries))
	protected := make([]*models.MemoryEntry, 0, 4)

	for _, e := range s.entries {
		if e == newest || s.pendingArtifact(e) {
			protected = append(protected, e)
			continue
		}
		decay := recencyDecay(now.Sub(e.Recorded), s.policy.RecencyHalfLife)
		evictable = append(evictable, scored{entry: e, effective: e.Priority * decay})
	}

	keep := maxSize - len(protected)
	if keep < 0 {
		keep = 0
	}
	if keep > len(evictable) {
		keep = len(evictable)
	}

	sort.SliceStable(evictable, func(i, j int) bool {
		return evictable[i].effective > evictable[j].effective
	})

	survivors := make(map[*models.MemoryEntry]struct{}, keep+len(protected))
	for _, sc := range evictable[:keep] {
		survivors[sc.entry] = struct{}{}
	}
	for _, e := range protected {
		survivors[e] = struct{}{}
	}

	pruned := make([]*models.MemoryEntry, 0, len(survivors))
	for _, e := range s.entries {
		if _, ok := survivors[e]; ok {
			pruned = append(pruned, e)
			continue
		}
		delete(s.byID, e.Interaction.ID)
	}

	s.logger.Debug("memory pruned",
		"evicted", len(s.entries)-len(pruned),
		"kept", len(pruned),
	)
	s.entries = pruned
}

func (s *Store) pendingArtifact(e *models.MemoryEntry) bool {
	if e.ArtifactRef == nil {
		return false
	}
	a, ok := s.artifacts[*e.ArtifactRef]
	return ok && a.Outcome == models.OutcomePending
}

// Len reports how many entries the store holds.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a snapshot of all entries in insertion order, for
// persistence flushes and inspection.
func (s *Store) Entries() []models.MemoryEntry {
	out := make([]models.MemoryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	return out
}

// Restore reloads persisted entries, replacing current content.
func (s *Store) Restore(entries []models.MemoryEntry) {
	s.entries = make([]*models.MemoryEntry, 0, len(entries))
	s.byID = make(map[string]*models.MemoryEntry, len(entries))
	for i := range entries {
		e := entries[i]
		s.entries = append(s.entries, &e)
		s.byID[e.Interaction.ID] = &e
	}
	if len(s.entries) > s.maxSize {
		s.Prune(s.maxSize)
	}
}

// Clear wipes every entry and artifact reference.
func (s *Store) Clear() {
	s.entries = nil
	s.byID = make(map[string]*models.MemoryEntry)
	s.artifacts = make(map[string]*models.Artifact)
}

// Stats summarizes the archive for the status display.
type Stats struct {
	Total           int            `json:"total"`
	AvgReward       float64        `json:"avg_reward"`
	AvgPain         float64        `json:"avg_pain"`
	DominantEmotion string         `json:"dominant_emotion"`
	Emotions        map[string]int `json:"emotion_distribution"`
}

// ComputeStats aggregates reward, pain and emotion distribution.
func (s *Store) ComputeStats() Stats {
	stats := Stats{Emotions: make(map[string]int)}
	if len(s.entries) == 0 {
		return stats
	}

	var rewardSum, painSum float64
	for _, e := range s.entries {
		rewardSum += e.Interaction.Reward
		painSum += e.Interaction.PainScore
		stats.Emotions[e.Interaction.Emotion]++
	}

	stats.Total = len(s.entries)
	stats.AvgReward = rewardSum / float64(len(s.entries))
	stats.AvgPain = painSum / float64(len(s.entries))

	best := 0
	for emotion, count := range stats.Emotions {
		if count > best || (count == best && emotion < stats.DominantEmotion) {
			best = count
			stats.DominantEmotion = emotion
		}
	}
	return stats
}
