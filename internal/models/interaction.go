// Package models defines the data structures shared across the affective pipeline.
package models

import "time"

// Interaction is the immutable record of a single user exchange.
// Created once per turn by the reward engine, owned by the memory store.
type Interaction struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	UserText     string    `json:"user_text"`
	AIText       string    `json:"ai_text"`
	Emotion      string    `json:"emotion"`
	PainScore    float64   `json:"pain_score"`
	Satisfaction float64   `json:"satisfaction_score"`
	Reward       float64   `json:"reward"`
	Tags         []string  `json:"tags,omitempty"`
}

// MemoryEntry wraps an Interaction with retrieval and pruning metadata.
// Priority is fixed at insertion; only recency decay is applied on top of it.
type MemoryEntry struct {
	Interaction Interaction `json:"interaction"`
	Priority    float64     `json:"priority"`
	Keywords    []string    `json:"retrieval_keywords,omitempty"`
	ArtifactRef *string     `json:"artifact_ref,omitempty"`
	Recorded    time.Time   `json:"recorded"`
}

// Features is the per-response signal vector produced by the feature
// extractor. Every value is in [0,1]; the extractor fails closed to 0.
type Features struct {
	Novelty   float64 `json:"novelty"`
	Relevance float64 `json:"relevance"`
	Entropy   float64 `json:"entropy"`
	Coherence float64 `json:"coherence"`
	Intensity float64 `json:"intensity"`
}

// Score is the reward engine output for a single exchange.
type Score struct {
	Reward       float64 `json:"reward"`
	Emotion      string  `json:"emotion"`
	Pain         float64 `json:"pain"`
	Satisfaction float64 `json:"satisfaction"`
	Repetition   bool    `json:"repetition"`
}
