package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/anima-ai/anima/internal/models"
)

// memoryEntryRecord is the persisted shape of a models.MemoryEntry plus
// its session key.
type memoryEntryRecord struct {
	Session     string             `json:"session"`
	Interaction models.Interaction `json:"interaction"`
	Priority    float64            `json:"priority"`
	Keywords    []string           `json:"retrieval_keywords"`
	ArtifactRef *string            `json:"artifact_ref,omitempty"`
	Recorded    time.Time          `json:"recorded"`
}

// artifactRecord is the persisted shape of a models.Artifact.
type artifactRecord struct {
	Session             string    `json:"session"`
	ArtifactID          string    `json:"artifact_id"`
	Kind                string    `json:"kind"`
	Payload             string    `json:"payload"`
	Path                *string   `json:"path,omitempty"`
	Outcome             string    `json:"outcome"`
	OriginInteractionID string    `json:"origin_interaction_id"`
	CreatedAt           time.Time `json:"created_at"`
}

// StateSnapshot is a persisted emotional state with its model tier.
type StateSnapshot struct {
	Session string                `json:"session"`
	State   models.EmotionalState `json:"state"`
	Tier    models.ModelTier      `json:"tier"`
	Saved   time.Time             `json:"saved"`
}

const memoryEntryFields = "session, interaction, priority, retrieval_keywords, artifact_ref, recorded"

// SaveMemoryEntries replaces the persisted archive of a session with the
// given entries. The in-memory store is authoritative, so the flush is a
// full replace rather than a diff.
func (c *Client) SaveMemoryEntries(ctx context.Context, session string, entries []models.MemoryEntry) error {
	records := make([]memoryEntryRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, memoryEntryRecord{
			Session:     session,
			Interaction: e.Interaction,
			Priority:    e.Priority,
			Keywords:    e.Keywords,
			ArtifactRef: e.ArtifactRef,
			Recorded:    e.Recorded,
		})
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		BEGIN;
		DELETE memory_entry WHERE session = $session;
		INSERT INTO memory_entry $records;
		COMMIT;
	`, map[string]any{
		"session": session,
		"records": records,
	})
	if err != nil {
		return fmt.Errorf("save memory entries: %w", wrapQueryError(err))
	}
	return nil
}

// LoadMemoryEntries returns the persisted archive of a session in
// chronological order. A session never seen before yields an empty slice.
func (c *Client) LoadMemoryEntries(ctx context.Context, session string) ([]models.MemoryEntry, error) {
	results, err := surrealdb.Query[[]memoryEntryRecord](ctx, c.db, fmt.Sprintf(`
		SELECT %s FROM memory_entry WHERE session = $session ORDER BY recorded ASC
	`, memoryEntryFields), map[string]any{"session": session})
	if err != nil {
		return nil, fmt.Errorf("load memory entries: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.MemoryEntry{}, nil
	}

	records := (*results)[0].Result
	entries := make([]models.MemoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, models.MemoryEntry{
			Interaction: r.Interaction,
			Priority:    r.Priority,
			Keywords:    r.Keywords,
			ArtifactRef: r.ArtifactRef,
			Recorded:    r.Recorded,
		})
	}
	return entries, nil
}

// SaveArtifact persists an artifact, replacing a prior record with the
// same id (the outcome changes when a pending artifact resolves).
func (c *Client) SaveArtifact(ctx context.Context, session string, artifact models.Artifact) error {
	record := artifactRecord{
		Session:             session,
		ArtifactID:          artifact.ID,
		Kind:                string(artifact.Kind),
		Payload:             artifact.Payload,
		Outcome:             string(artifact.Outcome),
		OriginInteractionID: artifact.OriginInteractionID,
		CreatedAt:           artifact.CreatedAt,
	}
	if artifact.Path != "" {
		record.Path = &artifact.Path
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		BEGIN;
		DELETE artifact WHERE session = $session AND artifact_id = $artifact_id;
		CREATE artifact CONTENT $record;
		COMMIT;
	`, map[string]any{
		"session":     session,
		"artifact_id": artifact.ID,
		"record":      record,
	})
	if err != nil {
		return fmt.Errorf("save artifact: %w", wrapQueryError(err))
	}
	return nil
}

// ListArtifacts returns every artifact of a session, oldest first.
func (c *Client) ListArtifacts(ctx context.Context, session string) ([]models.Artifact, error) {
	results, err := surrealdb.Query[[]artifactRecord](ctx, c.db, `
		SELECT session, artifact_id, kind, payload, path, outcome, origin_interaction_id, created_at
		FROM artifact WHERE session = $session ORDER BY created_at ASC
	`, map[string]any{"session": session})
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Artifact{}, nil
	}

	records := (*results)[0].Result
	artifacts := make([]models.Artifact, 0, len(records))
	for _, r := range records {
		a := models.Artifact{
			ID:                  r.ArtifactID,
			Kind:                models.ArtifactKind(r.Kind),
			Payload:             r.Payload,
			CreatedAt:           r.CreatedAt,
			Outcome:             models.ArtifactOutcome(r.Outcome),
			OriginInteractionID: r.OriginInteractionID,
		}
		if r.Path != nil {
			a.Path = *r.Path
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// SaveState upserts the single state snapshot of a session.
func (c *Client) SaveState(ctx context.Context, session string, state models.EmotionalState, tier models.ModelTier) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("state_snapshot", $session) CONTENT {
			session: $session,
			state: $state,
			tier: $tier,
			saved: time::now()
		}
	`, map[string]any{
		"session": session,
		"state":   state,
		"tier":    string(tier),
	})
	if err != nil {
		return fmt.Errorf("save state: %w", wrapQueryError(err))
	}
	return nil
}

// LoadState returns the persisted snapshot of a session, or ErrNotFound
// when the session was never saved.
func (c *Client) LoadState(ctx context.Context, session string) (*StateSnapshot, error) {
	results, err := surrealdb.Query[[]StateSnapshot](ctx, c.db, `
		SELECT session, state, tier, saved FROM type::record("state_snapshot", $session)
	`, map[string]any{"session": session})
	if err != nil {
		return nil, fmt.Errorf("load state: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("load state for session %q: %w", session, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// WipeSession deletes everything persisted for a session.
func (c *Client) WipeSession(ctx context.Context, session string) error {
	c.logger.Warn("wiping session data", "session", session)

	_, err := surrealdb.Query[any](ctx, c.db, `
		BEGIN;
		DELETE memory_entry WHERE session = $session;
		DELETE artifact WHERE session = $session;
		DELETE state_snapshot WHERE session = $session;
		COMMIT;
	`, map[string]any{"session": session})
	if err != nil {
		return fmt.Errorf("wipe session: %w", wrapQueryError(err))
	}
	return nil
}
