package models

import "time"

// ArtifactKind is the type of creative artifact to produce.
type ArtifactKind string

const (
	KindCode        ArtifactKind = "code"
	KindIdea        ArtifactKind = "idea"
	KindPlan        ArtifactKind = "plan"
	KindImagePrompt ArtifactKind = "image_prompt"
	// KindAuto defers the choice to the controller's priority rule.
	KindAuto ArtifactKind = "auto"
)

// ArtifactOutcome records how a creative attempt resolved.
type ArtifactOutcome string

const (
	OutcomePending ArtifactOutcome = "pending"
	OutcomeSuccess ArtifactOutcome = "success"
	OutcomeFailure ArtifactOutcome = "failure"
)

// Artifact is a creative-mode product. Immutable once finalized; failed
// artifacts are retained so the same unproductive path is not retried.
type Artifact struct {
	ID                  string          `json:"id"`
	Kind                ArtifactKind    `json:"kind"`
	Payload             string          `json:"payload"`
	Path                string          `json:"path,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	Outcome             ArtifactOutcome `json:"outcome"`
	OriginInteractionID string          `json:"origin_interaction_id"`
}
