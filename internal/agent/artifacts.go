package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anima-ai/anima/internal/models"
)

// FileArtifactWriter externalizes artifact payloads to a directory on
// disk, one file per artifact.
type FileArtifactWriter struct {
	dir string
}

// NewFileArtifactWriter creates the artifacts directory if needed.
func NewFileArtifactWriter(dir string) (*FileArtifactWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	return &FileArtifactWriter{dir: dir}, nil
}

// WriteArtifact stores the payload and returns the file path.
func (w *FileArtifactWriter) WriteArtifact(_ context.Context, artifact *models.Artifact) (string, error) {
	path := filepath.Join(w.dir, artifact.ID+extensionFor(artifact.Kind))
	if err := os.WriteFile(path, []byte(artifact.Payload), 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", artifact.ID, err)
	}
	return path, nil
}

func extensionFor(kind models.ArtifactKind) string {
	switch kind {
	case models.KindCode:
		return ".go"
	case models.KindImagePrompt:
		return ".prompt.txt"
	default:
		return ".md"
	}
}
