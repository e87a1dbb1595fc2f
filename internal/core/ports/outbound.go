package ports

import (
	"context"
	"io"

	"github.com/vpetrenko/jobfit/internal/core/domain"
)

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// TextExtractor converts a stored document into normalized plain text.
type TextExtractor interface {
	Extract(ctx context.Context, ref domain.DocumentRef) (domain.ExtractedText, error)
}

// TextGenerator invokes the external generation service for one stage.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, cfg domain.StageConfig) (string, error)
}

// ProfileRepository reads stored user profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

// ScoreRepository persists scoring results and serves the history
// projection.
type ScoreRepository interface {
	Insert(ctx context.Context, result *domain.ScoringResult) error
	ListByProfile(ctx context.Context, profileID string, limit int) ([]domain.ScoreSummary, error)
}

// CleanupQueue schedules best-effort deletion of temporary storage objects.
type CleanupQueue interface {
	PublishCleanup(ctx context.Context, locator string) error
}
