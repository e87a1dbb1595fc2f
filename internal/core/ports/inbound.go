package ports

import (
	"context"

	"github.com/vpetrenko/jobfit/internal/core/domain"
)

// CandidateScorer is the inbound contract for running one scoring pipeline.
type CandidateScorer interface {
	Score(ctx context.Context, req domain.ScoreRequest) (*domain.ScoringResult, error)
}

// ScoreHistoryReader is the inbound read model for prior scoring results.
type ScoreHistoryReader interface {
	History(ctx context.Context, profileID string) ([]domain.ScoreSummary, error)
}
