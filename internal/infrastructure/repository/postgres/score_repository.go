package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vpetrenko/jobfit/internal/core/domain"
)

type ScoreRepository struct {
	db *sql.DB
}

func NewScoreRepository(db *sql.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS score_analyses (
	id TEXT PRIMARY KEY,
	profile_id TEXT NOT NULL,
	score INTEGER NOT NULL,
	breakdown JSONB NOT NULL,
	reasoning TEXT NOT NULL DEFAULT '',
	gaps JSONB NOT NULL DEFAULT '[]'::jsonb,
	suggestions JSONB NOT NULL DEFAULT '[]'::jsonb,
	document_source TEXT NOT NULL,
	processing_time_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_score_analyses_profile_created
	ON score_analyses(profile_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ScoreRepository) Insert(ctx context.Context, result *domain.ScoringResult) error {
	breakdownJSON, err := json.Marshal(result.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	gapsJSON, err := json.Marshal(result.Gaps)
	if err != nil {
		return fmt.Errorf("marshal gaps: %w", err)
	}
	suggestionsJSON, err := json.Marshal(result.Suggestions)
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO score_analyses (
	id, profile_id, score, breakdown, reasoning, gaps, suggestions, document_source, processing_time_ms, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		result.ID, result.ProfileID, result.Score, breakdownJSON, result.Reasoning,
		gapsJSON, suggestionsJSON, string(result.DocumentSource), result.ProcessingTimeMs, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert score analysis: %w", err)
	}
	return nil
}

// ListByProfile serves the history projection: score, reasoning and
// suggestions only, newest first. The full breakdown stays in the table for
// the run that produced it.
func (r *ScoreRepository) ListByProfile(ctx context.Context, profileID string, limit int) ([]domain.ScoreSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, score, reasoning, suggestions, document_source, created_at
FROM score_analyses
WHERE profile_id = $1
ORDER BY created_at DESC
LIMIT $2
`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("query score analyses: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.ScoreSummary, 0, limit)
	for rows.Next() {
		var summary domain.ScoreSummary
		var suggestionsRaw []byte
		var source string

		err := rows.Scan(
			&summary.ID, &summary.Score, &summary.Reasoning,
			&suggestionsRaw, &source, &summary.AnalysisDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan score analysis: %w", err)
		}
		if err := json.Unmarshal(suggestionsRaw, &summary.Suggestions); err != nil {
			return nil, fmt.Errorf("unmarshal suggestions: %w", err)
		}
		summary.DocumentSource = domain.DocumentSource(source)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score analyses: %w", err)
	}
	return summaries, nil
}
