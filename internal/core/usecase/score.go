package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vpetrenko/jobfit/internal/core/domain"
	"github.com/vpetrenko/jobfit/internal/core/ports"
)

const (
	defaultHistoryPageSize = 10

	summaryTemperature = 0.7
	scoringTemperature = 0.2
	summaryMaxTokens   = 1024
	scoringMaxTokens   = 2048

	// Breakdown totals further than this from the clamped score get flagged
	// in the log. They are still persisted as returned.
	breakdownMismatchTolerance = 15
)

type Options struct {
	HistoryPageSize     int
	MaxPromptInputChars int
}

// ScoreUseCase runs the end-to-end scoring pipeline: resolve documents,
// extract text, drive the three sequential analysis stages, parse the model
// output and persist exactly one record per successful run.
type ScoreUseCase struct {
	profiles  ports.ProfileRepository
	scores    ports.ScoreRepository
	extractor ports.TextExtractor
	generator ports.TextGenerator
	cleanup   ports.CleanupQueue
	opts      Options
}

func NewScoreUseCase(
	profiles ports.ProfileRepository,
	scores ports.ScoreRepository,
	extractor ports.TextExtractor,
	generator ports.TextGenerator,
	cleanup ports.CleanupQueue,
	opts Options,
) *ScoreUseCase {
	if opts.HistoryPageSize <= 0 {
		opts.HistoryPageSize = defaultHistoryPageSize
	}
	if opts.MaxPromptInputChars <= 0 {
		opts.MaxPromptInputChars = defaultMaxPromptInputChars
	}
	return &ScoreUseCase{
		profiles:  profiles,
		scores:    scores,
		extractor: extractor,
		generator: generator,
		cleanup:   cleanup,
		opts:      opts,
	}
}

func (uc *ScoreUseCase) Score(ctx context.Context, req domain.ScoreRequest) (*domain.ScoringResult, error) {
	started := time.Now()
	state := domain.StateResolving

	result, err := uc.run(ctx, req, started, &state)

	// Temporary uploads are disposable regardless of the run outcome.
	uc.scheduleTemporaryCleanup(ctx, req)

	if err != nil {
		slog.Error("scoring_run_failed",
			"profile_id", req.ProfileID,
			"state", string(state),
			"duration_ms", time.Since(started).Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	slog.Info("scoring_run_done",
		"profile_id", result.ProfileID,
		"score", result.Score,
		"document_source", string(result.DocumentSource),
		"duration_ms", result.ProcessingTimeMs,
	)
	return result, nil
}

// run walks the state machine. Transitions are one-directional; any error is
// terminal for the run and nothing is persisted on the failure path.
func (uc *ScoreUseCase) run(
	ctx context.Context,
	req domain.ScoreRequest,
	started time.Time,
	state *domain.RunState,
) (*domain.ScoringResult, error) {
	if err := validateRequest(req); err != nil {
		*state = domain.StateFailed
		return nil, err
	}

	profile, err := uc.profiles.GetByID(ctx, req.ProfileID)
	if err != nil {
		*state = domain.StateFailed
		return nil, fmt.Errorf("load profile: %w", err)
	}

	*state = domain.StateExtractingJD
	jd, err := uc.extractor.Extract(ctx, req.JobDescription)
	if err != nil {
		*state = domain.StateFailed
		return nil, fmt.Errorf("extract job description: %w", err)
	}

	*state = domain.StateExtractingCandidate
	candidate, err := uc.resolveCandidate(ctx, req, profile)
	if err != nil {
		*state = domain.StateFailed
		return nil, err
	}

	*state = domain.StateSummarizingJD
	jdSummary, err := uc.generator.Generate(ctx,
		buildJDSummaryPrompt(jd.Text, uc.opts.MaxPromptInputChars),
		domain.StageConfig{
			Stage:           domain.StageJDSummary,
			Temperature:     summaryTemperature,
			MaxOutputTokens: summaryMaxTokens,
		})
	if err != nil {
		*state = domain.StateFailed
		return nil, fmt.Errorf("summarize job description: %w", err)
	}

	*state = domain.StateSummarizingProfile
	profileSummary, err := uc.generator.Generate(ctx,
		buildProfileSummaryPrompt(candidate.text.Text, candidate.text.Source.Kind, uc.opts.MaxPromptInputChars),
		domain.StageConfig{
			Stage:           domain.StageProfileSummary,
			Temperature:     summaryTemperature,
			MaxOutputTokens: summaryMaxTokens,
		})
	if err != nil {
		*state = domain.StateFailed
		return nil, fmt.Errorf("summarize candidate profile: %w", err)
	}

	*state = domain.StateScoring
	rawScoring, err := uc.generator.Generate(ctx,
		buildScoringPrompt(jdSummary, profileSummary, uc.opts.MaxPromptInputChars),
		domain.StageConfig{
			Stage:           domain.StageScoring,
			Temperature:     scoringTemperature,
			MaxOutputTokens: scoringMaxTokens,
		})
	if err != nil {
		*state = domain.StateFailed
		return nil, fmt.Errorf("score candidate: %w", err)
	}

	*state = domain.StateParsing
	outcome, parsed := parseScoringResponse(rawScoring)
	if !parsed {
		slog.Warn("scoring_response_fallback",
			"profile_id", req.ProfileID,
			"raw_len", len(rawScoring),
		)
	} else if diff := outcome.Breakdown.Sum() - outcome.Score; diff > breakdownMismatchTolerance || diff < -breakdownMismatchTolerance {
		slog.Warn("breakdown_score_mismatch",
			"profile_id", req.ProfileID,
			"score", outcome.Score,
			"breakdown_sum", outcome.Breakdown.Sum(),
		)
	}

	*state = domain.StatePersisting
	result := &domain.ScoringResult{
		ID:               uuid.NewString(),
		ProfileID:        req.ProfileID,
		Score:            outcome.Score,
		Breakdown:        outcome.Breakdown,
		Reasoning:        outcome.Reasoning,
		Gaps:             outcome.Gaps,
		Suggestions:      outcome.Suggestions,
		DocumentSource:   candidate.source,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		CreatedAt:        time.Now().UTC(),
	}
	if err := uc.scores.Insert(ctx, result); err != nil {
		*state = domain.StateFailed
		return nil, fmt.Errorf("persist scoring result: %w", err)
	}

	*state = domain.StateDone
	return result, nil
}

func (uc *ScoreUseCase) History(ctx context.Context, profileID string) ([]domain.ScoreSummary, error) {
	if strings.TrimSpace(profileID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "score history", errors.New("profile id is required"))
	}
	if _, err := uc.profiles.GetByID(ctx, profileID); err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	results, err := uc.scores.ListByProfile(ctx, profileID, uc.opts.HistoryPageSize)
	if err != nil {
		return nil, fmt.Errorf("list scoring results: %w", err)
	}
	return results, nil
}

// scheduleTemporaryCleanup submits deletion jobs for the request's temporary
// uploads. Publish failures are logged and never propagated; a cleanup that
// has already started is not cancelled when the request is.
func (uc *ScoreUseCase) scheduleTemporaryCleanup(ctx context.Context, req domain.ScoreRequest) {
	if uc.cleanup == nil {
		return
	}
	for _, ref := range temporaryRefs(req) {
		if err := uc.cleanup.PublishCleanup(context.WithoutCancel(ctx), ref.Locator); err != nil {
			slog.Warn("temporary_cleanup_publish_failed",
				"profile_id", req.ProfileID,
				"locator", ref.Locator,
				"error", err,
			)
		}
	}
}

func validateRequest(req domain.ScoreRequest) error {
	if strings.TrimSpace(req.ProfileID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate score request", errors.New("profile id is required"))
	}
	if req.JobDescription.Locator == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate score request", errors.New("job description document is required"))
	}
	return nil
}
