package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/vpetrenko/jobfit/internal/config"
	"github.com/vpetrenko/jobfit/internal/core/ports"
	"github.com/vpetrenko/jobfit/internal/core/usecase"
	"github.com/vpetrenko/jobfit/internal/infrastructure/extractor/document"
	"github.com/vpetrenko/jobfit/internal/infrastructure/llm/gemini"
	"github.com/vpetrenko/jobfit/internal/infrastructure/queue/nats"
	"github.com/vpetrenko/jobfit/internal/infrastructure/repository/postgres"
	"github.com/vpetrenko/jobfit/internal/infrastructure/resilience"
	"github.com/vpetrenko/jobfit/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue   *nats.Queue
	Storage ports.ObjectStorage

	ScoreUC *usecase.ScoreUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	profiles := postgres.NewProfileRepository(db)
	if err := profiles.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure profiles schema: %w", err)
	}
	scores := postgres.NewScoreRepository(db)
	if err := scores.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure scores schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSCleanupSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init cleanup queue: %w", err)
	}

	extractExecutor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: cfg.ExtractMaxAttempts,
		RetryBaseDelay:   time.Duration(cfg.ExtractRetryBaseMs) * time.Millisecond,
		RetryMaxDelay:    time.Duration(cfg.ExtractMaxAttempts*cfg.ExtractRetryBaseMs) * time.Millisecond,
	})
	extractor := document.New(storage, extractExecutor, cfg.ExtractMinChars)

	// Single attempt per stage: a failed stage fails the run, the breaker
	// only shields the upstream service from hopeless call storms.
	generationExecutor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: 1,
		BreakerEnabled:   true,
	})
	generator, err := gemini.New(ctx, gemini.Config{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		RequestTimeout: time.Duration(cfg.GeminiTimeoutSeconds) * time.Second,
		MaxRPS:         float64(cfg.GeminiMaxRPS),
		Resilience:     generationExecutor,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}

	scoreUC := usecase.NewScoreUseCase(profiles, scores, extractor, generator, queue, usecase.Options{
		HistoryPageSize:     cfg.HistoryPageSize,
		MaxPromptInputChars: cfg.PromptMaxInputChars,
	})

	return &App{
		Config:  cfg,
		Queue:   queue,
		Storage: storage,
		ScoreUC: scoreUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// WorkerApp is the cleanup worker's composition: storage and the queue only.
// The worker deletes storage objects and has no use for postgres or the
// generation client, so it must start without their credentials.
type WorkerApp struct {
	Config config.Config

	Queue   *nats.Queue
	Storage ports.ObjectStorage

	closeFn func()
}

func NewWorker(_ context.Context, cfg config.Config) (*WorkerApp, error) {
	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSCleanupSubject)
	if err != nil {
		return nil, fmt.Errorf("init cleanup queue: %w", err)
	}

	return &WorkerApp{
		Config:  cfg,
		Queue:   queue,
		Storage: storage,

		closeFn: func() {
			queue.Close()
		},
	}, nil
}

func (a *WorkerApp) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
