package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/vpetrenko/jobfit/internal/core/domain"
)

func TestClassifyRateLimited(t *testing.T) {
	err := classifyGenerationError("scoring", genai.APIError{Code: 429, Message: "quota"})
	if !domain.IsKind(err, domain.ErrGenerationRateLimited) {
		t.Fatalf("expected rate-limited kind, got %v", err)
	}
}

func TestClassifyServerErrorAsUnavailable(t *testing.T) {
	err := classifyGenerationError("scoring", genai.APIError{Code: 503, Message: "overloaded"})
	if !domain.IsKind(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("expected unavailable kind, got %v", err)
	}
}

func TestClassifyClientErrorAsUnknown(t *testing.T) {
	err := classifyGenerationError("scoring", genai.APIError{Code: 400, Message: "bad request"})
	if !domain.IsKind(err, domain.ErrGenerationUnknown) {
		t.Fatalf("expected unknown kind, got %v", err)
	}
}

func TestClassifyDeadlineAsTimeout(t *testing.T) {
	err := classifyGenerationError("scoring", context.DeadlineExceeded)
	if !domain.IsKind(err, domain.ErrGenerationTimeout) {
		t.Fatalf("expected timeout kind, got %v", err)
	}
}

func TestClassifyCancellationPassesThrough(t *testing.T) {
	err := classifyGenerationError("scoring", context.Canceled)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if domain.IsGenerationError(err) {
		t.Fatalf("cancellation must not be reported as a generation failure")
	}
}
