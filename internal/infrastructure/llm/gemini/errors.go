package gemini

import (
	"context"
	"errors"
	"net"
	"net/http"

	"google.golang.org/genai"

	"github.com/vpetrenko/jobfit/internal/core/domain"
	"github.com/vpetrenko/jobfit/internal/infrastructure/resilience"
)

// classifyBreakerFailure feeds the circuit breaker. Only service-health
// failures trip it; malformed requests and cancelled contexts do not.
func classifyBreakerFailure(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	record := domain.IsKind(err, domain.ErrGenerationUnavailable) ||
		domain.IsKind(err, domain.ErrGenerationTimeout) ||
		domain.IsKind(err, domain.ErrGenerationRateLimited)
	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: record,
	}
}

// classifyGenerationError maps transport and API failures onto the domain's
// generation error kinds. A generation failure is fatal to the run: later
// stages depend on earlier output, so there is no cross-stage retry.
func classifyGenerationError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrGenerationTimeout, operation, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return domain.WrapError(domain.ErrGenerationRateLimited, operation, err)
		case apiErr.Code >= 500:
			return domain.WrapError(domain.ErrGenerationUnavailable, operation, err)
		default:
			return domain.WrapError(domain.ErrGenerationUnknown, operation, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.WrapError(domain.ErrGenerationTimeout, operation, err)
		}
		return domain.WrapError(domain.ErrGenerationUnavailable, operation, err)
	}

	return domain.WrapError(domain.ErrGenerationUnknown, operation, err)
}
