package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrProfileNotFound          = errors.New("profile not found")
	ErrMissingCandidateDocument = errors.New("no usable candidate document")

	ErrExtractionNotFound = errors.New("document not found")
	ErrExtractionInvalid  = errors.New("document is not a parseable format")
	ErrExtractionEmpty    = errors.New("document contains no readable text")

	ErrGenerationUnavailable = errors.New("generation service unavailable")
	ErrGenerationRateLimited = errors.New("generation service rate limited")
	ErrGenerationTimeout     = errors.New("generation service timeout")
	ErrGenerationUnknown     = errors.New("generation service failure")

	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// IsExtractionError reports whether err is any of the extraction kinds.
func IsExtractionError(err error) bool {
	return errors.Is(err, ErrExtractionNotFound) ||
		errors.Is(err, ErrExtractionInvalid) ||
		errors.Is(err, ErrExtractionEmpty)
}

// IsGenerationError reports whether err is any of the generation kinds.
func IsGenerationError(err error) bool {
	return errors.Is(err, ErrGenerationUnavailable) ||
		errors.Is(err, ErrGenerationRateLimited) ||
		errors.Is(err, ErrGenerationTimeout) ||
		errors.Is(err, ErrGenerationUnknown)
}
