package httpadapter

import (
	"net/http"

	"github.com/vpetrenko/jobfit/internal/core/domain"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrMissingCandidateDocument):
		return http.StatusBadRequest
	case domain.IsExtractionError(err):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrProfileNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorKind(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	case domain.IsKind(err, domain.ErrMissingCandidateDocument):
		return "missing_candidate_document"
	case domain.IsKind(err, domain.ErrExtractionNotFound):
		return "document_not_found"
	case domain.IsKind(err, domain.ErrExtractionInvalid):
		return "document_invalid"
	case domain.IsKind(err, domain.ErrExtractionEmpty):
		return "document_empty"
	case domain.IsKind(err, domain.ErrProfileNotFound):
		return "profile_not_found"
	case domain.IsKind(err, domain.ErrGenerationRateLimited):
		return "generation_rate_limited"
	case domain.IsKind(err, domain.ErrGenerationTimeout):
		return "generation_timeout"
	case domain.IsKind(err, domain.ErrGenerationUnavailable):
		return "generation_unavailable"
	case domain.IsGenerationError(err):
		return "generation_failed"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporary"
	default:
		return "internal"
	}
}

func writeMappedError(w http.ResponseWriter, err error) {
	writeError(w, mapErrorToHTTPStatus(err), errorKind(err), err.Error())
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Kind:    kind,
		Message: message,
	}})
}
