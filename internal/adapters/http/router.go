package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vpetrenko/jobfit/internal/core/domain"
	"github.com/vpetrenko/jobfit/internal/core/ports"
	"github.com/vpetrenko/jobfit/internal/observability/metrics"
)

const (
	serviceName = "api"

	// Upload size cap for one multipart request. Resumes and job postings are
	// small; anything larger is rejected before it reaches storage.
	maxUploadBytes = 20 << 20
)

type Router struct {
	scorer  ports.CandidateScorer
	history ports.ScoreHistoryReader
	storage ports.ObjectStorage
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	scorer ports.CandidateScorer,
	history ports.ScoreHistoryReader,
	storage ports.ObjectStorage,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		scorer:  scorer,
		history: history,
		storage: storage,
		metrics: m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/score", rt.scoreCandidate)
	mux.HandleFunc("/v1/score/history/", rt.scoreHistory)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		return requestIDMiddleware(accessLogMiddleware(rt.metrics.Middleware(serviceName, mux)))
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scoreResponse struct {
	Score            int                   `json:"score"`
	Breakdown        domain.ScoreBreakdown `json:"breakdown"`
	Reasoning        string                `json:"reasoning"`
	Gaps             []string              `json:"gaps"`
	Suggestions      []string              `json:"suggestions"`
	DocumentSource   domain.DocumentSource `json:"document_source"`
	AnalysisDate     time.Time             `json:"analysis_date"`
	ProcessingTimeMs int64                 `json:"processing_time_ms"`
}

func (rt *Router) scoreCandidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_input", "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "request must be multipart/form-data")
		return
	}

	profileID := strings.TrimSpace(r.FormValue("profile_id"))
	if profileID == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "multipart field 'profile_id' is required")
		return
	}

	// Uploads saved before a later part fails are already in storage; the
	// request never reaches the scorer, so they are deleted here instead of
	// through the cleanup queue.
	var saved []string
	discardSaved := func() {
		for _, key := range saved {
			if err := rt.storage.Delete(r.Context(), key); err != nil {
				slog.Warn("rejected_upload_cleanup_failed", "locator", key, "error", err)
			}
		}
	}

	jdRef, err := rt.saveUpload(r, "job_description", domain.KindJobDescription)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	if jdRef == nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "multipart file 'job_description' is required")
		return
	}
	saved = append(saved, jdRef.Locator)

	resumeRef, err := rt.saveUpload(r, "resume", domain.KindResume)
	if err != nil {
		discardSaved()
		writeMappedError(w, err)
		return
	}
	if resumeRef != nil {
		saved = append(saved, resumeRef.Locator)
	}
	networkRef, err := rt.saveUpload(r, "network_profile", domain.KindNetworkProfile)
	if err != nil {
		discardSaved()
		writeMappedError(w, err)
		return
	}

	started := time.Now()
	result, err := rt.scorer.Score(r.Context(), domain.ScoreRequest{
		ProfileID:               profileID,
		JobDescription:          *jdRef,
		TemporaryResume:         resumeRef,
		TemporaryNetworkProfile: networkRef,
	})
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordScoreRun(serviceName, "error", "", time.Since(started))
		}
		writeMappedError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordScoreRun(serviceName, "success", string(result.DocumentSource), time.Since(started))
		rt.metrics.RecordScoreValue(serviceName, result.Score)
	}

	writeJSON(w, http.StatusCreated, scoreResponse{
		Score:            result.Score,
		Breakdown:        result.Breakdown,
		Reasoning:        result.Reasoning,
		Gaps:             result.Gaps,
		Suggestions:      result.Suggestions,
		DocumentSource:   result.DocumentSource,
		AnalysisDate:     result.CreatedAt,
		ProcessingTimeMs: result.ProcessingTimeMs,
	})
}

func (rt *Router) scoreHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "invalid_input", "method not allowed")
		return
	}

	profileID := strings.TrimPrefix(r.URL.Path, "/v1/score/history/")
	if profileID == "" || strings.Contains(profileID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_input", "profile id is required")
		return
	}

	results, err := rt.history.History(r.Context(), profileID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile_id": profileID,
		"results":    results,
	})
}

// saveUpload stores one multipart file as a temporary document and returns
// its ref. A missing optional field returns (nil, nil).
func (rt *Router) saveUpload(r *http.Request, field string, kind domain.DocumentKind) (*domain.DocumentRef, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", fmt.Errorf("multipart file %q: %w", field, err))
	}
	defer file.Close()

	if header.Size == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", fmt.Errorf("multipart file %q is empty", field))
	}

	key := temporaryKey(header)
	if err := rt.storage.Save(r.Context(), key, file); err != nil {
		return nil, fmt.Errorf("store upload %q: %w", field, err)
	}

	return &domain.DocumentRef{
		Kind:    kind,
		Locator: key,
		Origin:  domain.OriginTemporary,
	}, nil
}

func temporaryKey(header *multipart.FileHeader) string {
	name := sanitizeFilename(filepath.Base(header.Filename))
	if name == "" {
		name = "upload"
	}
	return uuid.NewString() + "_" + name
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
