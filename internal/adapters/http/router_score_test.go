package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vpetrenko/jobfit/internal/core/domain"
)

type scorerFake struct {
	result *domain.ScoringResult
	err    error

	gotRequest domain.ScoreRequest
}

func (f *scorerFake) Score(_ context.Context, req domain.ScoreRequest) (*domain.ScoringResult, error) {
	f.gotRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type historyFake struct {
	results []domain.ScoreSummary
	err     error
}

func (f historyFake) History(_ context.Context, _ string) ([]domain.ScoreSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type memoryStorage struct {
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (s *memoryStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.objects[key] = raw
	return nil
}

func (s *memoryStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := s.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *memoryStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func sampleResult() *domain.ScoringResult {
	return &domain.ScoringResult{
		ID:        "run-1",
		ProfileID: "p-1",
		Score:     72,
		Breakdown: domain.ScoreBreakdown{
			TechnicalSkills: 24,
			Experience:      18,
			Education:       10,
			DomainFit:       10,
			SoftSkills:      5,
			GrowthPotential: 5,
		},
		Reasoning:        "solid backend experience",
		Gaps:             []string{"no cloud certifications"},
		Suggestions:      []string{"a", "b", "c", "d", "e"},
		DocumentSource:   domain.SourceTemporaryResume,
		ProcessingTimeMs: 5200,
		CreatedAt:        time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func multipartScoreRequest(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("WriteField(%q) error = %v", name, err)
		}
	}
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".txt")
		if err != nil {
			t.Fatalf("CreateFormFile(%q) error = %v", field, err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/score", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestScoreEndpointSuccess(t *testing.T) {
	scorer := &scorerFake{result: sampleResult()}
	storage := newMemoryStorage()
	handler := NewRouter(scorer, historyFake{}, storage, nil).Handler()

	req := multipartScoreRequest(t,
		map[string]string{"profile_id": "p-1"},
		map[string]string{
			"job_description": "senior go engineer wanted",
			"resume":          "go engineer with 7 years",
		})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["score"] != float64(72) {
		t.Fatalf("unexpected score in response: %+v", resp)
	}
	if resp["document_source"] != "temporary-resume" {
		t.Fatalf("unexpected document source: %+v", resp)
	}

	got := scorer.gotRequest
	if got.ProfileID != "p-1" {
		t.Fatalf("profile id = %q, want p-1", got.ProfileID)
	}
	if got.JobDescription.Origin != domain.OriginTemporary {
		t.Fatalf("job description origin = %q, want temporary", got.JobDescription.Origin)
	}
	if got.TemporaryResume == nil || got.TemporaryResume.Kind != domain.KindResume {
		t.Fatalf("temporary resume ref missing or wrong kind: %+v", got.TemporaryResume)
	}
	if got.TemporaryNetworkProfile != nil {
		t.Fatalf("unexpected network profile ref: %+v", got.TemporaryNetworkProfile)
	}
	if len(storage.objects) != 2 {
		t.Fatalf("expected 2 stored uploads, got %d", len(storage.objects))
	}
}

func TestScoreEndpointRequiresJobDescription(t *testing.T) {
	handler := NewRouter(&scorerFake{}, historyFake{}, newMemoryStorage(), nil).Handler()

	req := multipartScoreRequest(t, map[string]string{"profile_id": "p-1"}, nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}

	var envelope struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Kind != "invalid_input" {
		t.Fatalf("error kind = %q, want invalid_input", envelope.Error.Kind)
	}
}

func TestScoreEndpointDiscardsUploadsWhenLaterPartInvalid(t *testing.T) {
	scorer := &scorerFake{}
	storage := newMemoryStorage()
	handler := NewRouter(scorer, historyFake{}, storage, nil).Handler()

	// Valid job description followed by a zero-byte resume part.
	req := multipartScoreRequest(t,
		map[string]string{"profile_id": "p-1"},
		map[string]string{
			"job_description": "senior go engineer wanted",
			"resume":          "",
		})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.Code, res.Body.String())
	}
	if scorer.gotRequest.ProfileID != "" {
		t.Fatalf("scorer must not run on a rejected request")
	}
	if len(storage.objects) != 0 {
		t.Fatalf("expected no stored uploads after rejection, got %d", len(storage.objects))
	}
}

func TestScoreEndpointRequiresProfileID(t *testing.T) {
	handler := NewRouter(&scorerFake{}, historyFake{}, newMemoryStorage(), nil).Handler()

	req := multipartScoreRequest(t, nil, map[string]string{"job_description": "text"})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestScoreEndpointMapsProfileNotFound(t *testing.T) {
	scorer := &scorerFake{err: domain.WrapError(domain.ErrProfileNotFound, "profiles.get", errors.New("no rows"))}
	handler := NewRouter(scorer, historyFake{}, newMemoryStorage(), nil).Handler()

	req := multipartScoreRequest(t,
		map[string]string{"profile_id": "ghost"},
		map[string]string{"job_description": "text"})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "profile_not_found") {
		t.Fatalf("expected profile_not_found kind, got %s", res.Body.String())
	}
}

func TestScoreEndpointMapsMissingCandidateDocument(t *testing.T) {
	scorer := &scorerFake{err: domain.WrapError(domain.ErrMissingCandidateDocument, "resolve candidate", errors.New("no tiers left"))}
	handler := NewRouter(scorer, historyFake{}, newMemoryStorage(), nil).Handler()

	req := multipartScoreRequest(t,
		map[string]string{"profile_id": "p-1"},
		map[string]string{"job_description": "text"})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "missing_candidate_document") {
		t.Fatalf("expected missing_candidate_document kind, got %s", res.Body.String())
	}
}

func TestScoreEndpointMapsGenerationFailureTo500(t *testing.T) {
	scorer := &scorerFake{err: domain.WrapError(domain.ErrGenerationUnavailable, "scoring", errors.New("503 from upstream"))}
	handler := NewRouter(scorer, historyFake{}, newMemoryStorage(), nil).Handler()

	req := multipartScoreRequest(t,
		map[string]string{"profile_id": "p-1"},
		map[string]string{"job_description": "text"})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "generation_unavailable") {
		t.Fatalf("expected generation_unavailable kind, got %s", res.Body.String())
	}
}

func TestHistoryEndpointReturnsSummaries(t *testing.T) {
	summary := domain.ScoreSummary{
		ID:             "run-1",
		Score:          72,
		Reasoning:      "solid backend experience",
		Suggestions:    []string{"a", "b", "c", "d", "e"},
		DocumentSource: domain.SourceTemporaryResume,
		AnalysisDate:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
	handler := NewRouter(&scorerFake{}, historyFake{results: []domain.ScoreSummary{summary}}, newMemoryStorage(), nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/score/history/p-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	body := res.Body.String()
	var resp struct {
		ProfileID string                `json:"profile_id"`
		Results   []domain.ScoreSummary `json:"results"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ProfileID != "p-1" {
		t.Fatalf("profile id = %q, want p-1", resp.ProfileID)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "run-1" {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
	// The projection must not carry the full breakdown.
	if strings.Contains(body, "breakdown") {
		t.Fatalf("history response leaked breakdown fields")
	}
}

func TestHistoryEndpointRejectsEmptyProfileID(t *testing.T) {
	handler := NewRouter(&scorerFake{}, historyFake{}, newMemoryStorage(), nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/score/history/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	handler := NewRouter(&scorerFake{}, historyFake{}, newMemoryStorage(), nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}
