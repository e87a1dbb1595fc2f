package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/vpetrenko/jobfit/internal/core/domain"
	"github.com/vpetrenko/jobfit/internal/infrastructure/resilience"
)

type storageFake struct {
	objects  map[string][]byte
	failures int
	opens    int
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.opens++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("storage io failure")
	}
	raw, ok := f.objects[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func newTestExtractor(storage *storageFake) *Extractor {
	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: 3,
		RetryBaseDelay:   time.Millisecond,
		RetryMaxDelay:    2 * time.Millisecond,
		BreakerEnabled:   false,
	})
	return New(storage, exec, 10)
}

func ref(locator string) domain.DocumentRef {
	return domain.DocumentRef{
		Kind:    domain.KindResume,
		Locator: locator,
		Origin:  domain.OriginTemporary,
	}
}

func TestExtractPlainTextNormalizesWhitespace(t *testing.T) {
	storage := &storageFake{objects: map[string][]byte{
		"doc-1": []byte("  Senior   Go\tEngineer \n\n\n 7 years of   experience  \n"),
	}}
	extractor := newTestExtractor(storage)

	out, err := extractor.Extract(context.Background(), ref("doc-1"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "Senior Go Engineer\n7 years of experience"
	if out.Text != want {
		t.Fatalf("normalized text = %q, want %q", out.Text, want)
	}
	if out.CharCount != len(want) {
		t.Fatalf("char count = %d, want %d", out.CharCount, len(want))
	}
}

func TestExtractRejectsBelowMinimumThreshold(t *testing.T) {
	storage := &storageFake{objects: map[string][]byte{
		"doc-1": []byte("   too short   "),
	}}
	extractor := newTestExtractor(storage)

	_, err := extractor.Extract(context.Background(), ref("doc-1"))
	if !domain.IsKind(err, domain.ErrExtractionEmpty) {
		t.Fatalf("expected empty-content error, got %v", err)
	}
	if storage.opens != 1 {
		t.Fatalf("short content must not be retried, opens = %d", storage.opens)
	}
}

func TestExtractRejectsBinaryContent(t *testing.T) {
	storage := &storageFake{objects: map[string][]byte{
		"doc-1": {0xff, 0xfe, 0x00, 0x01, 0x02},
	}}
	extractor := newTestExtractor(storage)

	_, err := extractor.Extract(context.Background(), ref("doc-1"))
	if !domain.IsKind(err, domain.ErrExtractionInvalid) {
		t.Fatalf("expected invalid-format error, got %v", err)
	}
}

func TestExtractMissingObject(t *testing.T) {
	storage := &storageFake{objects: map[string][]byte{}}
	extractor := newTestExtractor(storage)

	_, err := extractor.Extract(context.Background(), ref("nope"))
	if !domain.IsKind(err, domain.ErrExtractionNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestExtractRetriesTransientStorageFailure(t *testing.T) {
	storage := &storageFake{
		objects:  map[string][]byte{"doc-1": []byte("a perfectly valid resume text")},
		failures: 2,
	}
	extractor := newTestExtractor(storage)

	out, err := extractor.Extract(context.Background(), ref("doc-1"))
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if storage.opens != 3 {
		t.Fatalf("expected 3 open attempts, got %d", storage.opens)
	}
	if out.CharCount == 0 {
		t.Fatalf("expected non-empty extraction")
	}
}

func TestExtractSurfacesAttemptCountWhenExhausted(t *testing.T) {
	storage := &storageFake{
		objects:  map[string][]byte{"doc-1": []byte("a perfectly valid resume text")},
		failures: 10,
	}
	extractor := newTestExtractor(storage)

	_, err := extractor.Extract(context.Background(), ref("doc-1"))
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("expected attempt count in error, got %q", err.Error())
	}
}
