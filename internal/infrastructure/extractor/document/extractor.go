package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/vpetrenko/jobfit/internal/core/domain"
	"github.com/vpetrenko/jobfit/internal/core/ports"
	"github.com/vpetrenko/jobfit/internal/infrastructure/resilience"
)

const DefaultMinChars = 10

var pdfMagic = []byte("%PDF")

// Extractor reads a stored document and produces normalized plain text.
// PDF content is decoded; UTF-8 content passes through as-is. Transient
// storage failures are retried through the resilience executor.
type Extractor struct {
	storage  ports.ObjectStorage
	executor *resilience.Executor
	minChars int
}

func New(storage ports.ObjectStorage, executor *resilience.Executor, minChars int) *Extractor {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return &Extractor{
		storage:  storage,
		executor: executor,
		minChars: minChars,
	}
}

func (e *Extractor) Extract(ctx context.Context, ref domain.DocumentRef) (domain.ExtractedText, error) {
	var out domain.ExtractedText

	operation := "extract." + string(ref.Kind)
	err := e.executor.Execute(ctx, operation, func(ctx context.Context) error {
		text, err := e.extractOnce(ctx, ref)
		if err != nil {
			return err
		}
		out = text
		return nil
	}, classifyExtractionError)
	if err != nil {
		return domain.ExtractedText{}, err
	}
	return out, nil
}

func (e *Extractor) extractOnce(ctx context.Context, ref domain.DocumentRef) (domain.ExtractedText, error) {
	reader, err := e.storage.Open(ctx, ref.Locator)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ExtractedText{}, domain.WrapError(domain.ErrExtractionNotFound, "open document", err)
		}
		return domain.ExtractedText{}, fmt.Errorf("open document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("read document: %w", err)
	}

	text, err := decode(raw, ref)
	if err != nil {
		return domain.ExtractedText{}, err
	}

	text = normalizeWhitespace(text)
	count := utf8.RuneCountInString(text)
	if count < e.minChars {
		return domain.ExtractedText{}, domain.WrapError(
			domain.ErrExtractionEmpty,
			"validate extracted text",
			fmt.Errorf("%d chars after normalization, need at least %d", count, e.minChars),
		)
	}

	return domain.ExtractedText{
		Source:    ref,
		Text:      text,
		CharCount: count,
	}, nil
}

func decode(raw []byte, ref domain.DocumentRef) (string, error) {
	if bytes.HasPrefix(raw, pdfMagic) {
		return decodePDF(raw, ref)
	}
	if !utf8.Valid(raw) {
		return "", domain.WrapError(
			domain.ErrExtractionInvalid,
			"decode document",
			fmt.Errorf("unsupported binary content: %s", ref.Locator),
		)
	}
	return string(raw), nil
}

func decodePDF(raw []byte, ref domain.DocumentRef) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtractionInvalid, "parse pdf", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", domain.WrapError(domain.ErrExtractionInvalid, "extract pdf text", err)
	}

	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", domain.WrapError(domain.ErrExtractionInvalid, "read pdf text", fmt.Errorf("%s: %w", ref.Locator, err))
	}
	return buf.String(), nil
}

// normalizeWhitespace collapses runs of spaces and tabs to single spaces and
// runs of blank lines to single newlines, trimming the result.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		collapsed := strings.Join(strings.Fields(line), " ")
		if collapsed == "" {
			continue
		}
		out = append(out, collapsed)
	}
	return strings.Join(out, "\n")
}

// classifyExtractionError: malformed or too-short content never heals on
// retry; everything else (storage IO, propagation lag) is worth retrying.
func classifyExtractionError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if domain.IsKind(err, domain.ErrExtractionInvalid) || domain.IsKind(err, domain.ErrExtractionEmpty) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}
