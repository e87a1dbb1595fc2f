package config

import "testing"

func TestLoadIncludesScoringDefaults(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "")
	t.Setenv("EXTRACT_MAX_ATTEMPTS", "")
	t.Setenv("EXTRACT_MIN_CHARS", "")
	t.Setenv("PROMPT_MAX_INPUT_CHARS", "")
	t.Setenv("HISTORY_PAGE_SIZE", "")

	cfg := Load()
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("expected default gemini model, got %q", cfg.GeminiModel)
	}
	if cfg.GeminiTimeoutSeconds != 60 {
		t.Fatalf("expected default gemini timeout 60, got %d", cfg.GeminiTimeoutSeconds)
	}
	if cfg.ExtractMaxAttempts != 3 {
		t.Fatalf("expected default extract attempts 3, got %d", cfg.ExtractMaxAttempts)
	}
	if cfg.ExtractMinChars != 10 {
		t.Fatalf("expected default extract min chars 10, got %d", cfg.ExtractMinChars)
	}
	if cfg.PromptMaxInputChars != 6000 {
		t.Fatalf("expected default prompt cap 6000, got %d", cfg.PromptMaxInputChars)
	}
	if cfg.HistoryPageSize != 10 {
		t.Fatalf("expected default history page size 10, got %d", cfg.HistoryPageSize)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("GEMINI_MAX_RPS", "5")
	t.Setenv("EXTRACT_RETRY_BASE_MS", "250")
	t.Setenv("HISTORY_PAGE_SIZE", "25")

	cfg := Load()
	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Fatalf("expected model override, got %q", cfg.GeminiModel)
	}
	if cfg.GeminiMaxRPS != 5 {
		t.Fatalf("expected max rps 5, got %d", cfg.GeminiMaxRPS)
	}
	if cfg.ExtractRetryBaseMs != 250 {
		t.Fatalf("expected retry base 250, got %d", cfg.ExtractRetryBaseMs)
	}
	if cfg.HistoryPageSize != 25 {
		t.Fatalf("expected history page size 25, got %d", cfg.HistoryPageSize)
	}
}

func TestLoadFallsBackOnBadInt(t *testing.T) {
	t.Setenv("EXTRACT_MAX_ATTEMPTS", "not-a-number")

	cfg := Load()
	if cfg.ExtractMaxAttempts != 3 {
		t.Fatalf("expected fallback 3 on unparsable int, got %d", cfg.ExtractMaxAttempts)
	}
}
