package usecase

import (
	"encoding/json"
	"strings"

	"github.com/vpetrenko/jobfit/internal/core/domain"
)

// ScoreOutcome is the validated payload of the scoring stage, before it is
// assembled into a persistable record.
type ScoreOutcome struct {
	Score       int
	Breakdown   domain.ScoreBreakdown
	Reasoning   string
	Gaps        []string
	Suggestions []string
}

const (
	suggestionCount   = 5
	fillerSuggestion  = "Continue improving your profile to match the job requirements"
	fallbackReasoning = "Unable to complete detailed analysis due to a response parsing error"
)

// parseScoringResponse is total: it always returns a schema-valid outcome.
// The second return value reports whether the model output was actually
// parsed (false means the fixed fallback was substituted). A malformed model
// response must never fail an otherwise-successful run.
func parseScoringResponse(raw string) (ScoreOutcome, bool) {
	cleaned := stripCodeFences(strings.TrimSpace(raw))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return fallbackOutcome(), false
	}

	var payload struct {
		Score       *float64           `json:"score"`
		Breakdown   map[string]float64 `json:"breakdown"`
		Reasoning   string             `json:"reasoning"`
		Gaps        []string           `json:"gaps"`
		Suggestions []string           `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &payload); err != nil {
		return fallbackOutcome(), false
	}
	if payload.Score == nil {
		return fallbackOutcome(), false
	}

	outcome := ScoreOutcome{
		Score:       clampInt(int(*payload.Score), 0, 100),
		Breakdown:   clampBreakdown(payload.Breakdown),
		Reasoning:   strings.TrimSpace(payload.Reasoning),
		Gaps:        payload.Gaps,
		Suggestions: normalizeSuggestions(payload.Suggestions),
	}
	if outcome.Gaps == nil {
		outcome.Gaps = []string{}
	}
	if outcome.Reasoning == "" {
		outcome.Reasoning = "No reasoning provided by the analysis"
	}
	return outcome, true
}

func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// normalizeSuggestions pads with a generic filler or truncates so the result
// always has exactly five entries.
func normalizeSuggestions(in []string) []string {
	out := make([]string, 0, suggestionCount)
	for _, s := range in {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	for len(out) < suggestionCount {
		out = append(out, fillerSuggestion)
	}
	return out[:suggestionCount]
}

// clampBreakdown enforces the per-category ceilings. Missing categories
// default to zero. The sum is deliberately not reconciled against the
// top-level score.
func clampBreakdown(raw map[string]float64) domain.ScoreBreakdown {
	category := func(key string, ceiling int) int {
		return clampInt(int(raw[key]), 0, ceiling)
	}
	return domain.ScoreBreakdown{
		TechnicalSkills: category("technical_skills", domain.MaxTechnicalSkills),
		Experience:      category("experience", domain.MaxExperience),
		Education:       category("education", domain.MaxEducation),
		DomainFit:       category("domain_fit", domain.MaxDomainFit),
		SoftSkills:      category("soft_skills", domain.MaxSoftSkills),
		GrowthPotential: category("growth_potential", domain.MaxGrowthPotential),
	}
}

// fallbackOutcome is the fixed, schema-valid result substituted when the
// model output cannot be parsed. The breakdown is spread roughly in
// proportion to the category weights around the neutral score of 50.
func fallbackOutcome() ScoreOutcome {
	return ScoreOutcome{
		Score: 50,
		Breakdown: domain.ScoreBreakdown{
			TechnicalSkills: 15,
			Experience:      13,
			Education:       8,
			DomainFit:       8,
			SoftSkills:      5,
			GrowthPotential: 5,
		},
		Reasoning: fallbackReasoning,
		Gaps:      []string{"Detailed gap analysis unavailable for this run"},
		Suggestions: []string{
			"Ensure your resume clearly highlights relevant skills",
			"Match your experience with the job requirements",
			"Include relevant keywords from the job description",
			"Quantify your achievements with specific metrics",
			"Tailor your profile to the specific role requirements",
		},
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
