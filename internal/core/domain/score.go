package domain

import "time"

type AnalysisStage string

const (
	StageJDSummary      AnalysisStage = "jd_summary"
	StageProfileSummary AnalysisStage = "profile_summary"
	StageScoring        AnalysisStage = "scoring"
)

// StageConfig carries the per-stage generation parameters. The scoring stage
// runs with a low temperature to reduce variance in the structured output.
type StageConfig struct {
	Stage           AnalysisStage
	Temperature     float32
	MaxOutputTokens int32
}

type RunState string

const (
	StateResolving           RunState = "resolving"
	StateExtractingJD        RunState = "extracting_jd"
	StateExtractingCandidate RunState = "extracting_candidate"
	StateSummarizingJD       RunState = "summarizing_jd"
	StateSummarizingProfile  RunState = "summarizing_profile"
	StateScoring             RunState = "scoring"
	StateParsing             RunState = "parsing"
	StatePersisting          RunState = "persisting"
	StateDone                RunState = "done"
	StateFailed              RunState = "failed"
)

type DocumentSource string

const (
	SourceTemporaryResume  DocumentSource = "temporary-resume"
	SourceTemporaryNetwork DocumentSource = "temporary-network"
	SourceProfileResume    DocumentSource = "profile-resume"
	SourceProfileNetwork   DocumentSource = "profile-network"
)

// Category ceilings for the breakdown. The ceilings mirror the scoring
// criteria weights, except growth potential which is capped above its weight.
const (
	MaxTechnicalSkills = 30
	MaxExperience      = 25
	MaxEducation       = 15
	MaxDomainFit       = 15
	MaxSoftSkills      = 10
	MaxGrowthPotential = 10
)

type ScoreBreakdown struct {
	TechnicalSkills int `json:"technical_skills"`
	Experience      int `json:"experience"`
	Education       int `json:"education"`
	DomainFit       int `json:"domain_fit"`
	SoftSkills      int `json:"soft_skills"`
	GrowthPotential int `json:"growth_potential"`
}

// Sum is informational only. The model may return a breakdown that does not
// add up to the top-level score; that inconsistency is stored as-is.
func (b ScoreBreakdown) Sum() int {
	return b.TechnicalSkills + b.Experience + b.Education + b.DomainFit + b.SoftSkills + b.GrowthPotential
}

// ScoringResult is the persisted outcome of one scoring run. Records are
// append-only: created once, never mutated.
type ScoringResult struct {
	ID               string         `json:"id"`
	ProfileID        string         `json:"profile_id"`
	Score            int            `json:"score"`
	Breakdown        ScoreBreakdown `json:"breakdown"`
	Reasoning        string         `json:"reasoning"`
	Gaps             []string       `json:"gaps"`
	Suggestions      []string       `json:"suggestions"`
	DocumentSource   DocumentSource `json:"document_source"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	CreatedAt        time.Time      `json:"created_at"`
}

// ScoreSummary is the history projection of a scoring run: enough to show a
// past result without the full breakdown.
type ScoreSummary struct {
	ID             string         `json:"id"`
	Score          int            `json:"score"`
	Reasoning      string         `json:"reasoning"`
	Suggestions    []string       `json:"suggestions"`
	DocumentSource DocumentSource `json:"document_source"`
	AnalysisDate   time.Time      `json:"analysis_date"`
}

// ScoreRequest is the inbound shape of one scoring run. The job description
// is mandatory; temporary candidate refs are optional and take precedence
// over documents stored on the profile.
type ScoreRequest struct {
	ProfileID               string
	JobDescription          DocumentRef
	TemporaryResume         *DocumentRef
	TemporaryNetworkProfile *DocumentRef
}
