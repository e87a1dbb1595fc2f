package usecase

import (
	"fmt"

	"github.com/vpetrenko/jobfit/internal/core/domain"
)

const defaultMaxPromptInputChars = 6000

// truncateForPrompt bounds the text included in a prompt. Truncation is
// silent and uniform; it exists to cap token cost, not to signal an error.
func truncateForPrompt(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = defaultMaxPromptInputChars
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}

func buildJDSummaryPrompt(jdText string, maxChars int) string {
	return fmt.Sprintf(`You are an expert technical recruiter. Summarize the job description below.

Respond in plain text with exactly these labeled sections, one per line group:
ROLE: <job title and seniority>
REQUIRED SKILLS: <comma-separated hard skills>
REQUIRED EXPERIENCE: <years and kind of experience>
EDUCATION REQUIREMENTS: <degrees or certifications, or "none stated">
RESPONSIBILITIES: <short list of main responsibilities>

Do not add other sections. Do not use JSON or markdown.

Job Description:
%s
`, truncateForPrompt(jdText, maxChars))
}

func buildProfileSummaryPrompt(text string, kind domain.DocumentKind, maxChars int) string {
	label := "Resume"
	if kind == domain.KindNetworkProfile {
		label = "Professional Network Profile"
	}

	return fmt.Sprintf(`You are an expert career counselor. Summarize the candidate document below.

Respond in plain text with exactly these labeled sections, one per line group:
SKILLS: <comma-separated skills>
EXPERIENCE: <roles, employers and durations>
EDUCATION: <degrees and institutions, or "none stated">
ACHIEVEMENTS: <notable, preferably quantified achievements>
DOMAIN EXPERTISE: <industries and domains the candidate knows>

Do not add other sections. Do not use JSON or markdown.

%s:
%s
`, label, truncateForPrompt(text, maxChars))
}

func buildScoringPrompt(jdSummary, profileSummary string, maxChars int) string {
	return fmt.Sprintf(`You are an expert career counselor and recruiter. Compare the candidate summary against the job description summary and score the match.

SCORING CRITERIA:
- Technical Skills Match (30%%): how well the candidate's skills align with the requirements
- Experience Match (25%%): level and kind of experience versus the role
- Education & Qualifications (15%%): whether educational requirements are met
- Industry/Domain Knowledge (15%%): relevant industry experience
- Cultural/Soft Skills Fit (10%%): leadership, teamwork, communication
- Growth Potential (5%%): ability to grow into the role

Return ONLY a single valid JSON object with these exact keys and no surrounding prose or markdown fencing:
{
  "score": <number between 0 and 100>,
  "breakdown": {
    "technical_skills": <number between 0 and 30>,
    "experience": <number between 0 and 25>,
    "education": <number between 0 and 15>,
    "domain_fit": <number between 0 and 15>,
    "soft_skills": <number between 0 and 10>,
    "growth_potential": <number between 0 and 10>
  },
  "reasoning": "<single concise sentence explaining the score>",
  "gaps": ["<gap between candidate and requirements>", ...],
  "suggestions": [
    "<specific actionable improvement suggestion 1>",
    "<specific actionable improvement suggestion 2>",
    "<specific actionable improvement suggestion 3>",
    "<specific actionable improvement suggestion 4>",
    "<specific actionable improvement suggestion 5>"
  ]
}

IMPORTANT:
- Provide exactly 5 specific, actionable suggestions
- Be constructive and focus on improvements that raise the match score

Job Description Summary:
%s

Candidate Summary:
%s
`, truncateForPrompt(jdSummary, maxChars), truncateForPrompt(profileSummary, maxChars))
}
