// Package insight asks an LLM for a qualitative review of an appraisal.
//
// The call is external and may fail at any point; AnalyzeOrUnavailable turns
// every failure into an Outcome that says so, leaving the deterministic
// appraisal results untouched.
package insight

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Recommendation is the categorical verdict returned by the model.
type Recommendation string

const (
	Approve Recommendation = "APPROVE"
	Reject  Recommendation = "REJECT"
	Neutral Recommendation = "NEUTRAL"
)

// ErrInvalidRecommendation is returned when the model answers outside the three verdicts.
var ErrInvalidRecommendation = eris.New("insight: recommendation must be APPROVE, REJECT or NEUTRAL")

// ParseRecommendation accepts the verdicts case-insensitively.
func ParseRecommendation(s string) (Recommendation, error) {
	switch r := Recommendation(strings.ToUpper(strings.TrimSpace(s))); r {
	case Approve, Reject, Neutral:
		return r, nil
	default:
		return "", eris.Wrapf(ErrInvalidRecommendation, "got %q", s)
	}
}

// Insight is one model review of a computed appraisal.
type Insight struct {
	ID             string         `json:"id"`
	Analysis       string         `json:"analysis"`     // Markdown
	AnalysisHTML   string         `json:"analysisHtml"` // Rendered from Analysis
	Recommendation Recommendation `json:"recommendation"`
	Risks          []string       `json:"risks"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}

// UnavailableMessage is shown in place of an insight when the call fails.
const UnavailableMessage = "insight unavailable"

// Outcome wraps an insight attempt for callers that must never fail.
type Outcome struct {
	Available bool     `json:"available"`
	Insight   *Insight `json:"insight,omitempty"`
	Message   string   `json:"message,omitempty"`
}
