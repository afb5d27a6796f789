package insight

import (
	"bytes"
	"encoding/json"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
)

// ErrUnparseable is returned when no strategy yields an insight object.
var ErrUnparseable = eris.New("insight: model output is not a valid insight object")

type rawInsight struct {
	Analysis       string   `json:"analysis"`
	Recommendation string   `json:"recommendation"`
	Risks          []string `json:"risks"`
}

// ParseResponse turns raw model text into an Insight (without ID or timestamp).
//
// Models drift from strict JSON, so three strategies are tried in order:
// plain JSON, json-repair, then Hjson.
func ParseResponse(text string) (*Insight, error) {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return nil, eris.Wrap(ErrUnparseable, "empty response")
	}

	raw, err := decodeLenient(cleaned)
	if err != nil {
		return nil, err
	}

	rec, err := ParseRecommendation(raw.Recommendation)
	if err != nil {
		return nil, err
	}
	analysis := stripCodeFence(raw.Analysis)
	if analysis == "" {
		return nil, eris.Wrap(ErrUnparseable, "analysis is empty")
	}

	risks := make([]string, 0, len(raw.Risks))
	for _, r := range raw.Risks {
		if r = strings.TrimSpace(r); r != "" {
			risks = append(risks, r)
		}
	}

	html, err := RenderMarkdown(analysis)
	if err != nil {
		return nil, err
	}

	return &Insight{
		Analysis:       analysis,
		AnalysisHTML:   html,
		Recommendation: rec,
		Risks:          risks,
	}, nil
}

func decodeLenient(input string) (*rawInsight, error) {
	var out rawInsight
	if err := json.Unmarshal([]byte(input), &out); err == nil {
		return &out, nil
	}

	if repaired, err := jsonrepair.RepairJSON(input); err == nil {
		out = rawInsight{}
		if err := json.Unmarshal([]byte(repaired), &out); err == nil {
			return &out, nil
		}
	}

	var generic interface{}
	if err := hjson.Unmarshal([]byte(input), &generic); err == nil {
		if b, err := json.Marshal(generic); err == nil {
			out = rawInsight{}
			if err := json.Unmarshal(b, &out); err == nil {
				return &out, nil
			}
		}
	}

	return nil, eris.Wrap(ErrUnparseable, "all parsing strategies failed")
}

// stripCodeFence removes an outer ``` or ```json / ```markdown wrapper.
func stripCodeFence(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") || len(cleaned) < 6 {
		return cleaned
	}
	cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "```"), "```")
	// Drop the info string (json, markdown, ...) on the opening line.
	if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 && !strings.ContainsAny(cleaned[:nl], "{[") {
		cleaned = cleaned[nl+1:]
	}
	return strings.TrimSpace(cleaned)
}

// RenderMarkdown converts analysis markdown to HTML for display.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", eris.Wrap(err, "insight: render markdown")
	}
	return buf.String(), nil
}
