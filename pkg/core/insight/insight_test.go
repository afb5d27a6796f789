package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investment_appraisal/pkg/core/agent"
	"investment_appraisal/pkg/core/appraisal"
	"investment_appraisal/pkg/core/llm"
	"investment_appraisal/pkg/core/prompt"
)

const approveJSON = `{"analysis": "The project **clears** the hurdle rate.", "recommendation": "APPROVE", "risks": ["Revenue ramp", " ", "Tax changes"]}`

// scriptedProvider answers every call with the same text or error.
type scriptedProvider struct {
	reply   string
	err     error
	block   bool
	prompts []string
	system  string
	options map[string]interface{}
}

func (p *scriptedProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	p.prompts = append(p.prompts, prompt)
	p.system = systemPrompt
	p.options = options
	if p.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return p.reply, p.err
}

func (p *scriptedProvider) AdaptInstructions(raw string) string { return raw }

func newTestAnalyzer(t *testing.T, p *scriptedProvider, opts Options) *Analyzer {
	t.Helper()
	reg, err := prompt.NewDefaultRegistry()
	require.NoError(t, err)
	mgr := agent.NewManager(agent.Config{ActiveProvider: "scripted"}, map[string]llm.Provider{"scripted": p})
	return NewAnalyzer(mgr, reg, opts)
}

func TestAnalyze_Success(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{reply: approveJSON}
	a := newTestAnalyzer(t, p, Options{})
	in := appraisal.DefaultInputs()
	res := appraisal.Compute(in)

	ins, err := a.Analyze(context.Background(), in, res)
	require.NoError(t, err)

	assert.Equal(t, Approve, ins.Recommendation)
	assert.Equal(t, []string{"Revenue ramp", "Tax changes"}, ins.Risks)
	assert.Contains(t, ins.AnalysisHTML, "<strong>clears</strong>")
	_, err = uuid.Parse(ins.ID)
	assert.NoError(t, err)
	assert.False(t, ins.GeneratedAt.IsZero())

	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], "NPV: 58409.29")
	assert.Contains(t, p.prompts[0], "IRR: 29.44%")
	assert.Contains(t, p.prompts[0], "Cash payback: 2.62 years")
	assert.Contains(t, p.prompts[0], "0 | 100000.00 | 0.00 | 0.00 | 0.00 | -100000.00 | -100000.00")
	assert.NotContains(t, p.prompts[0], "Active stress scenario")
	assert.Contains(t, p.system, "APPROVE, REJECT, NEUTRAL")
	assert.Equal(t, llm.JSONResponse(), p.options[llm.OptionResponseFormat])
}

func TestAnalyzeScenario_MentionsStress(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{reply: approveJSON}
	a := newTestAnalyzer(t, p, Options{})

	res, out := a.ScenarioOrUnavailable(context.Background(), appraisal.DefaultInputs(), -10, 5)

	require.True(t, out.Available)
	assert.Equal(t, appraisal.Compute(appraisal.ApplySensitivity(appraisal.DefaultInputs(), -10, 5)), res)
	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], "Active stress scenario: Returns: -10% | Invest: -5% cost")
}

func TestAnalyzeOrUnavailable_Failures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		p    *scriptedProvider
	}{
		{name: "provider error", p: &scriptedProvider{err: errors.New("quota exceeded")}},
		{name: "bad recommendation", p: &scriptedProvider{reply: `{"analysis": "ok", "recommendation": "MAYBE", "risks": []}`}},
		{name: "not json", p: &scriptedProvider{reply: "I cannot help with that."}},
		{name: "empty", p: &scriptedProvider{reply: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newTestAnalyzer(t, tt.p, Options{})
			in := appraisal.DefaultInputs()
			res := appraisal.Compute(in)
			before := res.Clone()

			out := a.AnalyzeOrUnavailable(context.Background(), in, res)

			assert.False(t, out.Available)
			assert.Nil(t, out.Insight)
			assert.Equal(t, UnavailableMessage, out.Message)
			assert.Equal(t, before, res)
		})
	}
}

func TestAnalyze_Timeout(t *testing.T) {
	t.Parallel()
	a := newTestAnalyzer(t, &scriptedProvider{block: true}, Options{Timeout: 20 * time.Millisecond})
	in := appraisal.DefaultInputs()

	_, err := a.Analyze(context.Background(), in, appraisal.Compute(in))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAnalyze_RateLimitHonoursContext(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{reply: approveJSON}
	a := newTestAnalyzer(t, p, Options{RatePerMinute: 1})
	in := appraisal.DefaultInputs()
	res := appraisal.Compute(in)

	_, err := a.Analyze(context.Background(), in, res)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Analyze(ctx, in, res)
	assert.Error(t, err)
	assert.Len(t, p.prompts, 1)
}

func TestAnalyze_UndefinedMetricsAreSpelledOut(t *testing.T) {
	t.Parallel()
	p := &scriptedProvider{reply: approveJSON}
	a := newTestAnalyzer(t, p, Options{})
	in := appraisal.DefaultInputs()
	in.CostOfCapital = -100
	in.YearlyData = in.YearlyData[:1]

	_, err := a.Analyze(context.Background(), in, appraisal.Compute(in))
	require.NoError(t, err)
	assert.Contains(t, p.prompts[0], "NPV: undefined")
	assert.Contains(t, p.prompts[0], "IRR: n/a")
	assert.Contains(t, p.prompts[0], "Cash payback: never")
}

func TestParseResponse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		text    string
		want    Recommendation
		wantErr bool
	}{
		{name: "plain", text: approveJSON, want: Approve},
		{name: "fenced", text: "```json\n" + `{"analysis": "Weak returns.", "recommendation": "reject", "risks": ["Low IRR"]}` + "\n```", want: Reject},
		{name: "trailing comma", text: `{"analysis": "Borderline.", "recommendation": "Neutral", "risks": ["a",],}`, want: Neutral},
		{name: "missing analysis", text: `{"recommendation": "APPROVE", "risks": []}`, wantErr: true},
		{name: "unknown verdict", text: `{"analysis": "x", "recommendation": "BUY"}`, wantErr: true},
		{name: "empty", text: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseResponse(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Recommendation)
			assert.NotEmpty(t, got.Analysis)
			assert.NotNil(t, got.Risks)
		})
	}
}

func TestParseRecommendation(t *testing.T) {
	t.Parallel()
	r, err := ParseRecommendation(" approve ")
	require.NoError(t, err)
	assert.Equal(t, Approve, r)

	_, err = ParseRecommendation("hold")
	assert.ErrorIs(t, err, ErrInvalidRecommendation)
}

func TestStripCodeFence(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "# Title", stripCodeFence("```markdown\n# Title\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```{\"a\":1}```"))
	assert.Equal(t, "plain", stripCodeFence("  plain  "))
}
