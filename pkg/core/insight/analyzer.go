package insight

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"investment_appraisal/pkg/core/agent"
	"investment_appraisal/pkg/core/appraisal"
	"investment_appraisal/pkg/core/llm"
	"investment_appraisal/pkg/core/prompt"
	"investment_appraisal/pkg/models"
)

// Executor runs a prompt for an agent type. *agent.Manager implements it.
type Executor interface {
	ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error)
}

var _ Executor = (*agent.Manager)(nil)

// Options tune an Analyzer. Zero values pick the defaults.
type Options struct {
	Timeout       time.Duration // Per call, default 60s
	RatePerMinute int           // 0 disables limiting
	AgentType     string        // Default agent.InsightAgent
	PromptID      string        // Default prompt.InsightAppraisal
}

// Analyzer builds the insight prompt, calls the model and parses its answer.
type Analyzer struct {
	exec      Executor
	prompts   *prompt.Registry
	limiter   *rate.Limiter
	timeout   time.Duration
	agentType string
	promptID  string
	now       func() time.Time
}

func NewAnalyzer(exec Executor, prompts *prompt.Registry, opts Options) *Analyzer {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.AgentType == "" {
		opts.AgentType = agent.InsightAgent
	}
	if opts.PromptID == "" {
		opts.PromptID = prompt.InsightAppraisal
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), 1)
	}
	return &Analyzer{
		exec:      exec,
		prompts:   prompts,
		limiter:   limiter,
		timeout:   opts.Timeout,
		agentType: opts.AgentType,
		promptID:  opts.PromptID,
		now:       time.Now,
	}
}

// Analyze requests an insight for already computed results.
func (a *Analyzer) Analyze(ctx context.Context, inputs models.AppraisalInputs, results models.AppraisalResults) (*Insight, error) {
	return a.analyze(ctx, inputs, results, "")
}

// AnalyzeScenario applies the sensitivity to base, computes it and requests an
// insight that mentions the active stress.
func (a *Analyzer) AnalyzeScenario(ctx context.Context, base models.AppraisalInputs, returnPct, investmentPct appraisal.SensitivityLevel) (models.AppraisalResults, *Insight, error) {
	active := appraisal.ApplySensitivity(base, returnPct, investmentPct)
	res := appraisal.Compute(active)
	stress := ""
	if appraisal.IsStressed(returnPct, investmentPct) {
		stress = appraisal.StressLabel(returnPct, investmentPct)
	}
	ins, err := a.analyze(ctx, active, res, stress)
	return res, ins, err
}

func (a *Analyzer) analyze(ctx context.Context, inputs models.AppraisalInputs, results models.AppraisalResults, stress string) (*Insight, error) {
	pt, err := a.prompts.GetPrompt(a.promptID)
	if err != nil {
		return nil, eris.Wrap(err, "insight: load prompt")
	}
	userPrompt, err := prompt.RenderUserPrompt(pt, promptVariables(inputs, results, stress))
	if err != nil {
		return nil, eris.Wrap(err, "insight: render prompt")
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "insight: rate limit")
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := a.now()
	text, err := a.exec.ExecutePrompt(callCtx, a.agentType, userPrompt, pt.SystemPrompt, map[string]interface{}{
		llm.OptionResponseFormat: llm.JSONResponse(),
	})
	if err != nil {
		return nil, eris.Wrap(err, "insight: generate")
	}

	ins, err := ParseResponse(text)
	if err != nil {
		return nil, eris.Wrap(err, "insight: parse response")
	}
	ins.ID = uuid.New().String()
	ins.GeneratedAt = a.now().UTC()

	zap.L().Info("insight: generated",
		zap.String("id", ins.ID),
		zap.String("recommendation", string(ins.Recommendation)),
		zap.Int("risks", len(ins.Risks)),
		zap.Duration("elapsed", a.now().Sub(start)),
	)
	return ins, nil
}

// AnalyzeOrUnavailable never fails: errors are logged and reported as an
// unavailable outcome. The results passed in are not modified either way.
func (a *Analyzer) AnalyzeOrUnavailable(ctx context.Context, inputs models.AppraisalInputs, results models.AppraisalResults) Outcome {
	ins, err := a.Analyze(ctx, inputs, results)
	return outcome(ins, err)
}

// ScenarioOrUnavailable is AnalyzeScenario with the same failure handling.
func (a *Analyzer) ScenarioOrUnavailable(ctx context.Context, base models.AppraisalInputs, returnPct, investmentPct appraisal.SensitivityLevel) (models.AppraisalResults, Outcome) {
	res, ins, err := a.AnalyzeScenario(ctx, base, returnPct, investmentPct)
	return res, outcome(ins, err)
}

func outcome(ins *Insight, err error) Outcome {
	if err != nil {
		zap.L().Warn("insight: unavailable", zap.Error(err))
		return Outcome{Available: false, Message: UnavailableMessage}
	}
	return Outcome{Available: true, Insight: ins}
}
