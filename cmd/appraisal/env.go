package main

import (
	"go.uber.org/zap"

	"investment_appraisal/pkg/core/agent"
	"investment_appraisal/pkg/core/config"
	"investment_appraisal/pkg/core/insight"
	"investment_appraisal/pkg/core/llm"
	"investment_appraisal/pkg/core/prompt"
)

// insightEnv bundles the LLM plumbing shared by the insight and serve commands.
type insightEnv struct {
	Agents   *agent.Manager
	Analyzer *insight.Analyzer
}

func newInsightEnv(c *config.Config) (*insightEnv, error) {
	prompts, err := prompt.NewDefaultRegistry()
	if err != nil {
		return nil, err
	}
	if c.Insight.PromptsDir != "" {
		if err := prompt.LoadFromDirectory(prompts, c.Insight.PromptsDir); err != nil {
			return nil, err
		}
	}
	zap.L().Debug("prompts loaded", zap.Int("count", prompts.Count()), zap.String("override_dir", c.Insight.PromptsDir))

	mgr := agent.NewManager(c.Agents, map[string]llm.Provider{
		"gemini":   &llm.GeminiProvider{Model: c.Insight.Model},
		"deepseek": &llm.DeepSeekProvider{},
	})
	if _, err := mgr.GetProvider(agent.InsightAgent); err != nil {
		return nil, err
	}

	analyzer := insight.NewAnalyzer(mgr, prompts, insight.Options{
		Timeout:       c.Insight.Timeout(),
		RatePerMinute: c.Insight.RatePerMinute,
	})
	return &insightEnv{Agents: mgr, Analyzer: analyzer}, nil
}
