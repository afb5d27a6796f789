package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"investment_appraisal/pkg/core/agent"
)

// Config holds the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Insight InsightConfig `yaml:"insight" mapstructure:"insight"`
	Agents  agent.Config  `yaml:"agents" mapstructure:"agents"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string   `yaml:"addr" mapstructure:"addr"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// InsightConfig configures the AI insight adapter and result memo.
type InsightConfig struct {
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerMinute int    `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
	Model         string `yaml:"model" mapstructure:"model"`
	PromptsDir    string `yaml:"prompts_dir" mapstructure:"prompts_dir"`
	MemoSize      int    `yaml:"memo_size" mapstructure:"memo_size"`
}

// Timeout returns the per-call insight timeout.
func (c InsightConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Load reads configuration from a YAML file and the environment.
//
// An explicit path must exist. With an empty path, config/appraisal.yaml and
// ./appraisal.yaml are tried and a missing file is not an error. A .env file
// in the working directory is loaded first when present. Environment
// variables use the APPRAISAL_ prefix, e.g. APPRAISAL_LOG_LEVEL or
// APPRAISAL_AGENTS_ACTIVE_PROVIDER.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("appraisal")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("APPRAISAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("insight.timeout_secs", 60)
	v.SetDefault("insight.rate_per_minute", 10)
	v.SetDefault("insight.model", "")
	v.SetDefault("insight.prompts_dir", "")
	v.SetDefault("insight.memo_size", 256)
	v.SetDefault("agents.active_provider", "gemini")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyInsightModel()

	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Insight.TimeoutSecs <= 0 {
		return eris.Errorf("config: insight.timeout_secs must be positive, got %d", c.Insight.TimeoutSecs)
	}
	if c.Insight.RatePerMinute < 0 {
		return eris.Errorf("config: insight.rate_per_minute must not be negative, got %d", c.Insight.RatePerMinute)
	}
	if c.Insight.MemoSize <= 0 {
		return eris.Errorf("config: insight.memo_size must be positive, got %d", c.Insight.MemoSize)
	}
	if c.Agents.ActiveProvider == "" {
		return eris.New("config: agents.active_provider is empty")
	}
	return nil
}

// applyInsightModel copies insight.model onto the insight agent unless the
// agent section already names one.
func (c *Config) applyInsightModel() {
	if c.Insight.Model == "" {
		return
	}
	if c.Agents.Agents == nil {
		c.Agents.Agents = map[string]agent.AgentConfig{}
	}
	ac := c.Agents.Agents[agent.InsightAgent]
	if ac.Model == "" {
		ac.Model = c.Insight.Model
		c.Agents.Agents[agent.InsightAgent] = ac
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
