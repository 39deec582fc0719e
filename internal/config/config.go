// Package config loads the .autodevrc configuration file and applies
// defaults for everything it omits. A missing file is not an error; the
// defaults describe a working local setup.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/primoscope/Spotify-echo-sub014/internal/core"
	"github.com/primoscope/Spotify-echo-sub014/internal/validation"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// Research configures the research collaborator endpoint.
type Research struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// Container configures the container runtime collaborator.
type Container struct {
	Image string `mapstructure:"image"`
	Name  string `mapstructure:"name"`
}

// Config is the full runtime configuration.
type Config struct {
	DataDir    string                   `mapstructure:"data_dir"`
	Research   Research                 `mapstructure:"research"`
	Container  Container                `mapstructure:"container"`
	Tuning     models.TuningConfig      `mapstructure:"tuning"`
	Policy     models.TuningPolicy      `mapstructure:"policy"`
	Validation validation.Policy        `mapstructure:"validation"`
	Milestones core.MilestoneThresholds `mapstructure:"milestones"`
	Baselines  map[string]float64       `mapstructure:"baselines"`
}

// EventsPath is the append-only JSONL event log inside DataDir. The stores
// derive their own file names from DataDir directly.
func (c *Config) EventsPath() string { return filepath.Join(c.DataDir, "events.jsonl") }

// Load reads .autodevrc (yaml) from dir, falling back to defaults when the
// file is absent. Environment variables prefixed AUTODEV_ override file
// values (AUTODEV_RESEARCH_API_KEY keeps the key out of the file).
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".autodevrc")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("autodev")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".autodev")

	v.SetDefault("research.base_url", "http://localhost:3001/api/research")
	v.SetDefault("research.model", "sonar-pro")
	v.SetDefault("research.max_tokens", 1024)

	v.SetDefault("container.image", "echotune:latest")
	v.SetDefault("container.name", "echotune-validation")

	balanced := models.TuningConfig{
		CacheTTL:               5 * time.Minute,
		MaxConcurrentWorkflows: 8,
		BatchSize:              50,
		WorkerPoolSize:         16,
		MemoryLimitMB:          1024,
		ExecutionTimeout:       30 * time.Second,
		RetryAttempts:          2,
		RetryDelay:             time.Second,
		OptimizationLevel:      models.LevelBalanced,
	}
	v.SetDefault("tuning.cache_ttl", balanced.CacheTTL)
	v.SetDefault("tuning.max_concurrent_workflows", balanced.MaxConcurrentWorkflows)
	v.SetDefault("tuning.batch_size", balanced.BatchSize)
	v.SetDefault("tuning.worker_pool_size", balanced.WorkerPoolSize)
	v.SetDefault("tuning.memory_limit_mb", balanced.MemoryLimitMB)
	v.SetDefault("tuning.execution_timeout", balanced.ExecutionTimeout)
	v.SetDefault("tuning.retry_attempts", balanced.RetryAttempts)
	v.SetDefault("tuning.retry_delay", balanced.RetryDelay)
	v.SetDefault("tuning.optimization_level", string(balanced.OptimizationLevel))

	policy := models.DefaultTuningPolicy()
	v.SetDefault("policy.kpi_dead_band_pct", policy.KPIDeadBandPct)
	v.SetDefault("policy.low_score_threshold", policy.LowScoreThreshold)
	v.SetDefault("policy.high_score_threshold", policy.HighScoreThreshold)
	v.SetDefault("policy.critical_threshold", policy.CriticalThreshold)
	v.SetDefault("policy.target_threshold", policy.TargetThreshold)
	v.SetDefault("policy.sample_interval", policy.SampleInterval)
	v.SetDefault("policy.history_limit", policy.HistoryLimit)

	vp := validation.DefaultPolicy()
	v.SetDefault("validation.group_pass_rate", vp.GroupPassRate)
	v.SetDefault("validation.integration_threshold", vp.IntegrationThreshold)
	v.SetDefault("validation.security_threshold", vp.SecurityThreshold)

	mt := core.DefaultMilestoneThresholds()
	v.SetDefault("milestones.core_features", mt.CoreFeatures)
	v.SetDefault("milestones.testing", mt.Testing)
	v.SetDefault("milestones.optimization", mt.Optimization)
	v.SetDefault("milestones.polish", mt.Polish)

	v.SetDefault("baselines", map[string]float64{
		"cpu_pct":          40,
		"mem_pct":          50,
		"probe_latency_ms": 120,
	})
}
