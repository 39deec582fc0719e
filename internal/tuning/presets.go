package tuning

import (
	"time"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// Presets returns the three named strategy bundles. They form an ordered
// trade-off: aggressive runs hot (high concurrency, long cache, short
// timeouts, minimal retries), conservative runs cool, balanced sits between.
func Presets() map[models.OptimizationLevel]models.TuningConfig {
	return map[models.OptimizationLevel]models.TuningConfig{
		models.LevelAggressive: {
			CacheTTL:               10 * time.Minute,
			MaxConcurrentWorkflows: 16,
			BatchSize:              100,
			WorkerPoolSize:         32,
			MemoryLimitMB:          2048,
			ExecutionTimeout:       15 * time.Second,
			RetryAttempts:          1,
			RetryDelay:             500 * time.Millisecond,
			OptimizationLevel:      models.LevelAggressive,
		},
		models.LevelBalanced: {
			CacheTTL:               5 * time.Minute,
			MaxConcurrentWorkflows: 8,
			BatchSize:              50,
			WorkerPoolSize:         16,
			MemoryLimitMB:          1024,
			ExecutionTimeout:       30 * time.Second,
			RetryAttempts:          2,
			RetryDelay:             time.Second,
			OptimizationLevel:      models.LevelBalanced,
		},
		models.LevelConservative: {
			CacheTTL:               time.Minute,
			MaxConcurrentWorkflows: 2,
			BatchSize:              10,
			WorkerPoolSize:         4,
			MemoryLimitMB:          512,
			ExecutionTimeout:       60 * time.Second,
			RetryAttempts:          3,
			RetryDelay:             2 * time.Second,
			OptimizationLevel:      models.LevelConservative,
		},
	}
}

// ClampConfig forces every numeric knob into its documented bounds. Zero or
// negative values can never survive a clamp.
func ClampConfig(cfg models.TuningConfig, bounds models.KnobBounds) models.TuningConfig {
	cfg.CacheTTL = clampDuration(cfg.CacheTTL, bounds.MinCacheTTL, bounds.MaxCacheTTL)
	cfg.MaxConcurrentWorkflows = clampInt(cfg.MaxConcurrentWorkflows, bounds.MinConcurrency, bounds.MaxConcurrency)
	cfg.BatchSize = clampInt(cfg.BatchSize, bounds.MinBatchSize, bounds.MaxBatchSize)
	cfg.WorkerPoolSize = clampInt(cfg.WorkerPoolSize, bounds.MinWorkerPool, bounds.MaxWorkerPool)
	cfg.MemoryLimitMB = clampInt(cfg.MemoryLimitMB, bounds.MinMemoryMB, bounds.MaxMemoryMB)
	cfg.ExecutionTimeout = clampDuration(cfg.ExecutionTimeout, bounds.MinExecutionTimeout, bounds.MaxExecutionTimeout)
	cfg.RetryAttempts = clampInt(cfg.RetryAttempts, bounds.MinRetryAttempts, bounds.MaxRetryAttempts)
	cfg.RetryDelay = clampDuration(cfg.RetryDelay, bounds.MinRetryDelay, bounds.MaxRetryDelay)
	return cfg
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

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
