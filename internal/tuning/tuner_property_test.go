package tuning

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

func drawConfig(rt *rapid.T) models.TuningConfig {
	duration := func(label string) time.Duration {
		return time.Duration(rapid.Int64Range(-int64(time.Hour), int64(48*time.Hour)).Draw(rt, label))
	}
	return models.TuningConfig{
		CacheTTL:               duration("cache_ttl"),
		MaxConcurrentWorkflows: rapid.IntRange(-10, 10000).Draw(rt, "concurrency"),
		BatchSize:              rapid.IntRange(-10, 10000).Draw(rt, "batch"),
		WorkerPoolSize:         rapid.IntRange(-10, 10000).Draw(rt, "workers"),
		MemoryLimitMB:          rapid.IntRange(-10, 1<<20).Draw(rt, "memory"),
		ExecutionTimeout:       duration("timeout"),
		RetryAttempts:          rapid.IntRange(-10, 1000).Draw(rt, "retries"),
		RetryDelay:             duration("retry_delay"),
		OptimizationLevel:      models.LevelBalanced,
	}
}

func TestClampIsIdempotent(t *testing.T) {
	bounds := models.DefaultKnobBounds()
	rapid.Check(t, func(rt *rapid.T) {
		cfg := drawConfig(rt)

		once := ClampConfig(cfg, bounds)
		twice := ClampConfig(once, bounds)
		if once != twice {
			rt.Fatalf("clamp not idempotent:\n once = %+v\ntwice = %+v", once, twice)
		}
	})
}

func TestClampStaysInBounds(t *testing.T) {
	bounds := models.DefaultKnobBounds()
	rapid.Check(t, func(rt *rapid.T) {
		cfg := ClampConfig(drawConfig(rt), bounds)

		if cfg.CacheTTL < bounds.MinCacheTTL || cfg.CacheTTL > bounds.MaxCacheTTL {
			rt.Fatalf("cache ttl %s outside [%s, %s]", cfg.CacheTTL, bounds.MinCacheTTL, bounds.MaxCacheTTL)
		}
		if cfg.MaxConcurrentWorkflows < bounds.MinConcurrency || cfg.MaxConcurrentWorkflows > bounds.MaxConcurrency {
			rt.Fatalf("concurrency %d outside [%d, %d]", cfg.MaxConcurrentWorkflows, bounds.MinConcurrency, bounds.MaxConcurrency)
		}
		if cfg.BatchSize < bounds.MinBatchSize || cfg.BatchSize > bounds.MaxBatchSize {
			rt.Fatalf("batch %d outside [%d, %d]", cfg.BatchSize, bounds.MinBatchSize, bounds.MaxBatchSize)
		}
		if cfg.WorkerPoolSize < bounds.MinWorkerPool || cfg.WorkerPoolSize > bounds.MaxWorkerPool {
			rt.Fatalf("workers %d outside [%d, %d]", cfg.WorkerPoolSize, bounds.MinWorkerPool, bounds.MaxWorkerPool)
		}
		if cfg.MemoryLimitMB < bounds.MinMemoryMB || cfg.MemoryLimitMB > bounds.MaxMemoryMB {
			rt.Fatalf("memory %d outside [%d, %d]", cfg.MemoryLimitMB, bounds.MinMemoryMB, bounds.MaxMemoryMB)
		}
		if cfg.ExecutionTimeout < bounds.MinExecutionTimeout || cfg.ExecutionTimeout > bounds.MaxExecutionTimeout {
			rt.Fatalf("timeout %s outside [%s, %s]", cfg.ExecutionTimeout, bounds.MinExecutionTimeout, bounds.MaxExecutionTimeout)
		}
		if cfg.RetryAttempts < bounds.MinRetryAttempts || cfg.RetryAttempts > bounds.MaxRetryAttempts {
			rt.Fatalf("retries %d outside [%d, %d]", cfg.RetryAttempts, bounds.MinRetryAttempts, bounds.MaxRetryAttempts)
		}
		if cfg.RetryDelay < bounds.MinRetryDelay || cfg.RetryDelay > bounds.MaxRetryDelay {
			rt.Fatalf("retry delay %s outside [%s, %s]", cfg.RetryDelay, bounds.MinRetryDelay, bounds.MaxRetryDelay)
		}
	})
}
