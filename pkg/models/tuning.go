package models

import "time"

// OptimizationLevel names a preset bundle of tuning knobs, ordered from
// fast-and-risky to slow-and-safe.
type OptimizationLevel string

const (
	LevelAggressive   OptimizationLevel = "aggressive"
	LevelBalanced     OptimizationLevel = "balanced"
	LevelConservative OptimizationLevel = "conservative"
)

// ValidOptimizationLevels is the set of allowed OptimizationLevel values.
var ValidOptimizationLevels = map[OptimizationLevel]bool{
	LevelAggressive:   true,
	LevelBalanced:     true,
	LevelConservative: true,
}

// TuningConfig holds the shared performance knobs consumed by the
// orchestrator and mutated only by the auto-tuner. All numeric knobs are
// clamped to the bounds in KnobBounds before being applied.
type TuningConfig struct {
	CacheTTL               time.Duration     `json:"cache_ttl" mapstructure:"cache_ttl"`
	MaxConcurrentWorkflows int               `json:"max_concurrent_workflows" mapstructure:"max_concurrent_workflows"`
	BatchSize              int               `json:"batch_size" mapstructure:"batch_size"`
	WorkerPoolSize         int               `json:"worker_pool_size" mapstructure:"worker_pool_size"`
	MemoryLimitMB          int               `json:"memory_limit_mb" mapstructure:"memory_limit_mb"`
	ExecutionTimeout       time.Duration     `json:"execution_timeout" mapstructure:"execution_timeout"`
	RetryAttempts          int               `json:"retry_attempts" mapstructure:"retry_attempts"`
	RetryDelay             time.Duration     `json:"retry_delay" mapstructure:"retry_delay"`
	OptimizationLevel      OptimizationLevel `json:"optimization_level" mapstructure:"optimization_level"`
}

// KnobBounds documents the floor and ceiling for every numeric knob.
// Adjustments clamp into these ranges; zero or negative values never land.
type KnobBounds struct {
	MinCacheTTL         time.Duration
	MaxCacheTTL         time.Duration
	MinConcurrency      int
	MaxConcurrency      int
	MinBatchSize        int
	MaxBatchSize        int
	MinWorkerPool       int
	MaxWorkerPool       int
	MinMemoryMB         int
	MaxMemoryMB         int
	MinExecutionTimeout time.Duration
	MaxExecutionTimeout time.Duration
	MinRetryAttempts    int
	MaxRetryAttempts    int
	MinRetryDelay       time.Duration
	MaxRetryDelay       time.Duration
}

// DefaultKnobBounds returns the documented floors and ceilings.
func DefaultKnobBounds() KnobBounds {
	return KnobBounds{
		MinCacheTTL:         10 * time.Second,
		MaxCacheTTL:         time.Hour,
		MinConcurrency:      1,
		MaxConcurrency:      128,
		MinBatchSize:        1,
		MaxBatchSize:        500,
		MinWorkerPool:       1,
		MaxWorkerPool:       64,
		MinMemoryMB:         64,
		MaxMemoryMB:         8192,
		MinExecutionTimeout: time.Second,
		MaxExecutionTimeout: 10 * time.Minute,
		MinRetryAttempts:    0,
		MaxRetryAttempts:    10,
		MinRetryDelay:       100 * time.Millisecond,
		MaxRetryDelay:       time.Minute,
	}
}

// TuningPolicy holds the decision thresholds the auto-tuner and benchmark
// classifier work against. These are deployment tunables, not invariants:
// the 5% dead-band and the 70/90 score policy carry no validated production
// justification and should be adjusted per environment.
type TuningPolicy struct {
	KPIDeadBandPct     float64       `json:"kpi_dead_band_pct" mapstructure:"kpi_dead_band_pct"`
	LowScoreThreshold  float64       `json:"low_score_threshold" mapstructure:"low_score_threshold"`
	HighScoreThreshold float64       `json:"high_score_threshold" mapstructure:"high_score_threshold"`
	CriticalThreshold  float64       `json:"critical_threshold" mapstructure:"critical_threshold"`
	TargetThreshold    float64       `json:"target_threshold" mapstructure:"target_threshold"`
	SampleInterval     time.Duration `json:"sample_interval" mapstructure:"sample_interval"`
	HistoryLimit       int           `json:"history_limit" mapstructure:"history_limit"`
}

// DefaultTuningPolicy returns the stock thresholds.
func DefaultTuningPolicy() TuningPolicy {
	return TuningPolicy{
		KPIDeadBandPct:     5,
		LowScoreThreshold:  70,
		HighScoreThreshold: 90,
		CriticalThreshold:  40,
		TargetThreshold:    75,
		SampleInterval:     30 * time.Second,
		HistoryLimit:       1000,
	}
}

// OptimizationType classifies why an optimization record was written.
type OptimizationType string

const (
	OptimizationManual    OptimizationType = "manual"
	OptimizationAuto      OptimizationType = "auto"
	OptimizationEmergency OptimizationType = "emergency"
	OptimizationTargeted  OptimizationType = "targeted"
)

// OptimizationRecord is one append-only audit entry describing a config
// mutation and the scores observed at that moment.
type OptimizationRecord struct {
	Timestamp time.Time          `json:"timestamp"`
	Type      OptimizationType   `json:"type"`
	Target    string             `json:"target,omitempty"`
	Strategy  OptimizationLevel  `json:"strategy,omitempty"`
	Config    TuningConfig       `json:"config"`
	Scores    map[string]float64 `json:"scores,omitempty"`
	Overall   float64            `json:"overall,omitempty"`
}

// PerformanceMetrics is one sampled snapshot of the host's performance.
type PerformanceMetrics struct {
	ExecutionSpeed     float64   `json:"execution_speed"`
	Throughput         float64   `json:"throughput"`
	Latency            float64   `json:"latency"`
	ResourceEfficiency float64   `json:"resource_efficiency"`
	SampledAt          time.Time `json:"sampled_at"`
}
