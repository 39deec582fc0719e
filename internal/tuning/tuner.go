// Package tuning implements the performance auto-tuner: a periodic control
// loop that samples metrics, scores them against a baseline, and adjusts the
// shared TuningConfig through a single serialized mutation entry point.
package tuning

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/internal/observability"
	"github.com/primoscope/Spotify-echo-sub014/internal/storage"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// Tuner owns the shared TuningConfig. All mutation flows through mutate(),
// guarded by one mutex, so a strategy switch can never interleave with a
// targeted single-knob adjustment. Reads return copies and tolerate brief
// staleness on the orchestrator side.
type Tuner struct {
	mu       sync.Mutex
	config   models.TuningConfig
	baseline models.PerformanceMetrics

	bounds  models.KnobBounds
	policy  models.TuningPolicy
	presets map[models.OptimizationLevel]models.TuningConfig
	source  MetricsSource
	history storage.HistoryStore
	events  observability.EventLog
}

// Options configures a Tuner.
type Options struct {
	Initial  models.TuningConfig
	Baseline models.PerformanceMetrics
	Bounds   models.KnobBounds
	Policy   models.TuningPolicy
	Source   MetricsSource
	History  storage.HistoryStore
	Events   observability.EventLog
}

// NewTuner creates a Tuner. The initial config is clamped before use.
func NewTuner(opts Options) *Tuner {
	if opts.Events == nil {
		opts.Events = observability.NopEventLog()
	}
	return &Tuner{
		config:   ClampConfig(opts.Initial, opts.Bounds),
		baseline: opts.Baseline,
		bounds:   opts.Bounds,
		policy:   opts.Policy,
		presets:  Presets(),
		source:   opts.Source,
		history:  opts.History,
		events:   opts.Events,
	}
}

// Config returns a snapshot of the current tuning config.
func (t *Tuner) Config() models.TuningConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.config
}

// History returns the optimization audit trail.
func (t *Tuner) History() []models.OptimizationRecord {
	if t.history == nil {
		return nil
	}
	return t.history.All()
}

// mutate is the single mutation entry point. next is clamped, applied
// atomically, and recorded in the audit trail.
func (t *Tuner) mutate(next models.TuningConfig, record models.OptimizationRecord) error {
	t.mu.Lock()
	t.config = ClampConfig(next, t.bounds)
	record.Config = t.config
	record.Timestamp = time.Now().UTC()
	t.mu.Unlock()

	if t.history != nil {
		if err := t.history.Append(record); err != nil {
			return fmt.Errorf("recording optimization: %w", err)
		}
		if err := t.history.Save(); err != nil {
			return fmt.Errorf("persisting optimization history: %w", err)
		}
	}
	return nil
}

// ApplyStrategy atomically replaces the full knob set with the named preset
// and appends an OptimizationRecord.
func (t *Tuner) ApplyStrategy(level models.OptimizationLevel, optType models.OptimizationType, scores map[string]float64, overall float64) error {
	preset, ok := t.presets[level]
	if !ok {
		return fmt.Errorf("unknown optimization strategy: %s", level)
	}
	if err := t.mutate(preset, models.OptimizationRecord{
		Type:     optType,
		Strategy: level,
		Scores:   scores,
		Overall:  overall,
	}); err != nil {
		return err
	}
	t.events.Info(observability.EventTunerApplied, fmt.Sprintf("applied %s preset", level), map[string]any{
		"strategy": string(level),
		"type":     string(optType),
		"overall":  overall,
	})
	return nil
}

// adjustForMetric applies the small knob tweaks associated with one
// under-target metric, then records the targeted optimization.
func (t *Tuner) adjustForMetric(metric string, scores map[string]float64, overall float64) error {
	t.mu.Lock()
	next := t.config
	t.mu.Unlock()

	switch metric {
	case MetricLatency:
		next.CacheTTL /= 2
		next.MaxConcurrentWorkflows += 2
	case MetricThroughput:
		next.BatchSize = next.BatchSize * 3 / 2
		next.WorkerPoolSize += 4
	case MetricExecutionSpeed:
		next.MaxConcurrentWorkflows += 2
		next.ExecutionTimeout = next.ExecutionTimeout * 8 / 10
	case MetricResourceEfficiency:
		next.WorkerPoolSize -= 4
		next.BatchSize /= 2
		next.CacheTTL /= 2
	default:
		return fmt.Errorf("unknown metric: %s", metric)
	}

	if err := t.mutate(next, models.OptimizationRecord{
		Type:    models.OptimizationTargeted,
		Target:  metric,
		Scores:  scores,
		Overall: overall,
	}); err != nil {
		return err
	}
	t.events.Info(observability.EventTunerAdjusted, fmt.Sprintf("targeted adjustment for %s", metric), map[string]any{
		"metric": metric,
		"score":  scores[metric],
	})
	return nil
}

// CheckThresholds inspects per-metric scores. Any metric below the critical
// threshold forces the aggressive preset immediately (emergency, reported as
// true); metrics merely below target get a targeted adjustment each.
func (t *Tuner) CheckThresholds(scores map[string]float64, overall float64) (bool, error) {
	for metric, score := range scores {
		if score < t.policy.CriticalThreshold {
			t.events.Info(observability.EventTunerApplied, fmt.Sprintf("emergency optimization: %s at %.1f", metric, score), map[string]any{
				"metric": metric,
				"score":  score,
			})
			return true, t.ApplyStrategy(models.LevelAggressive, models.OptimizationEmergency, scores, overall)
		}
	}
	for metric, score := range scores {
		if score < t.policy.TargetThreshold {
			if err := t.adjustForMetric(metric, scores, overall); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

// AutoTune performs one control-loop tick: sample, score, threshold checks,
// then the two-sided overall policy (below LowScoreThreshold apply balanced,
// above HighScoreThreshold apply aggressive, otherwise leave the config
// alone). The first tick only establishes the baseline.
func (t *Tuner) AutoTune(ctx context.Context) error {
	metrics, err := t.source.Sample(ctx)
	if err != nil {
		return fmt.Errorf("sampling metrics: %w", err)
	}

	t.mu.Lock()
	if t.baseline == (models.PerformanceMetrics{}) {
		metrics.SampledAt = time.Time{}
		t.baseline = metrics
		t.mu.Unlock()
		return nil
	}
	baseline := t.baseline
	t.mu.Unlock()

	scores, overall := Score(metrics, baseline)

	emergency, err := t.CheckThresholds(scores, overall)
	if err != nil {
		return err
	}
	if emergency {
		return nil
	}

	return t.ApplyOverallPolicy(scores, overall)
}

// ApplyOverallPolicy applies the two-sided score policy. Exposed separately
// so the policy can be exercised with known scores.
func (t *Tuner) ApplyOverallPolicy(scores map[string]float64, overall float64) error {
	switch {
	case overall < t.policy.LowScoreThreshold:
		return t.ApplyStrategy(models.LevelBalanced, models.OptimizationAuto, scores, overall)
	case overall > t.policy.HighScoreThreshold:
		return t.ApplyStrategy(models.LevelAggressive, models.OptimizationAuto, scores, overall)
	default:
		return nil
	}
}

// Run drives the auto-tune loop on a ticker until ctx is cancelled. Errors
// are logged and the loop continues on its next tick: a stalled tuner must
// never crash the host process, and the loop never blocks workflow phases.
func (t *Tuner) Run(ctx context.Context) {
	interval := t.policy.SampleInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.AutoTune(ctx); err != nil {
				t.events.Error(observability.EventTunerError, err.Error(), nil)
			}
		}
	}
}
