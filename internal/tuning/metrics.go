package tuning

import (
	"context"
	"runtime"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// MetricsSource supplies performance snapshots to the tuner. The production
// implementation samples the host; tests inject a deterministic sequence.
// Randomness never lives in the tuner itself.
type MetricsSource interface {
	Sample(ctx context.Context) (models.PerformanceMetrics, error)
}

// hostMetricsSource derives metrics from Go runtime telemetry. The numbers
// are coarse proxies (GC pause for latency, heap headroom for resource
// efficiency) but they are real measurements, not simulations.
type hostMetricsSource struct {
	memoryLimitMB int
}

// NewHostMetricsSource creates the production MetricsSource. memoryLimitMB
// bounds the resource-efficiency calculation.
func NewHostMetricsSource(memoryLimitMB int) MetricsSource {
	if memoryLimitMB <= 0 {
		memoryLimitMB = 1024
	}
	return &hostMetricsSource{memoryLimitMB: memoryLimitMB}
}

func (h *hostMetricsSource) Sample(_ context.Context) (models.PerformanceMetrics, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	heapMB := float64(ms.HeapAlloc) / (1 << 20)
	efficiency := 100 * (1 - heapMB/float64(h.memoryLimitMB))
	if efficiency < 0 {
		efficiency = 0
	}

	// Recent GC pause in milliseconds stands in for latency.
	pauseMs := float64(ms.PauseNs[(ms.NumGC+255)%256]) / 1e6
	if pauseMs == 0 {
		pauseMs = 0.1
	}

	goroutines := float64(runtime.NumGoroutine())

	return models.PerformanceMetrics{
		ExecutionSpeed:     1000 / pauseMs,
		Throughput:         goroutines * 10,
		Latency:            pauseMs,
		ResourceEfficiency: efficiency,
		SampledAt:          time.Now().UTC(),
	}, nil
}

// metricDirection says whether a higher value is better (maximize) or worse
// (minimize) for scoring.
type metricDirection int

const (
	maximize metricDirection = iota
	minimize
)

// metricWeight pairs a metric's scoring direction with its share of the
// overall score. Weights sum to 1.0.
type metricWeight struct {
	direction metricDirection
	weight    float64
}

// Metric names used in scores, thresholds, and optimization records.
const (
	MetricExecutionSpeed     = "executionSpeed"
	MetricThroughput         = "throughput"
	MetricLatency            = "latency"
	MetricResourceEfficiency = "resourceEfficiency"
)

var metricWeights = map[string]metricWeight{
	MetricExecutionSpeed:     {maximize, 0.30},
	MetricThroughput:         {maximize, 0.25},
	MetricLatency:            {minimize, 0.25},
	MetricResourceEfficiency: {maximize, 0.20},
}

// Score normalizes each metric to 0-100 against its baseline and direction
// and combines them into a weighted overall score. For maximize metrics the
// score is min(100, current/baseline*100); for minimize metrics it is
// min(100, baseline/current*100).
func Score(metrics, baseline models.PerformanceMetrics) (map[string]float64, float64) {
	values := map[string]float64{
		MetricExecutionSpeed:     metrics.ExecutionSpeed,
		MetricThroughput:         metrics.Throughput,
		MetricLatency:            metrics.Latency,
		MetricResourceEfficiency: metrics.ResourceEfficiency,
	}
	baselines := map[string]float64{
		MetricExecutionSpeed:     baseline.ExecutionSpeed,
		MetricThroughput:         baseline.Throughput,
		MetricLatency:            baseline.Latency,
		MetricResourceEfficiency: baseline.ResourceEfficiency,
	}

	scores := make(map[string]float64, len(values))
	overall := 0.0
	for name, mw := range metricWeights {
		scores[name] = normalize(values[name], baselines[name], mw.direction)
		overall += scores[name] * mw.weight
	}
	return scores, overall
}

func normalize(current, baseline float64, dir metricDirection) float64 {
	if baseline <= 0 || current <= 0 {
		return 0
	}
	var score float64
	if dir == maximize {
		score = current / baseline * 100
	} else {
		score = baseline / current * 100
	}
	if score > 100 {
		score = 100
	}
	return score
}
