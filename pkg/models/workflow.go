package models

import "time"

// WorkflowComponent selects the research-query bucket a workflow draws from.
type WorkflowComponent string

const (
	ComponentFrontend        WorkflowComponent = "frontend"
	ComponentBackend         WorkflowComponent = "backend"
	ComponentSpotify         WorkflowComponent = "spotify"
	ComponentRecommendations WorkflowComponent = "recommendations"
	ComponentData            WorkflowComponent = "data"
)

// ValidWorkflowComponents is the set of allowed WorkflowComponent values.
var ValidWorkflowComponents = map[WorkflowComponent]bool{
	ComponentFrontend:        true,
	ComponentBackend:         true,
	ComponentSpotify:         true,
	ComponentRecommendations: true,
	ComponentData:            true,
}

// WorkflowState tracks a workflow through the five-phase pipeline.
type WorkflowState string

const (
	WorkflowQueued          WorkflowState = "queued"
	WorkflowResearching     WorkflowState = "researching"
	WorkflowImplementing    WorkflowState = "implementing"
	WorkflowValidating      WorkflowState = "validating"
	WorkflowBenchmarking    WorkflowState = "benchmarking"
	WorkflowUpdatingRoadmap WorkflowState = "roadmap-updating"
	WorkflowCompleted       WorkflowState = "completed"
	WorkflowFailed          WorkflowState = "failed"
)

// Workflow describes one pipeline run: research a component, implement the
// findings, validate, benchmark, and fold results into the roadmap. Phase
// artifacts are attached as the run progresses and persisted after each
// phase completes, so a later failure never loses earlier output.
type Workflow struct {
	Name            string            `json:"name"`
	Component       WorkflowComponent `json:"component"`
	Priority        TaskPriority      `json:"priority"`
	Description     string            `json:"description,omitempty"`
	EstimatedEffort float64           `json:"estimated_effort,omitempty"`

	State    WorkflowState `json:"state"`
	QueuedAt time.Time     `json:"queued_at"`

	Research       *ResearchResult       `json:"research,omitempty"`
	Implementation *ImplementationResult `json:"implementation,omitempty"`
	Validation     *ValidationResult     `json:"validation,omitempty"`
	Benchmark      *BenchmarkResult      `json:"benchmark,omitempty"`
}

// ResearchInsight is one answer returned by the research collaborator.
type ResearchInsight struct {
	Query     string       `json:"query"`
	Answer    string       `json:"answer"`
	Citations []string     `json:"citations,omitempty"`
	Priority  TaskPriority `json:"priority"`
}

// ResearchResult is the artifact of the research phase. Failed queries are
// recorded under Errors and do not fail the phase; zero insights is a valid
// outcome.
type ResearchResult struct {
	Component   WorkflowComponent `json:"component"`
	Insights    []ResearchInsight `json:"insights"`
	Errors      []string          `json:"errors,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// ImplementationItem is one planned change and its execution outcome.
type ImplementationItem struct {
	TaskID  string `json:"task_id"`
	Title   string `json:"title"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ImplementationResult is the artifact of the implement phase.
type ImplementationResult struct {
	Items       []ImplementationItem `json:"items"`
	Succeeded   int                  `json:"succeeded"`
	Failed      int                  `json:"failed"`
	CompletedAt time.Time            `json:"completed_at"`
}

// CheckOutcome is a single validation check result.
type CheckOutcome struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// ValidationResult is the artifact of the validate phase.
type ValidationResult struct {
	Checks      []CheckOutcome `json:"checks"`
	SuccessRate float64        `json:"success_rate"`
	CompletedAt time.Time      `json:"completed_at"`
}

// KPIClass labels a benchmark delta relative to the dead-band.
type KPIClass string

const (
	KPIImprovement KPIClass = "improvement"
	KPIRegression  KPIClass = "regression"
	KPINeutral     KPIClass = "neutral"
)

// KPIDelta is one tracked metric's movement against its baseline.
type KPIDelta struct {
	Metric   string       `json:"metric"`
	Baseline float64      `json:"baseline"`
	Current  float64      `json:"current"`
	DeltaPct float64      `json:"delta_pct"`
	Class    KPIClass     `json:"class"`
	Priority TaskPriority `json:"priority,omitempty"`
}

// BenchmarkResult is the artifact of the benchmark phase.
type BenchmarkResult struct {
	Deltas      []KPIDelta `json:"deltas"`
	CompletedAt time.Time  `json:"completed_at"`
}
