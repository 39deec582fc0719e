package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/internal/observability"
	"github.com/primoscope/Spotify-echo-sub014/internal/storage"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// ResearchProvider is the narrow interface to the research collaborator.
type ResearchProvider interface {
	Research(ctx context.Context, query string) (answer string, citations []string, err error)
}

// TaskExecutor delegates one planned task to an external executor.
type TaskExecutor interface {
	Execute(ctx context.Context, task models.Task) error
}

// CheckRunner runs the collaborator-backed validation battery.
type CheckRunner interface {
	RunChecks(ctx context.Context) ([]models.CheckOutcome, error)
}

// Benchmarker measures the current value of each tracked KPI.
type Benchmarker interface {
	Measure(ctx context.Context) (map[string]float64, error)
}

// ConfigProvider supplies the current tuning config. Reads may be briefly
// stale; the auto-tuner is the only writer.
type ConfigProvider interface {
	Config() models.TuningConfig
}

// queryTemplates maps each workflow component to its research queries.
// %s is replaced with the workflow description.
var queryTemplates = map[models.WorkflowComponent][]string{
	models.ComponentFrontend: {
		"Latest React patterns for music streaming interfaces: %s",
		"Frontend performance improvements for audio player components: %s",
		"Accessibility requirements for media playback controls: %s",
	},
	models.ComponentBackend: {
		"Node service scaling strategies for music catalogs: %s",
		"API design improvements for streaming backends: %s",
		"Caching strategies for high-read music metadata: %s",
	},
	models.ComponentSpotify: {
		"Spotify Web API integration best practices: %s",
		"OAuth token lifecycle handling for Spotify apps: %s",
		"Rate limit strategies for Spotify API consumers: %s",
	},
	models.ComponentRecommendations: {
		"Collaborative filtering improvements for music recommendations: %s",
		"Cold start mitigation for recommendation engines: %s",
		"Evaluation metrics for recommendation quality: %s",
	},
	models.ComponentData: {
		"Listening history data pipeline optimizations: %s",
		"Schema design for user taste profiles: %s",
		"Data retention policies for streaming analytics: %s",
	},
}

// followupPrefix marks workflows synthesized by the pipeline itself.
// Follow-ups never spawn further follow-ups, which bounds queue growth.
const followupPrefix = "followup: "

// RunSummary reports the outcome of one Run invocation.
type RunSummary struct {
	Processed      int
	Completed      int
	Failed         int
	TasksGenerated int
}

// Orchestrator drives the five-phase pipeline over a FIFO workflow queue.
// Phases run strictly sequentially within a workflow, and workflows run one
// at a time per Run call; concurrency, when wanted, is across separate
// orchestrator instances. Priority on a workflow is metadata only.
type Orchestrator struct {
	classifier Classifier
	tasks      TaskService
	research   ResearchProvider
	executor   TaskExecutor
	checks     CheckRunner
	bench      Benchmarker
	results    storage.ResultsStore
	events     observability.EventLog
	config     ConfigProvider
	policy     models.TuningPolicy
	baselines  map[string]float64
	maximize   map[string]bool
}

// OrchestratorOptions bundles the orchestrator's dependencies.
type OrchestratorOptions struct {
	Classifier Classifier
	Tasks      TaskService
	Research   ResearchProvider
	Executor   TaskExecutor
	Checks     CheckRunner
	Bench      Benchmarker
	Results    storage.ResultsStore
	Events     observability.EventLog
	Config     ConfigProvider
	Policy     models.TuningPolicy
	Baselines  map[string]float64

	// Maximize marks KPIs where a higher value is better (throughput-like).
	// Unlisted metrics are treated as costs: an increase is a regression.
	Maximize map[string]bool
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.Events == nil {
		opts.Events = observability.NopEventLog()
	}
	return &Orchestrator{
		classifier: opts.Classifier,
		tasks:      opts.Tasks,
		research:   opts.Research,
		executor:   opts.Executor,
		checks:     opts.Checks,
		bench:      opts.Bench,
		results:    opts.Results,
		events:     opts.Events,
		config:     opts.Config,
		policy:     opts.Policy,
		baselines:  opts.Baselines,
		maximize:   opts.Maximize,
	}
}

// withTimeout wraps ctx with the currently configured execution timeout.
// Every collaborator call goes through this, so a hung call is handled like
// any other caught failure rather than stalling the pipeline.
func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := o.config.Config().ExecutionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// Run processes workflows FIFO until the queue is empty. Each workflow runs
// to completion or failure before the next is dequeued. Newly generated
// follow-up workflows are appended to the live queue.
func (o *Orchestrator) Run(ctx context.Context, queue []models.Workflow) (*RunSummary, error) {
	summary := &RunSummary{}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		wf := queue[0]
		queue = queue[1:]
		summary.Processed++

		generated, err := o.process(ctx, &wf)
		if err != nil {
			summary.Failed++
			o.compensate(&wf, err, &queue)
			continue
		}
		summary.Completed++
		summary.TasksGenerated += generated.tasks

		if !strings.HasPrefix(wf.Name, followupPrefix) {
			queue = append(queue, generated.workflows...)
		}
	}

	if err := o.tasks.Save(); err != nil {
		return summary, fmt.Errorf("saving task state after run: %w", err)
	}
	return summary, nil
}

// generatedWork is what a completed workflow contributed back to the system.
type generatedWork struct {
	tasks     int
	workflows []models.Workflow
}

// process drives one workflow through all five phases. Any error escaping a
// phase is wrapped as a PipelinePhaseError; per-call collaborator failures
// are caught inside the phases and never reach here.
func (o *Orchestrator) process(ctx context.Context, wf *models.Workflow) (*generatedWork, error) {
	o.events.Info(observability.EventWorkflowStarted, wf.Name, map[string]any{"component": string(wf.Component)})

	wf.State = models.WorkflowResearching
	research, err := o.researchPhase(ctx, wf)
	if err != nil {
		return nil, &PipelinePhaseError{Workflow: wf.Name, Phase: "research", Err: err}
	}
	wf.Research = research
	o.persistPhase(wf)

	wf.State = models.WorkflowImplementing
	impl, err := o.implementPhase(ctx, wf, research)
	if err != nil {
		return nil, &PipelinePhaseError{Workflow: wf.Name, Phase: "implement", Err: err}
	}
	wf.Implementation = impl
	o.persistPhase(wf)

	wf.State = models.WorkflowValidating
	validation, err := o.validatePhase(ctx, wf)
	if err != nil {
		return nil, &PipelinePhaseError{Workflow: wf.Name, Phase: "validate", Err: err}
	}
	wf.Validation = validation
	o.persistPhase(wf)

	wf.State = models.WorkflowBenchmarking
	benchmark, err := o.benchmarkPhase(ctx, wf)
	if err != nil {
		return nil, &PipelinePhaseError{Workflow: wf.Name, Phase: "benchmark", Err: err}
	}
	wf.Benchmark = benchmark
	o.persistPhase(wf)

	wf.State = models.WorkflowUpdatingRoadmap
	if err := o.updateRoadmap(wf); err != nil {
		return nil, &PipelinePhaseError{Workflow: wf.Name, Phase: "update-roadmap", Err: err}
	}

	generated, err := o.generateNextTasks(wf, research, benchmark)
	if err != nil {
		return nil, &PipelinePhaseError{Workflow: wf.Name, Phase: "generate-tasks", Err: err}
	}

	wf.State = models.WorkflowCompleted
	o.events.Info(observability.EventWorkflowCompleted, wf.Name, map[string]any{
		"tasks_generated": generated.tasks,
		"followups":       len(generated.workflows),
	})
	return generated, nil
}

// researchPhase issues one collaborator call per query template. A failed
// query is recorded under Errors and does not abort the phase; zero
// insights is a valid outcome.
func (o *Orchestrator) researchPhase(ctx context.Context, wf *models.Workflow) (*models.ResearchResult, error) {
	templates, ok := queryTemplates[wf.Component]
	if !ok {
		return nil, fmt.Errorf("no query templates for component %s", wf.Component)
	}

	result := &models.ResearchResult{Component: wf.Component}
	for _, tmpl := range templates {
		query := fmt.Sprintf(tmpl, wf.Description)

		callCtx, cancel := o.withTimeout(ctx)
		answer, citations, err := o.research.Research(callCtx, query)
		cancel()

		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("query %q: %v", query, err))
			o.events.Error(observability.EventCollaboratorFail, err.Error(), map[string]any{"query": query})
			continue
		}
		result.Insights = append(result.Insights, models.ResearchInsight{
			Query:     query,
			Answer:    answer,
			Citations: citations,
			Priority:  inferPriority(answer),
		})
	}
	result.CompletedAt = time.Now().UTC()
	return result, nil
}

// implementPhase plans one task per research recommendation and delegates
// each to the executor, capturing per-item success without aborting the
// batch.
func (o *Orchestrator) implementPhase(ctx context.Context, wf *models.Workflow, research *models.ResearchResult) (*models.ImplementationResult, error) {
	result := &models.ImplementationResult{}

	for _, insight := range research.Insights {
		for _, fields := range o.classifier.Translate(insight.Query, insight.Answer) {
			task, err := o.tasks.CreateTask(fields)
			if err != nil {
				// Bad classifier output is a planning defect, not a
				// collaborator failure.
				return nil, fmt.Errorf("planning task from insight: %w", err)
			}

			item := models.ImplementationItem{TaskID: task.ID, Title: task.Title}

			callCtx, cancel := o.withTimeout(ctx)
			execErr := o.executor.Execute(callCtx, *task)
			cancel()

			if execErr != nil {
				item.Error = execErr.Error()
				result.Failed++
				o.events.Error(observability.EventCollaboratorFail, execErr.Error(), map[string]any{"task": task.ID})
			} else {
				item.Success = true
				result.Succeeded++
			}
			result.Items = append(result.Items, item)
		}
	}
	result.CompletedAt = time.Now().UTC()
	return result, nil
}

func (o *Orchestrator) validatePhase(ctx context.Context, _ *models.Workflow) (*models.ValidationResult, error) {
	callCtx, cancel := o.withTimeout(ctx)
	defer cancel()

	checks, err := o.checks.RunChecks(callCtx)
	if err != nil {
		// The phase's sole purpose is this call, so its failure fails
		// the phase.
		return nil, err
	}

	result := &models.ValidationResult{Checks: checks, CompletedAt: time.Now().UTC()}
	passes := 0
	for _, c := range checks {
		if c.Passed {
			passes++
		}
	}
	if len(checks) > 0 {
		result.SuccessRate = float64(passes) / float64(len(checks))
	}
	return result, nil
}

// benchmarkPhase measures current KPI values and classifies each delta
// against the configured dead-band.
func (o *Orchestrator) benchmarkPhase(ctx context.Context, _ *models.Workflow) (*models.BenchmarkResult, error) {
	callCtx, cancel := o.withTimeout(ctx)
	defer cancel()

	current, err := o.bench.Measure(callCtx)
	if err != nil {
		return nil, err
	}

	result := &models.BenchmarkResult{CompletedAt: time.Now().UTC()}
	for metric, baseline := range o.baselines {
		value, ok := current[metric]
		if !ok || baseline == 0 {
			continue
		}
		delta := (value - baseline) / baseline * 100
		result.Deltas = append(result.Deltas, o.classifyDelta(metric, baseline, value, delta))
	}
	return result, nil
}

// classifyDelta applies the symmetric dead-band: improvements and
// regressions must clear the same percentage either side of the baseline.
// For cost metrics (the default) an increase is a regression; metrics in
// the maximize set have the opposite orientation.
func (o *Orchestrator) classifyDelta(metric string, baseline, current, delta float64) models.KPIDelta {
	d := models.KPIDelta{
		Metric:   metric,
		Baseline: baseline,
		Current:  current,
		DeltaPct: delta,
	}

	gain := -delta
	if o.maximize[metric] {
		gain = delta
	}

	band := o.policy.KPIDeadBandPct
	switch {
	case gain > band:
		d.Class = models.KPIImprovement
	case gain < -band:
		d.Class = models.KPIRegression
		d.Priority = models.PriorityMedium
		if gain < -3*band {
			d.Priority = models.PriorityHigh
		}
	default:
		d.Class = models.KPINeutral
	}
	return d
}

// persistPhase writes the workflow's artifacts into the roadmap document so
// completed phases survive a later failure. Errors here are logged, not
// propagated: losing a checkpoint must not fail a healthy phase.
func (o *Orchestrator) persistPhase(wf *models.Workflow) {
	doc, err := o.results.LoadRoadmap()
	if err != nil {
		o.events.Error(observability.EventCollaboratorFail, err.Error(), map[string]any{"op": "load roadmap"})
		return
	}
	o.mergeSections(doc, wf)
	if err := o.results.SaveRoadmap(doc); err != nil {
		o.events.Error(observability.EventCollaboratorFail, err.Error(), map[string]any{"op": "save roadmap"})
	}
}

// mergeSections overwrites this workflow's entries in each of the four
// roadmap sections. Overwriting (never appending) keeps re-runs idempotent.
func (o *Orchestrator) mergeSections(doc *storage.RoadmapDoc, wf *models.Workflow) {
	key := string(wf.Component)
	if wf.Research != nil {
		doc.Research[key] = *wf.Research
	}
	if wf.Implementation != nil {
		doc.Implementation[key] = *wf.Implementation
	}
	if wf.Validation != nil {
		doc.Validation[key] = *wf.Validation
	}
	if wf.Benchmark != nil {
		doc.Benchmarks[key] = *wf.Benchmark
	}
}

// updateRoadmap performs the terminal read-modify-write of the roadmap
// document, including the refreshed task summary.
func (o *Orchestrator) updateRoadmap(wf *models.Workflow) error {
	doc, err := o.results.LoadRoadmap()
	if err != nil {
		return err
	}
	o.mergeSections(doc, wf)
	doc.Summary = o.tasks.RoadmapSummary()
	if err := o.results.SaveRoadmap(doc); err != nil {
		return err
	}
	o.events.Info(observability.EventWorkflowPhaseDone, "roadmap updated", map[string]any{"workflow": wf.Name})
	return nil
}

// generateNextTasks creates one task per benchmark regression and one per
// high-priority research insight, then proposes follow-up workflows for the
// regressions. This is how the pipeline extends its own queue.
func (o *Orchestrator) generateNextTasks(wf *models.Workflow, research *models.ResearchResult, benchmark *models.BenchmarkResult) (*generatedWork, error) {
	generated := &generatedWork{}

	for _, delta := range benchmark.Deltas {
		if delta.Class != models.KPIRegression {
			continue
		}
		priority := delta.Priority
		if priority == "" {
			priority = models.PriorityMedium
		}
		task, err := o.tasks.CreateTask(TaskFields{
			Title:          fmt.Sprintf("Address %s regression (%.1f%%)", delta.Metric, delta.DeltaPct),
			Description:    fmt.Sprintf("Benchmark for %s moved from %.2f to %.2f during workflow %q.", delta.Metric, delta.Baseline, delta.Current, wf.Name),
			Type:           models.TypeOptimization,
			Area:           models.AreaBackend,
			Priority:       priority,
			EstimatedHours: 4,
			Tags:           []string{"performance", "regression"},
		})
		if err != nil {
			return nil, err
		}
		generated.tasks++
		o.events.Info(observability.EventTaskGenerated, task.Title, map[string]any{"task": task.ID, "source": "regression"})

		generated.workflows = append(generated.workflows, models.Workflow{
			Name:        followupPrefix + delta.Metric + " regression",
			Component:   wf.Component,
			Priority:    priority,
			Description: fmt.Sprintf("Recover %s regression introduced by %s", delta.Metric, wf.Name),
			State:       models.WorkflowQueued,
			QueuedAt:    time.Now().UTC(),
		})
	}

	for _, insight := range research.Insights {
		if insight.Priority != models.PriorityCritical && insight.Priority != models.PriorityHigh {
			continue
		}
		fields := o.classifier.Translate(insight.Query, insight.Answer)
		if len(fields) == 0 {
			continue
		}
		// One task per insight: the first classified sentence carries it.
		f := fields[0]
		f.Priority = insight.Priority
		task, err := o.tasks.CreateTask(f)
		if err != nil {
			return nil, err
		}
		generated.tasks++
		o.events.Info(observability.EventTaskGenerated, task.Title, map[string]any{"task": task.ID, "source": "research"})
	}

	return generated, nil
}

// compensate handles a failed workflow: mark it failed, log a structured
// error record, create the recovery task, and requeue a recovery workflow.
// Recovery workflows that themselves fail are not requeued again.
func (o *Orchestrator) compensate(wf *models.Workflow, cause error, queue *[]models.Workflow) {
	wf.State = models.WorkflowFailed

	var phaseErr *PipelinePhaseError
	phase := "unknown"
	if errors.As(cause, &phaseErr) {
		phase = phaseErr.Phase
	}
	o.events.Error(observability.EventWorkflowFailed, cause.Error(), map[string]any{
		"workflow": wf.Name,
		"phase":    phase,
	})

	task, err := o.tasks.CreateTask(TaskFields{
		Title:          fmt.Sprintf("Recover failed workflow: %s", wf.Name),
		Description:    fmt.Sprintf("Workflow %q failed in phase %s: %v", wf.Name, phase, cause),
		Type:           models.TypeBugfix,
		Area:           models.AreaBackend,
		Priority:       models.PriorityHigh,
		EstimatedHours: 3,
		Tags:           []string{"recovery"},
	})
	if err != nil {
		o.events.Error(observability.EventWorkflowFailed, fmt.Sprintf("creating recovery task: %v", err), nil)
		return
	}
	o.events.Info(observability.EventTaskGenerated, task.Title, map[string]any{"task": task.ID, "source": "recovery"})

	if !strings.HasPrefix(wf.Name, followupPrefix) {
		*queue = append(*queue, models.Workflow{
			Name:        followupPrefix + "recover " + wf.Name,
			Component:   wf.Component,
			Priority:    models.PriorityHigh,
			Description: fmt.Sprintf("Compensating run for failed workflow %q (phase %s)", wf.Name, phase),
			State:       models.WorkflowQueued,
			QueuedAt:    time.Now().UTC(),
		})
	}
}
