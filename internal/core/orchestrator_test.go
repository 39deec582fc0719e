package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/internal/storage"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// fakeResearch answers every query with a fixed body, failing queries whose
// text contains a trigger substring.
type fakeResearch struct {
	answer      string
	failMatch   string
	queriesSeen []string
}

func (f *fakeResearch) Research(_ context.Context, query string) (string, []string, error) {
	f.queriesSeen = append(f.queriesSeen, query)
	if f.failMatch != "" && strings.Contains(query, f.failMatch) {
		return "", nil, &CollaboratorError{Collaborator: "research", Op: "query", Err: errors.New("boom")}
	}
	return f.answer, []string{"https://example.com/ref"}, nil
}

type fakeExecutor struct {
	failTitles string
	executed   []string
}

func (f *fakeExecutor) Execute(_ context.Context, task models.Task) error {
	f.executed = append(f.executed, task.ID)
	if f.failTitles != "" && strings.Contains(task.Title, f.failTitles) {
		return &CollaboratorError{Collaborator: "container", Op: "task execution", Err: errors.New("exit 1")}
	}
	return nil
}

type fakeChecks struct {
	outcomes []models.CheckOutcome
	err      error
}

func (f *fakeChecks) RunChecks(context.Context) ([]models.CheckOutcome, error) {
	return f.outcomes, f.err
}

type fakeBench struct {
	values map[string]float64
	err    error
}

func (f *fakeBench) Measure(context.Context) (map[string]float64, error) {
	return f.values, f.err
}

type fixedConfig struct{ timeout time.Duration }

func (c fixedConfig) Config() models.TuningConfig {
	return models.TuningConfig{ExecutionTimeout: c.timeout}
}

type orchFixture struct {
	orch     *Orchestrator
	tasks    TaskService
	results  storage.ResultsStore
	research *fakeResearch
	executor *fakeExecutor
	checks   *fakeChecks
	bench    *fakeBench
}

func newOrchFixture(t *testing.T) *orchFixture {
	t.Helper()
	dir := t.TempDir()

	tasks := NewTaskService(storage.NewTaskStore(dir), storage.NewSprintStore(dir), DefaultMilestoneThresholds())
	results := storage.NewResultsStore(dir)

	f := &orchFixture{
		tasks:   tasks,
		results: results,
		research: &fakeResearch{
			answer: "We should implement a better queue component for playback.",
		},
		executor: &fakeExecutor{},
		checks: &fakeChecks{outcomes: []models.CheckOutcome{
			{Name: "health endpoint", Passed: true},
			{Name: "data flow", Passed: true},
		}},
		bench: &fakeBench{values: map[string]float64{"cpu_pct": 40}},
	}
	f.orch = NewOrchestrator(OrchestratorOptions{
		Classifier: NewClassifier(),
		Tasks:      tasks,
		Research:   f.research,
		Executor:   f.executor,
		Checks:     f.checks,
		Bench:      f.bench,
		Results:    results,
		Config:     fixedConfig{timeout: 5 * time.Second},
		Policy:     models.DefaultTuningPolicy(),
		Baselines:  map[string]float64{"cpu_pct": 40},
	})
	return f
}

func frontendWorkflow() models.Workflow {
	return models.Workflow{
		Name:        "frontend improvement cycle",
		Component:   models.ComponentFrontend,
		Priority:    models.PriorityMedium,
		Description: "player polish",
		State:       models.WorkflowQueued,
		QueuedAt:    time.Now().UTC(),
	}
}

func TestRunCompletesWorkflow(t *testing.T) {
	f := newOrchFixture(t)

	summary, err := f.orch.Run(context.Background(), []models.Workflow{frontendWorkflow()})
	if err != nil {
		t.Fatalf("running: %v", err)
	}
	if summary.Completed != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 1 completed, 0 failed", summary)
	}
	if len(f.research.queriesSeen) != 3 {
		t.Errorf("issued %d research queries, want 3", len(f.research.queriesSeen))
	}
	if len(f.executor.executed) == 0 {
		t.Error("executor was never invoked")
	}

	doc, err := f.results.LoadRoadmap()
	if err != nil {
		t.Fatalf("loading roadmap: %v", err)
	}
	if _, ok := doc.Research["frontend"]; !ok {
		t.Error("roadmap missing frontend research section")
	}
	if _, ok := doc.Benchmarks["frontend"]; !ok {
		t.Error("roadmap missing frontend benchmarks section")
	}
	if doc.Summary == nil {
		t.Error("roadmap summary not attached")
	}
}

func TestRunCapturesPerQueryFailures(t *testing.T) {
	f := newOrchFixture(t)
	f.research.failMatch = "Accessibility"

	summary, err := f.orch.Run(context.Background(), []models.Workflow{frontendWorkflow()})
	if err != nil {
		t.Fatalf("running: %v", err)
	}
	if summary.Failed != 0 {
		t.Errorf("a failed query must not fail the workflow: %+v", summary)
	}

	doc, err := f.results.LoadRoadmap()
	if err != nil {
		t.Fatalf("loading roadmap: %v", err)
	}
	research := doc.Research["frontend"]
	if len(research.Errors) != 1 {
		t.Errorf("got %d recorded errors, want 1", len(research.Errors))
	}
	if len(research.Insights) != 2 {
		t.Errorf("got %d insights, want 2", len(research.Insights))
	}
}

func TestRunFailedPhaseCreatesRecovery(t *testing.T) {
	f := newOrchFixture(t)
	f.checks.err = errors.New("validation runner crashed")

	summary, err := f.orch.Run(context.Background(), []models.Workflow{frontendWorkflow()})
	if err != nil {
		t.Fatalf("running: %v", err)
	}
	// The original workflow fails, its recovery workflow is requeued, and
	// the recovery fails too but is not requeued again.
	if summary.Processed != 2 {
		t.Errorf("Processed = %d, want 2", summary.Processed)
	}
	if summary.Failed != 2 {
		t.Errorf("Failed = %d, want 2", summary.Failed)
	}

	recovery := f.tasks.QueryTasks(storage.TaskFilter{
		Type:     []models.TaskType{models.TypeBugfix},
		Priority: []models.TaskPriority{models.PriorityHigh},
		Tags:     []string{"recovery"},
	})
	if len(recovery) != 2 {
		t.Fatalf("got %d recovery tasks, want 2", len(recovery))
	}
	if !strings.Contains(recovery[0].Description, "validate") {
		t.Errorf("recovery description does not name the phase: %q", recovery[0].Description)
	}

	// Partial artifacts from the completed phases must still be persisted.
	doc, err := f.results.LoadRoadmap()
	if err != nil {
		t.Fatalf("loading roadmap: %v", err)
	}
	if _, ok := doc.Research["frontend"]; !ok {
		t.Error("research artifact lost on later-phase failure")
	}
}

func TestRunRegressionGeneratesFollowup(t *testing.T) {
	f := newOrchFixture(t)
	// cpu is a cost metric, so 50% above baseline is a clear regression.
	f.bench.values = map[string]float64{"cpu_pct": 60}
	f.orch.baselines = map[string]float64{"cpu_pct": 40}

	summary, err := f.orch.Run(context.Background(), []models.Workflow{frontendWorkflow()})
	if err != nil {
		t.Fatalf("running: %v", err)
	}
	// Original workflow plus its regression follow-up; the follow-up sees
	// the same regression but must not extend the queue again.
	if summary.Processed != 2 {
		t.Errorf("Processed = %d, want 2", summary.Processed)
	}

	regressions := f.tasks.QueryTasks(storage.TaskFilter{Tags: []string{"regression"}})
	if len(regressions) != 2 {
		t.Errorf("got %d regression tasks, want 2 (one per processed workflow)", len(regressions))
	}
	for _, task := range regressions {
		if task.Type != models.TypeOptimization {
			t.Errorf("regression task type = %s, want optimization", task.Type)
		}
	}
}

func TestClassifyDeltaDeadBand(t *testing.T) {
	f := newOrchFixture(t)

	// cpu_pct is a cost metric: increases are regressions.
	tests := []struct {
		name     string
		delta    float64
		class    models.KPIClass
		priority models.TaskPriority
	}{
		{"inside band positive", 4.9, models.KPINeutral, ""},
		{"inside band negative", -4.9, models.KPINeutral, ""},
		{"improvement", -5.1, models.KPIImprovement, ""},
		{"regression", 5.1, models.KPIRegression, models.PriorityMedium},
		{"severe regression", 20, models.KPIRegression, models.PriorityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.orch.classifyDelta("cpu_pct", 100, 100+tt.delta, tt.delta)
			if d.Class != tt.class {
				t.Errorf("class = %s, want %s", d.Class, tt.class)
			}
			if d.Priority != tt.priority {
				t.Errorf("priority = %q, want %q", d.Priority, tt.priority)
			}
		})
	}

	// Throughput-like metrics flip the orientation.
	f.orch.maximize = map[string]bool{"req_per_sec": true}
	d := f.orch.classifyDelta("req_per_sec", 100, 110, 10)
	if d.Class != models.KPIImprovement {
		t.Errorf("maximize metric gain classified as %s, want improvement", d.Class)
	}
	d = f.orch.classifyDelta("req_per_sec", 100, 90, -10)
	if d.Class != models.KPIRegression {
		t.Errorf("maximize metric loss classified as %s, want regression", d.Class)
	}
}

func TestUpdateRoadmapIsIdempotent(t *testing.T) {
	f := newOrchFixture(t)

	for i := 0; i < 2; i++ {
		if _, err := f.orch.Run(context.Background(), []models.Workflow{frontendWorkflow()}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	doc, err := f.results.LoadRoadmap()
	if err != nil {
		t.Fatalf("loading roadmap: %v", err)
	}
	if len(doc.Research) != 1 {
		t.Errorf("got %d research sections, want 1 (overwrite, not append)", len(doc.Research))
	}
	if len(doc.Benchmarks) != 1 {
		t.Errorf("got %d benchmark sections, want 1", len(doc.Benchmarks))
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	f := newOrchFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.orch.Run(ctx, []models.Workflow{frontendWorkflow()}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestImplementPhaseRecordsExecutorFailures(t *testing.T) {
	f := newOrchFixture(t)
	f.executor.failTitles = "queue component"

	if _, err := f.orch.Run(context.Background(), []models.Workflow{frontendWorkflow()}); err != nil {
		t.Fatalf("running: %v", err)
	}

	doc, err := f.results.LoadRoadmap()
	if err != nil {
		t.Fatalf("loading roadmap: %v", err)
	}
	impl := doc.Implementation["frontend"]
	if impl.Failed == 0 {
		t.Error("expected at least one failed implementation item")
	}
	if impl.Succeeded+impl.Failed != len(impl.Items) {
		t.Errorf("items inconsistent: %d + %d != %d", impl.Succeeded, impl.Failed, len(impl.Items))
	}
	for _, item := range impl.Items {
		if !item.Success && item.Error == "" {
			t.Errorf("failed item %s has no error detail", item.TaskID)
		}
	}
}

func TestGenerateNextTasksFromHighPriorityInsights(t *testing.T) {
	f := newOrchFixture(t)
	f.research.answer = "Fix the critical security hole in the token exchange handler."

	if _, err := f.orch.Run(context.Background(), []models.Workflow{frontendWorkflow()}); err != nil {
		t.Fatalf("running: %v", err)
	}

	critical := f.tasks.QueryTasks(storage.TaskFilter{Priority: []models.TaskPriority{models.PriorityCritical}})
	if len(critical) == 0 {
		t.Error("expected follow-up tasks from critical research insights")
	}
}

func TestRunReportsPersistedTaskCount(t *testing.T) {
	f := newOrchFixture(t)

	summary, err := f.orch.Run(context.Background(), []models.Workflow{frontendWorkflow()})
	if err != nil {
		t.Fatalf("running: %v", err)
	}

	all := f.tasks.QueryTasks(storage.TaskFilter{})
	if len(all) == 0 {
		t.Fatal("no tasks created")
	}
	if summary.TasksGenerated > len(all) {
		t.Errorf("summary claims %d generated tasks but store has %d", summary.TasksGenerated, len(all))
	}
}
