package core

import (
	"errors"
	"testing"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/internal/storage"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

func newTestService(t *testing.T) TaskService {
	t.Helper()
	dir := t.TempDir()
	tasks := storage.NewTaskStore(dir)
	sprints := storage.NewSprintStore(dir)
	return NewTaskService(tasks, sprints, DefaultMilestoneThresholds())
}

func mustCreateTask(t *testing.T, svc TaskService, fields TaskFields) *models.Task {
	t.Helper()
	task, err := svc.CreateTask(fields)
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}
	return task
}

func validFields() TaskFields {
	return TaskFields{
		Title:          "Implement queue persistence",
		Type:           models.TypeFeature,
		Area:           models.AreaBackend,
		Priority:       models.PriorityMedium,
		EstimatedHours: 8,
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	svc := newTestService(t)
	task := mustCreateTask(t, svc, validFields())

	if task.ID == "" {
		t.Error("expected generated ID")
	}
	if task.Status != models.StatusBacklog {
		t.Errorf("Status = %s, want backlog", task.Status)
	}
	if task.Progress != 0 {
		t.Errorf("Progress = %d, want 0", task.Progress)
	}
	if task.TimeRemaining != task.EstimatedHours {
		t.Errorf("TimeRemaining = %g, want %g", task.TimeRemaining, task.EstimatedHours)
	}
	if task.Created.IsZero() || task.Updated.IsZero() {
		t.Error("expected Created and Updated to be set")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*TaskFields)
	}{
		{"empty title", func(f *TaskFields) { f.Title = "  " }},
		{"bad type", func(f *TaskFields) { f.Type = "epic" }},
		{"bad area", func(f *TaskFields) { f.Area = "mobile" }},
		{"bad priority", func(f *TaskFields) { f.Priority = "urgent" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(&fields)

			_, err := svc.CreateTask(fields)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	svc := newTestService(t)
	task := mustCreateTask(t, svc, validFields())

	updated, err := svc.UpdateStatus(task.ID, models.StatusInProgress, nil)
	if err != nil {
		t.Fatalf("moving to in-progress: %v", err)
	}
	if updated.StartedAt == nil {
		t.Fatal("expected StartedAt to be set")
	}
	firstStart := *updated.StartedAt

	// A second pass through in-progress must not reset StartedAt.
	if _, err := svc.UpdateStatus(task.ID, models.StatusReview, nil); err != nil {
		t.Fatalf("moving to review: %v", err)
	}
	updated, err = svc.UpdateStatus(task.ID, models.StatusInProgress, nil)
	if err != nil {
		t.Fatalf("moving back to in-progress: %v", err)
	}
	if !updated.StartedAt.Equal(firstStart) {
		t.Errorf("StartedAt changed on re-entry: %v != %v", updated.StartedAt, firstStart)
	}

	done, err := svc.UpdateStatus(task.ID, models.StatusDone, nil)
	if err != nil {
		t.Fatalf("moving to done: %v", err)
	}
	if done.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
	if done.Progress != 100 {
		t.Errorf("Progress = %d, want 100", done.Progress)
	}
	if done.TimeRemaining != 0 {
		t.Errorf("TimeRemaining = %g, want 0", done.TimeRemaining)
	}
}

func TestUpdateStatusPatch(t *testing.T) {
	svc := newTestService(t)
	task := mustCreateTask(t, svc, validFields())

	updated, err := svc.UpdateStatus(task.ID, models.StatusPlanned, &StatusPatch{
		Title:    "Implement durable queue persistence",
		Priority: models.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("updating with patch: %v", err)
	}
	if updated.Title != "Implement durable queue persistence" {
		t.Errorf("Title = %q", updated.Title)
	}
	if updated.Priority != models.PriorityHigh {
		t.Errorf("Priority = %s, want high", updated.Priority)
	}

	if _, err := svc.UpdateStatus(task.ID, models.StatusPlanned, &StatusPatch{Priority: "wrong"}); err == nil {
		t.Error("expected error for invalid patch priority")
	}
}

func TestUpdateStatusUnknownTask(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateStatus("AD-0-missing", models.StatusDone, nil)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLogTime(t *testing.T) {
	svc := newTestService(t)
	task := mustCreateTask(t, svc, validFields())

	updated, err := svc.LogTime(task.ID, 2, "wiring the store")
	if err != nil {
		t.Fatalf("logging time: %v", err)
	}
	if updated.TimeSpent != 2 {
		t.Errorf("TimeSpent = %g, want 2", updated.TimeSpent)
	}
	if updated.TimeRemaining != 6 {
		t.Errorf("TimeRemaining = %g, want 6", updated.TimeRemaining)
	}
	if updated.Progress != 25 {
		t.Errorf("Progress = %d, want 25", updated.Progress)
	}
	if len(updated.TimeLog) != 1 || updated.TimeLog[0].Note != "wiring the store" {
		t.Errorf("TimeLog = %+v", updated.TimeLog)
	}
}

func TestLogTimeOverrun(t *testing.T) {
	svc := newTestService(t)
	task := mustCreateTask(t, svc, validFields())

	updated, err := svc.LogTime(task.ID, 20, "went long")
	if err != nil {
		t.Fatalf("logging time: %v", err)
	}
	if updated.TimeRemaining != 0 {
		t.Errorf("TimeRemaining = %g, want 0", updated.TimeRemaining)
	}
	if updated.Progress != 100 {
		t.Errorf("Progress = %d, want 100", updated.Progress)
	}
}

func TestLogTimeRejectsNonPositiveHours(t *testing.T) {
	svc := newTestService(t)
	task := mustCreateTask(t, svc, validFields())

	for _, hours := range []float64{0, -1} {
		if _, err := svc.LogTime(task.ID, hours, ""); err == nil {
			t.Errorf("expected error for hours=%g", hours)
		}
	}
}

func TestAssignTaskToSprintMovesMembership(t *testing.T) {
	svc := newTestService(t)
	task := mustCreateTask(t, svc, validFields())

	start := time.Now().UTC()
	first, err := svc.CreateSprint("Sprint 1", start, start.AddDate(0, 0, 14), nil)
	if err != nil {
		t.Fatalf("creating sprint: %v", err)
	}
	second, err := svc.CreateSprint("Sprint 2", start, start.AddDate(0, 0, 14), nil)
	if err != nil {
		t.Fatalf("creating sprint: %v", err)
	}

	if err := svc.AssignTaskToSprint(task.ID, first.ID); err != nil {
		t.Fatalf("assigning to first sprint: %v", err)
	}
	if err := svc.AssignTaskToSprint(task.ID, second.ID); err != nil {
		t.Fatalf("assigning to second sprint: %v", err)
	}

	firstReport, err := svc.SprintReport(first.ID)
	if err != nil {
		t.Fatalf("reporting first sprint: %v", err)
	}
	if firstReport.TotalTasks != 0 {
		t.Errorf("first sprint still has %d task(s)", firstReport.TotalTasks)
	}

	secondReport, err := svc.SprintReport(second.ID)
	if err != nil {
		t.Fatalf("reporting second sprint: %v", err)
	}
	if secondReport.TotalTasks != 1 {
		t.Errorf("second sprint has %d task(s), want 1", secondReport.TotalTasks)
	}

	moved, err := svc.GetTask(task.ID)
	if err != nil {
		t.Fatalf("getting task: %v", err)
	}
	if moved.SprintID != second.ID {
		t.Errorf("SprintID = %s, want %s", moved.SprintID, second.ID)
	}
}

func TestSprintReportEmptySprint(t *testing.T) {
	svc := newTestService(t)
	start := time.Now().UTC()
	sprint, err := svc.CreateSprint("Empty", start, start.AddDate(0, 0, 7), nil)
	if err != nil {
		t.Fatalf("creating sprint: %v", err)
	}

	report, err := svc.SprintReport(sprint.ID)
	if err != nil {
		t.Fatalf("reporting: %v", err)
	}
	if report.Progress != 0 {
		t.Errorf("Progress = %g, want 0 for empty sprint", report.Progress)
	}
}

func TestRoadmapSummaryMilestones(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		completed int
		milestone string
	}{
		{"nothing done", 10, 0, "core features"},
		{"quarter done", 10, 3, "testing"},
		{"half done", 10, 6, "optimization"},
		{"mostly done", 10, 8, "polish"},
		{"all done", 10, 10, "deployment-ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			var ids []string
			for i := 0; i < tt.total; i++ {
				task := mustCreateTask(t, svc, validFields())
				ids = append(ids, task.ID)
			}
			for i := 0; i < tt.completed; i++ {
				if _, err := svc.UpdateStatus(ids[i], models.StatusDone, nil); err != nil {
					t.Fatalf("completing task: %v", err)
				}
			}

			summary := svc.RoadmapSummary()
			if summary.NextMilestone != tt.milestone {
				t.Errorf("NextMilestone = %q, want %q (rate %.1f)", summary.NextMilestone, tt.milestone, summary.CompletionRate)
			}
		})
	}
}

func TestRoadmapSummaryCounts(t *testing.T) {
	svc := newTestService(t)

	fields := validFields()
	mustCreateTask(t, svc, fields)
	fields.Type = models.TypeBugfix
	fields.Area = models.AreaFrontend
	task := mustCreateTask(t, svc, fields)
	if _, err := svc.UpdateStatus(task.ID, models.StatusDone, nil); err != nil {
		t.Fatalf("completing: %v", err)
	}

	summary := svc.RoadmapSummary()
	if summary.TotalTasks != 2 {
		t.Errorf("TotalTasks = %d, want 2", summary.TotalTasks)
	}
	if summary.Completed != 1 {
		t.Errorf("Completed = %d, want 1", summary.Completed)
	}
	if summary.CompletionRate != 50 {
		t.Errorf("CompletionRate = %g, want 50", summary.CompletionRate)
	}
	if summary.ByType[models.TypeBugfix] != 1 {
		t.Errorf("ByType[bugfix] = %d, want 1", summary.ByType[models.TypeBugfix])
	}
	if summary.ByArea[models.AreaFrontend] != 1 {
		t.Errorf("ByArea[frontend] = %d, want 1", summary.ByArea[models.AreaFrontend])
	}
}
