// Package core contains the business logic for the autonomous development
// orchestrator: task lifecycle management, sprint planning, research
// translation, the workflow pipeline, and roadmap reporting.
package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/primoscope/Spotify-echo-sub014/internal/storage"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// TaskFields holds the caller-supplied fields for creating a task.
type TaskFields struct {
	Title          string
	Description    string
	Type           models.TaskType
	Area           models.TaskArea
	Priority       models.TaskPriority
	EstimatedHours float64
	Tags           []string
	Dependencies   []string
}

// StatusPatch holds optional fields merged during a status update.
type StatusPatch struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	Tags        []string
}

// MilestoneThresholds maps completion-rate buckets to the next milestone
// label. Rates are percentages; the first bucket whose ceiling exceeds the
// rate wins.
type MilestoneThresholds struct {
	CoreFeatures float64 `mapstructure:"core_features"`
	Testing      float64 `mapstructure:"testing"`
	Optimization float64 `mapstructure:"optimization"`
	Polish       float64 `mapstructure:"polish"`
}

// DefaultMilestoneThresholds returns the stock completion-rate buckets.
func DefaultMilestoneThresholds() MilestoneThresholds {
	return MilestoneThresholds{
		CoreFeatures: 25,
		Testing:      50,
		Optimization: 75,
		Polish:       90,
	}
}

// TaskService defines task and sprint lifecycle operations. It is the only
// writer of task and sprint state.
type TaskService interface {
	CreateTask(fields TaskFields) (*models.Task, error)
	UpdateStatus(taskID string, status models.TaskStatus, patch *StatusPatch) (*models.Task, error)
	LogTime(taskID string, hours float64, note string) (*models.Task, error)
	GetTask(taskID string) (*models.Task, error)
	QueryTasks(filter storage.TaskFilter) []models.Task

	CreateSprint(name string, start, end time.Time, goals []string) (*models.Sprint, error)
	AssignTaskToSprint(taskID, sprintID string) error
	SprintReport(sprintID string) (*models.SprintReport, error)
	RoadmapSummary() *models.RoadmapSummary

	Save() error
}

type taskService struct {
	tasks      storage.TaskStore
	sprints    storage.SprintStore
	milestones MilestoneThresholds
}

// NewTaskService creates a TaskService over the given stores.
func NewTaskService(tasks storage.TaskStore, sprints storage.SprintStore, milestones MilestoneThresholds) TaskService {
	return &taskService{
		tasks:      tasks,
		sprints:    sprints,
		milestones: milestones,
	}
}

// NewTaskID generates a task identifier from the current time and a random
// suffix, e.g. AD-1735689600000-4f2a91c3.
func NewTaskID() string {
	return fmt.Sprintf("AD-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// NewSprintID generates a sprint identifier.
func NewSprintID() string {
	return fmt.Sprintf("SPRINT-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func allowedValues[T ~string](valid map[T]bool) string {
	vals := make([]string, 0, len(valid))
	for v := range valid {
		vals = append(vals, string(v))
	}
	// Sorted for stable error messages.
	sort.Strings(vals)
	return strings.Join(vals, ", ")
}

func (s *taskService) CreateTask(fields TaskFields) (*models.Task, error) {
	if strings.TrimSpace(fields.Title) == "" {
		return nil, &ValidationError{Field: "title", Value: fields.Title}
	}
	if !models.ValidTaskTypes[fields.Type] {
		return nil, &ValidationError{Field: "type", Value: string(fields.Type), Allowed: allowedValues(models.ValidTaskTypes)}
	}
	if !models.ValidTaskAreas[fields.Area] {
		return nil, &ValidationError{Field: "area", Value: string(fields.Area), Allowed: allowedValues(models.ValidTaskAreas)}
	}
	if !models.ValidPriorities[fields.Priority] {
		return nil, &ValidationError{Field: "priority", Value: string(fields.Priority), Allowed: allowedValues(models.ValidPriorities)}
	}

	now := time.Now().UTC()
	task := models.Task{
		ID:             NewTaskID(),
		Title:          fields.Title,
		Description:    fields.Description,
		Type:           fields.Type,
		Area:           fields.Area,
		Priority:       fields.Priority,
		Status:         models.StatusBacklog,
		EstimatedHours: fields.EstimatedHours,
		TimeRemaining:  fields.EstimatedHours,
		Progress:       0,
		Tags:           fields.Tags,
		Dependencies:   fields.Dependencies,
		Created:        now,
		Updated:        now,
	}
	if err := s.tasks.Put(task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &task, nil
}

// UpdateStatus moves a task to a new status, applying lifecycle side effects:
// in-progress sets StartedAt once, done sets CompletedAt and forces progress
// to 100. Transitions themselves are not restricted.
func (s *taskService) UpdateStatus(taskID string, status models.TaskStatus, patch *StatusPatch) (*models.Task, error) {
	if !models.ValidStatuses[status] {
		return nil, &ValidationError{Field: "status", Value: string(status), Allowed: allowedValues(models.ValidStatuses)}
	}
	task, err := s.tasks.Get(taskID)
	if err != nil {
		return nil, &NotFoundError{Kind: "task", ID: taskID}
	}

	now := time.Now().UTC()
	task.Status = status
	task.Updated = now

	switch status {
	case models.StatusInProgress:
		if task.StartedAt == nil {
			started := now
			task.StartedAt = &started
		}
	case models.StatusDone:
		completed := now
		task.CompletedAt = &completed
		task.Progress = 100
		task.TimeRemaining = 0
	}

	if patch != nil {
		if patch.Title != "" {
			task.Title = patch.Title
		}
		if patch.Description != "" {
			task.Description = patch.Description
		}
		if patch.Priority != "" {
			if !models.ValidPriorities[patch.Priority] {
				return nil, &ValidationError{Field: "priority", Value: string(patch.Priority), Allowed: allowedValues(models.ValidPriorities)}
			}
			task.Priority = patch.Priority
		}
		if patch.Tags != nil {
			task.Tags = patch.Tags
		}
	}

	if err := s.tasks.Put(*task); err != nil {
		return nil, fmt.Errorf("updating status for %s: %w", taskID, err)
	}
	return task, nil
}

// LogTime appends a time entry and recomputes spent, remaining, and progress.
// Progress saturates at 100 and remaining at 0 when logged time exceeds the
// estimate.
func (s *taskService) LogTime(taskID string, hours float64, note string) (*models.Task, error) {
	if hours <= 0 {
		return nil, &ValidationError{Field: "hours", Value: fmt.Sprintf("%g", hours)}
	}
	task, err := s.tasks.Get(taskID)
	if err != nil {
		return nil, &NotFoundError{Kind: "task", ID: taskID}
	}

	now := time.Now().UTC()
	task.TimeLog = append(task.TimeLog, models.TimeEntry{Hours: hours, Note: note, LoggedAt: now})
	task.TimeSpent += hours
	task.TimeRemaining = math.Max(0, task.EstimatedHours-task.TimeSpent)
	if task.EstimatedHours > 0 {
		progress := int(math.Round(task.TimeSpent / task.EstimatedHours * 100))
		if progress > 100 {
			progress = 100
		}
		task.Progress = progress
	}
	task.Updated = now

	if err := s.tasks.Put(*task); err != nil {
		return nil, fmt.Errorf("logging time for %s: %w", taskID, err)
	}
	return task, nil
}

func (s *taskService) GetTask(taskID string) (*models.Task, error) {
	task, err := s.tasks.Get(taskID)
	if err != nil {
		return nil, &NotFoundError{Kind: "task", ID: taskID}
	}
	return task, nil
}

func (s *taskService) QueryTasks(filter storage.TaskFilter) []models.Task {
	return s.tasks.Filter(filter)
}

func (s *taskService) CreateSprint(name string, start, end time.Time, goals []string) (*models.Sprint, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Value: name}
	}
	now := time.Now().UTC()
	sprint := models.Sprint{
		ID:        NewSprintID(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Goals:     goals,
		TaskIDs:   []string{},
		Status:    "planned",
		Created:   now,
		Updated:   now,
	}
	if err := s.sprints.Put(sprint); err != nil {
		return nil, fmt.Errorf("creating sprint: %w", err)
	}
	return &sprint, nil
}

// AssignTaskToSprint moves a task into a sprint, first detaching it from any
// sprint it currently belongs to. A task belongs to at most one sprint.
func (s *taskService) AssignTaskToSprint(taskID, sprintID string) error {
	task, err := s.tasks.Get(taskID)
	if err != nil {
		return &NotFoundError{Kind: "task", ID: taskID}
	}
	sprint, err := s.sprints.Get(sprintID)
	if err != nil {
		return &NotFoundError{Kind: "sprint", ID: sprintID}
	}

	// Detach from the previous sprint, if any.
	if task.SprintID != "" && task.SprintID != sprintID {
		if prev, err := s.sprints.Get(task.SprintID); err == nil {
			prev.TaskIDs = removeID(prev.TaskIDs, taskID)
			prev.Updated = time.Now().UTC()
			if err := s.sprints.Put(*prev); err != nil {
				return fmt.Errorf("assigning task %s: detaching from sprint %s: %w", taskID, prev.ID, err)
			}
		}
	}

	if !containsID(sprint.TaskIDs, taskID) {
		sprint.TaskIDs = append(sprint.TaskIDs, taskID)
	}
	sprint.Updated = time.Now().UTC()
	if err := s.sprints.Put(*sprint); err != nil {
		return fmt.Errorf("assigning task %s to sprint %s: %w", taskID, sprintID, err)
	}

	task.SprintID = sprintID
	task.Updated = time.Now().UTC()
	if err := s.tasks.Put(*task); err != nil {
		return fmt.Errorf("assigning task %s to sprint %s: %w", taskID, sprintID, err)
	}
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// SprintReport computes counts, hour totals, and completion progress for one
// sprint. Progress is 0 for an empty sprint.
func (s *taskService) SprintReport(sprintID string) (*models.SprintReport, error) {
	sprint, err := s.sprints.Get(sprintID)
	if err != nil {
		return nil, &NotFoundError{Kind: "sprint", ID: sprintID}
	}

	report := &models.SprintReport{
		SprintID:    sprint.ID,
		Name:        sprint.Name,
		ByStatus:    make(map[models.TaskStatus]int),
		ByPriority:  make(map[models.TaskPriority]int),
		ByType:      make(map[models.TaskType]int),
		ByArea:      make(map[models.TaskArea]int),
		GeneratedAt: time.Now().UTC(),
	}

	completed := 0
	for _, taskID := range sprint.TaskIDs {
		task, err := s.tasks.Get(taskID)
		if err != nil {
			continue
		}
		report.TotalTasks++
		report.ByStatus[task.Status]++
		report.ByPriority[task.Priority]++
		report.ByType[task.Type]++
		report.ByArea[task.Area]++
		report.EstimatedHours += task.EstimatedHours
		report.SpentHours += task.TimeSpent
		if task.Status == models.StatusDone {
			completed++
		}
	}
	if report.TotalTasks > 0 {
		report.Progress = float64(completed) / float64(report.TotalTasks) * 100
	}
	return report, nil
}

// RoadmapSummary aggregates all tasks and derives the next milestone from
// the completion rate.
func (s *taskService) RoadmapSummary() *models.RoadmapSummary {
	summary := &models.RoadmapSummary{
		ByStatus:    make(map[models.TaskStatus]int),
		ByPriority:  make(map[models.TaskPriority]int),
		ByType:      make(map[models.TaskType]int),
		ByArea:      make(map[models.TaskArea]int),
		GeneratedAt: time.Now().UTC(),
	}

	for _, task := range s.tasks.All() {
		summary.TotalTasks++
		summary.ByStatus[task.Status]++
		summary.ByPriority[task.Priority]++
		summary.ByType[task.Type]++
		summary.ByArea[task.Area]++
		summary.EstimatedHours += task.EstimatedHours
		summary.SpentHours += task.TimeSpent
		if task.Status == models.StatusDone {
			summary.Completed++
		}
	}
	if summary.TotalTasks > 0 {
		summary.CompletionRate = float64(summary.Completed) / float64(summary.TotalTasks) * 100
	}
	summary.NextMilestone = s.nextMilestone(summary.CompletionRate)
	return summary
}

func (s *taskService) nextMilestone(completionRate float64) string {
	m := s.milestones
	switch {
	case completionRate < m.CoreFeatures:
		return "core features"
	case completionRate < m.Testing:
		return "testing"
	case completionRate < m.Optimization:
		return "optimization"
	case completionRate < m.Polish:
		return "polish"
	default:
		return "deployment-ready"
	}
}

// Save persists both stores.
func (s *taskService) Save() error {
	if err := s.tasks.Save(); err != nil {
		return fmt.Errorf("saving task store: %w", err)
	}
	if err := s.sprints.Save(); err != nil {
		return fmt.Errorf("saving sprint store: %w", err)
	}
	return nil
}
