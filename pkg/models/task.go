package models

import "time"

// TaskType represents the kind of work a task involves.
type TaskType string

const (
	TypeFeature       TaskType = "feature"
	TypeBugfix        TaskType = "bugfix"
	TypeOptimization  TaskType = "optimization"
	TypeTesting       TaskType = "testing"
	TypeDocumentation TaskType = "documentation"
	TypeRefactoring   TaskType = "refactoring"
	TypeIntegration   TaskType = "integration"
	TypeDeployment    TaskType = "deployment"
)

// TaskArea represents the part of the system a task touches.
type TaskArea string

const (
	AreaFrontend    TaskArea = "frontend"
	AreaBackend     TaskArea = "backend"
	AreaIntegration TaskArea = "integration"
	AreaTesting     TaskArea = "testing"
	AreaDeployment  TaskArea = "deployment"
)

// TaskPriority represents the urgency level of a task.
type TaskPriority string

const (
	PriorityCritical TaskPriority = "critical"
	PriorityHigh     TaskPriority = "high"
	PriorityMedium   TaskPriority = "medium"
	PriorityLow      TaskPriority = "low"
)

// TaskStatus represents the current lifecycle state of a task.
// The progression backlog -> planned -> in-progress -> review -> testing ->
// done is the expected order, but transitions are not enforced: any status
// may follow any other. Side effects (StartedAt, CompletedAt, Progress) are.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "backlog"
	StatusPlanned    TaskStatus = "planned"
	StatusInProgress TaskStatus = "in-progress"
	StatusReview     TaskStatus = "review"
	StatusTesting    TaskStatus = "testing"
	StatusDone       TaskStatus = "done"
)

// TimeEntry records a single block of hours logged against a task.
type TimeEntry struct {
	Hours    float64   `json:"hours"`
	Note     string    `json:"note,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}

// Task represents a unit of work in the development roadmap. Tasks are
// created by the research translator or directly by a caller, and are
// retained forever (soft retention: no hard delete).
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Type           TaskType     `json:"type"`
	Area           TaskArea     `json:"area"`
	Priority       TaskPriority `json:"priority"`
	Status         TaskStatus   `json:"status"`
	EstimatedHours float64      `json:"estimated_hours"`
	TimeSpent      float64      `json:"time_spent"`
	TimeRemaining  float64      `json:"time_remaining"`
	Progress       int          `json:"progress"`
	Tags           []string     `json:"tags,omitempty"`
	Dependencies   []string     `json:"dependencies,omitempty"`
	SprintID       string       `json:"sprint_id,omitempty"`
	TimeLog        []TimeEntry  `json:"time_log,omitempty"`
	Created        time.Time    `json:"created"`
	Updated        time.Time    `json:"updated"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
}

// ValidTaskTypes is the set of allowed TaskType values.
var ValidTaskTypes = map[TaskType]bool{
	TypeFeature:       true,
	TypeBugfix:        true,
	TypeOptimization:  true,
	TypeTesting:       true,
	TypeDocumentation: true,
	TypeRefactoring:   true,
	TypeIntegration:   true,
	TypeDeployment:    true,
}

// ValidTaskAreas is the set of allowed TaskArea values.
var ValidTaskAreas = map[TaskArea]bool{
	AreaFrontend:    true,
	AreaBackend:     true,
	AreaIntegration: true,
	AreaTesting:     true,
	AreaDeployment:  true,
}

// ValidPriorities is the set of allowed TaskPriority values.
var ValidPriorities = map[TaskPriority]bool{
	PriorityCritical: true,
	PriorityHigh:     true,
	PriorityMedium:   true,
	PriorityLow:      true,
}

// ValidStatuses is the set of allowed TaskStatus values.
var ValidStatuses = map[TaskStatus]bool{
	StatusBacklog:    true,
	StatusPlanned:    true,
	StatusInProgress: true,
	StatusReview:     true,
	StatusTesting:    true,
	StatusDone:       true,
}
