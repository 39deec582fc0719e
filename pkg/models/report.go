package models

import "time"

// SprintReport aggregates the state of one sprint's tasks.
type SprintReport struct {
	SprintID       string               `json:"sprint_id"`
	Name           string               `json:"name"`
	TotalTasks     int                  `json:"total_tasks"`
	ByStatus       map[TaskStatus]int   `json:"by_status"`
	ByPriority     map[TaskPriority]int `json:"by_priority"`
	ByType         map[TaskType]int     `json:"by_type"`
	ByArea         map[TaskArea]int     `json:"by_area"`
	EstimatedHours float64              `json:"estimated_hours"`
	SpentHours     float64              `json:"spent_hours"`
	Progress       float64              `json:"progress"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

// RoadmapSummary aggregates all tasks in the store and names the next
// milestone based on the overall completion rate.
type RoadmapSummary struct {
	TotalTasks     int                  `json:"total_tasks"`
	Completed      int                  `json:"completed"`
	ByStatus       map[TaskStatus]int   `json:"by_status"`
	ByPriority     map[TaskPriority]int `json:"by_priority"`
	ByType         map[TaskType]int     `json:"by_type"`
	ByArea         map[TaskArea]int     `json:"by_area"`
	EstimatedHours float64              `json:"estimated_hours"`
	SpentHours     float64              `json:"spent_hours"`
	CompletionRate float64              `json:"completion_rate"`
	NextMilestone  string               `json:"next_milestone"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

// GroupResult is one named check group's aggregate outcome.
type GroupResult struct {
	Name        string         `json:"name"`
	Checks      []CheckOutcome `json:"checks"`
	Passes      int            `json:"passes"`
	Total       int            `json:"total"`
	SuccessRate float64        `json:"success_rate"`
	Success     bool           `json:"success"`
}

// NextSteps buckets remediation work by urgency.
type NextSteps struct {
	Immediate []string `json:"immediate,omitempty"`
	ShortTerm []string `json:"short_term,omitempty"`
	LongTerm  []string `json:"long_term,omitempty"`
}

// ReadinessReport is the integration validator's composite verdict.
type ReadinessReport struct {
	Environment     string        `json:"environment"`
	Timestamp       time.Time     `json:"timestamp"`
	Groups          []GroupResult `json:"tests"`
	OverallScore    float64       `json:"overallScore"`
	Success         bool          `json:"success"`
	Status          string        `json:"status"`
	Recommendations []string      `json:"recommendations,omitempty"`
	NextSteps       NextSteps     `json:"next_steps"`
}
