// Package storage persists orchestrator state as JSON documents under a
// configurable results directory: tasks.json, sprints.json, roadmap.json,
// optimization-history.json, and docker-test-results.json. Reads of a
// missing file return an empty default structure; writes create parent
// directories as needed.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// TaskFile is the top-level structure of tasks.json.
type TaskFile struct {
	Tasks       []models.Task `json:"tasks"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

// TaskFilter specifies criteria for querying tasks. All specified fields use
// AND logic: a task must match every criterion.
type TaskFilter struct {
	Status   []models.TaskStatus
	Priority []models.TaskPriority
	Type     []models.TaskType
	Area     []models.TaskArea
	Tags     []string
	SprintID string
}

// TaskStore defines the interface for the central task collection. Tasks are
// never removed; retention is soft (status only).
type TaskStore interface {
	Put(task models.Task) error
	Get(taskID string) (*models.Task, error)
	All() []models.Task
	Filter(filter TaskFilter) []models.Task
	Load() error
	Save() error
}

type fileTaskStore struct {
	basePath string
	tasks    map[string]models.Task
}

// NewTaskStore creates a TaskStore backed by tasks.json in the given base
// directory.
func NewTaskStore(basePath string) TaskStore {
	return &fileTaskStore{
		basePath: basePath,
		tasks:    make(map[string]models.Task),
	}
}

func (s *fileTaskStore) filePath() string {
	return filepath.Join(s.basePath, "tasks.json")
}

func (s *fileTaskStore) Put(task models.Task) error {
	if task.ID == "" {
		return fmt.Errorf("putting task: ID must not be empty")
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *fileTaskStore) Get(taskID string) (*models.Task, error) {
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s not found", taskID)
	}
	return &task, nil
}

// All returns every task sorted by ID for deterministic output.
func (s *fileTaskStore) All() []models.Task {
	tasks := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func (s *fileTaskStore) Filter(filter TaskFilter) []models.Task {
	var result []models.Task
	for _, t := range s.All() {
		if matchesTaskFilter(t, filter) {
			result = append(result, t)
		}
	}
	return result
}

func matchesTaskFilter(t models.Task, f TaskFilter) bool {
	if len(f.Status) > 0 && !containsStatus(f.Status, t.Status) {
		return false
	}
	if len(f.Priority) > 0 && !containsPriority(f.Priority, t.Priority) {
		return false
	}
	if len(f.Type) > 0 && !containsType(f.Type, t.Type) {
		return false
	}
	if len(f.Area) > 0 && !containsArea(f.Area, t.Area) {
		return false
	}
	if len(f.Tags) > 0 && !hasAllTags(t.Tags, f.Tags) {
		return false
	}
	if f.SprintID != "" && t.SprintID != f.SprintID {
		return false
	}
	return true
}

func containsStatus(haystack []models.TaskStatus, needle models.TaskStatus) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsPriority(haystack []models.TaskPriority, needle models.TaskPriority) bool {
	for _, p := range haystack {
		if p == needle {
			return true
		}
	}
	return false
}

func containsType(haystack []models.TaskType, needle models.TaskType) bool {
	for _, tt := range haystack {
		if tt == needle {
			return true
		}
	}
	return false
}

func containsArea(haystack []models.TaskArea, needle models.TaskArea) bool {
	for _, a := range haystack {
		if a == needle {
			return true
		}
	}
	return false
}

func hasAllTags(entryTags []string, requiredTags []string) bool {
	tagSet := make(map[string]struct{}, len(entryTags))
	for _, t := range entryTags {
		tagSet[t] = struct{}{}
	}
	for _, req := range requiredTags {
		if _, found := tagSet[req]; !found {
			return false
		}
	}
	return true
}

func (s *fileTaskStore) Load() error {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			s.tasks = make(map[string]models.Task)
			return nil
		}
		return fmt.Errorf("loading tasks: %w", err)
	}

	var tf TaskFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("loading tasks: parsing JSON: %w", err)
	}

	s.tasks = make(map[string]models.Task, len(tf.Tasks))
	for _, t := range tf.Tasks {
		s.tasks[t.ID] = t
	}
	return nil
}

func (s *fileTaskStore) Save() error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving tasks: creating directory: %w", err)
	}
	tf := TaskFile{
		Tasks:       s.All(),
		LastUpdated: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(&tf, "", "  ")
	if err != nil {
		return fmt.Errorf("saving tasks: marshaling JSON: %w", err)
	}
	if err := os.WriteFile(s.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving tasks: writing file: %w", err)
	}
	return nil
}
