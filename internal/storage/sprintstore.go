package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// SprintStore defines the interface for the sprint collection, persisted as
// a JSON array in sprints.json.
type SprintStore interface {
	Put(sprint models.Sprint) error
	Get(sprintID string) (*models.Sprint, error)
	All() []models.Sprint
	Load() error
	Save() error
}

type fileSprintStore struct {
	basePath string
	sprints  map[string]models.Sprint
}

// NewSprintStore creates a SprintStore backed by sprints.json in the given
// base directory.
func NewSprintStore(basePath string) SprintStore {
	return &fileSprintStore{
		basePath: basePath,
		sprints:  make(map[string]models.Sprint),
	}
}

func (s *fileSprintStore) filePath() string {
	return filepath.Join(s.basePath, "sprints.json")
}

func (s *fileSprintStore) Put(sprint models.Sprint) error {
	if sprint.ID == "" {
		return fmt.Errorf("putting sprint: ID must not be empty")
	}
	s.sprints[sprint.ID] = sprint
	return nil
}

func (s *fileSprintStore) Get(sprintID string) (*models.Sprint, error) {
	sprint, ok := s.sprints[sprintID]
	if !ok {
		return nil, fmt.Errorf("sprint %s not found", sprintID)
	}
	return &sprint, nil
}

func (s *fileSprintStore) All() []models.Sprint {
	sprints := make([]models.Sprint, 0, len(s.sprints))
	for _, sp := range s.sprints {
		sprints = append(sprints, sp)
	}
	sort.Slice(sprints, func(i, j int) bool { return sprints[i].ID < sprints[j].ID })
	return sprints
}

func (s *fileSprintStore) Load() error {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			s.sprints = make(map[string]models.Sprint)
			return nil
		}
		return fmt.Errorf("loading sprints: %w", err)
	}

	var sprints []models.Sprint
	if err := json.Unmarshal(data, &sprints); err != nil {
		return fmt.Errorf("loading sprints: parsing JSON: %w", err)
	}

	s.sprints = make(map[string]models.Sprint, len(sprints))
	for _, sp := range sprints {
		s.sprints[sp.ID] = sp
	}
	return nil
}

func (s *fileSprintStore) Save() error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving sprints: creating directory: %w", err)
	}
	data, err := json.MarshalIndent(s.All(), "", "  ")
	if err != nil {
		return fmt.Errorf("saving sprints: marshaling JSON: %w", err)
	}
	if err := os.WriteFile(s.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving sprints: writing file: %w", err)
	}
	return nil
}
