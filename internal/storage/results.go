package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// RoadmapDoc is the durable roadmap document at roadmap.json. Each section
// is keyed by workflow component and overwritten whole on update, so a
// re-run of the same workflow replaces its entries rather than appending.
type RoadmapDoc struct {
	Research       map[string]models.ResearchResult       `json:"research"`
	Implementation map[string]models.ImplementationResult `json:"implementation"`
	Validation     map[string]models.ValidationResult     `json:"validation"`
	Benchmarks     map[string]models.BenchmarkResult      `json:"benchmarks"`
	Summary        *models.RoadmapSummary                 `json:"summary,omitempty"`
	LastUpdated    time.Time                              `json:"lastUpdated"`
}

// ResultsStore reads and writes the roadmap document and the validator's
// readiness report.
type ResultsStore interface {
	LoadRoadmap() (*RoadmapDoc, error)
	SaveRoadmap(doc *RoadmapDoc) error
	SaveReadiness(report *models.ReadinessReport) error
	LoadReadiness() (*models.ReadinessReport, error)
}

type fileResultsStore struct {
	basePath string
}

// NewResultsStore creates a ResultsStore rooted at the given base directory.
func NewResultsStore(basePath string) ResultsStore {
	return &fileResultsStore{basePath: basePath}
}

func (s *fileResultsStore) roadmapPath() string {
	return filepath.Join(s.basePath, "roadmap.json")
}

func (s *fileResultsStore) readinessPath() string {
	return filepath.Join(s.basePath, "docker-test-results.json")
}

// emptyRoadmap returns a RoadmapDoc with all section maps initialized.
func emptyRoadmap() *RoadmapDoc {
	return &RoadmapDoc{
		Research:       make(map[string]models.ResearchResult),
		Implementation: make(map[string]models.ImplementationResult),
		Validation:     make(map[string]models.ValidationResult),
		Benchmarks:     make(map[string]models.BenchmarkResult),
	}
}

func (s *fileResultsStore) LoadRoadmap() (*RoadmapDoc, error) {
	data, err := os.ReadFile(s.roadmapPath())
	if err != nil {
		if os.IsNotExist(err) {
			return emptyRoadmap(), nil
		}
		return nil, fmt.Errorf("loading roadmap: %w", err)
	}

	var doc RoadmapDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loading roadmap: parsing JSON: %w", err)
	}
	if doc.Research == nil {
		doc.Research = make(map[string]models.ResearchResult)
	}
	if doc.Implementation == nil {
		doc.Implementation = make(map[string]models.ImplementationResult)
	}
	if doc.Validation == nil {
		doc.Validation = make(map[string]models.ValidationResult)
	}
	if doc.Benchmarks == nil {
		doc.Benchmarks = make(map[string]models.BenchmarkResult)
	}
	return &doc, nil
}

func (s *fileResultsStore) SaveRoadmap(doc *RoadmapDoc) error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving roadmap: creating directory: %w", err)
	}
	doc.LastUpdated = time.Now().UTC()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("saving roadmap: marshaling JSON: %w", err)
	}
	if err := os.WriteFile(s.roadmapPath(), data, 0o600); err != nil {
		return fmt.Errorf("saving roadmap: writing file: %w", err)
	}
	return nil
}

func (s *fileResultsStore) SaveReadiness(report *models.ReadinessReport) error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving readiness report: creating directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("saving readiness report: marshaling JSON: %w", err)
	}
	if err := os.WriteFile(s.readinessPath(), data, 0o600); err != nil {
		return fmt.Errorf("saving readiness report: writing file: %w", err)
	}
	return nil
}

func (s *fileResultsStore) LoadReadiness() (*models.ReadinessReport, error) {
	data, err := os.ReadFile(s.readinessPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading readiness report: %w", err)
	}
	var report models.ReadinessReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("loading readiness report: parsing JSON: %w", err)
	}
	return &report, nil
}
