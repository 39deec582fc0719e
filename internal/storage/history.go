package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// HistoryStore persists the optimization audit trail as a rolling window in
// optimization-history.json. Append drops the oldest entries once the limit
// is exceeded, bounding memory and file size.
type HistoryStore interface {
	Append(record models.OptimizationRecord) error
	All() []models.OptimizationRecord
	Load() error
	Save() error
}

type fileHistoryStore struct {
	basePath string
	limit    int
	records  []models.OptimizationRecord
}

// NewHistoryStore creates a HistoryStore keeping at most limit records.
// A non-positive limit falls back to 1000.
func NewHistoryStore(basePath string, limit int) HistoryStore {
	if limit <= 0 {
		limit = 1000
	}
	return &fileHistoryStore{basePath: basePath, limit: limit}
}

func (s *fileHistoryStore) filePath() string {
	return filepath.Join(s.basePath, "optimization-history.json")
}

func (s *fileHistoryStore) Append(record models.OptimizationRecord) error {
	s.records = append(s.records, record)
	if len(s.records) > s.limit {
		s.records = s.records[len(s.records)-s.limit:]
	}
	return nil
}

func (s *fileHistoryStore) All() []models.OptimizationRecord {
	out := make([]models.OptimizationRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *fileHistoryStore) Load() error {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			s.records = nil
			return nil
		}
		return fmt.Errorf("loading optimization history: %w", err)
	}

	var records []models.OptimizationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("loading optimization history: parsing JSON: %w", err)
	}
	if len(records) > s.limit {
		records = records[len(records)-s.limit:]
	}
	s.records = records
	return nil
}

func (s *fileHistoryStore) Save() error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving optimization history: creating directory: %w", err)
	}
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("saving optimization history: marshaling JSON: %w", err)
	}
	if err := os.WriteFile(s.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving optimization history: writing file: %w", err)
	}
	return nil
}
