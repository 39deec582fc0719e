package storage

import (
	"testing"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

func record(i int) models.OptimizationRecord {
	return models.OptimizationRecord{
		Timestamp: time.Date(2026, 8, 1, 0, 0, i, 0, time.UTC),
		Type:      models.OptimizationAuto,
		Strategy:  models.LevelBalanced,
		Overall:   float64(i),
	}
}

func TestHistoryAppendKeepsRollingWindow(t *testing.T) {
	store := NewHistoryStore(t.TempDir(), 5)

	for i := 0; i < 8; i++ {
		if err := store.Append(record(i)); err != nil {
			t.Fatalf("appending: %v", err)
		}
	}

	all := store.All()
	if len(all) != 5 {
		t.Fatalf("got %d records, want 5", len(all))
	}
	// Oldest three dropped; the window holds records 3..7.
	if all[0].Overall != 3 || all[4].Overall != 7 {
		t.Errorf("window = [%g..%g], want [3..7]", all[0].Overall, all[4].Overall)
	}
}

func TestHistorySaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewHistoryStore(dir, 100)
	for i := 0; i < 3; i++ {
		if err := store.Append(record(i)); err != nil {
			t.Fatalf("appending: %v", err)
		}
	}
	if err := store.Save(); err != nil {
		t.Fatalf("saving: %v", err)
	}

	reloaded := NewHistoryStore(dir, 100)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("loading: %v", err)
	}
	all := reloaded.All()
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	if all[2].Overall != 2 || all[2].Strategy != models.LevelBalanced {
		t.Errorf("last record = %+v", all[2])
	}
}

func TestHistoryLoadTrimsToLimit(t *testing.T) {
	dir := t.TempDir()
	writer := NewHistoryStore(dir, 100)
	for i := 0; i < 10; i++ {
		if err := writer.Append(record(i)); err != nil {
			t.Fatalf("appending: %v", err)
		}
	}
	if err := writer.Save(); err != nil {
		t.Fatalf("saving: %v", err)
	}

	// A reader configured with a smaller window keeps only the newest.
	reader := NewHistoryStore(dir, 4)
	if err := reader.Load(); err != nil {
		t.Fatalf("loading: %v", err)
	}
	all := reader.All()
	if len(all) != 4 {
		t.Fatalf("got %d records, want 4", len(all))
	}
	if all[0].Overall != 6 {
		t.Errorf("oldest kept = %g, want 6", all[0].Overall)
	}
}

func TestHistoryLoadMissingFile(t *testing.T) {
	store := NewHistoryStore(t.TempDir(), 10)
	if err := store.Load(); err != nil {
		t.Fatalf("loading: %v", err)
	}
	if len(store.All()) != 0 {
		t.Errorf("expected empty history")
	}
}
