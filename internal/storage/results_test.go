package storage

import (
	"testing"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

func TestLoadRoadmapMissingFile(t *testing.T) {
	store := NewResultsStore(t.TempDir())

	doc, err := store.LoadRoadmap()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if doc.Research == nil || doc.Implementation == nil || doc.Validation == nil || doc.Benchmarks == nil {
		t.Error("expected all section maps to be initialized")
	}
	if len(doc.Research) != 0 {
		t.Errorf("expected empty research section, got %d entries", len(doc.Research))
	}
}

func TestRoadmapSectionsOverwriteByComponent(t *testing.T) {
	store := NewResultsStore(t.TempDir())

	doc, err := store.LoadRoadmap()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	doc.Research["frontend"] = models.ResearchResult{
		Component: models.ComponentFrontend,
		Insights:  []models.ResearchInsight{{Query: "first", Answer: "a"}},
	}
	if err := store.SaveRoadmap(doc); err != nil {
		t.Fatalf("saving: %v", err)
	}

	doc, err = store.LoadRoadmap()
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	doc.Research["frontend"] = models.ResearchResult{
		Component: models.ComponentFrontend,
		Insights:  []models.ResearchInsight{{Query: "second", Answer: "b"}},
	}
	if err := store.SaveRoadmap(doc); err != nil {
		t.Fatalf("saving again: %v", err)
	}

	final, err := store.LoadRoadmap()
	if err != nil {
		t.Fatalf("final load: %v", err)
	}
	if len(final.Research) != 1 {
		t.Errorf("got %d research entries, want 1", len(final.Research))
	}
	if got := final.Research["frontend"].Insights[0].Query; got != "second" {
		t.Errorf("Query = %q, want %q", got, "second")
	}
}

func TestSaveRoadmapStampsLastUpdated(t *testing.T) {
	store := NewResultsStore(t.TempDir())

	doc, _ := store.LoadRoadmap()
	before := time.Now().UTC().Add(-time.Second)
	if err := store.SaveRoadmap(doc); err != nil {
		t.Fatalf("saving: %v", err)
	}

	reloaded, err := store.LoadRoadmap()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if reloaded.LastUpdated.Before(before) {
		t.Errorf("LastUpdated = %v, want recent", reloaded.LastUpdated)
	}
}

func TestReadinessRoundTrip(t *testing.T) {
	store := NewResultsStore(t.TempDir())

	missing, err := store.LoadReadiness()
	if err != nil {
		t.Fatalf("loading missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil report before first save")
	}

	report := &models.ReadinessReport{
		Environment:  "docker",
		Timestamp:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		OverallScore: 87.5,
		Success:      true,
		Status:       "ready",
		Groups: []models.GroupResult{
			{Name: "api-endpoints", Passes: 4, Total: 4, SuccessRate: 1, Success: true},
		},
	}
	if err := store.SaveReadiness(report); err != nil {
		t.Fatalf("saving: %v", err)
	}

	got, err := store.LoadReadiness()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if got.Status != "ready" || got.OverallScore != 87.5 {
		t.Errorf("got %+v", got)
	}
	if len(got.Groups) != 1 || got.Groups[0].Name != "api-endpoints" {
		t.Errorf("Groups = %+v", got.Groups)
	}
}
