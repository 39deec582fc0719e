// Package internal provides the App struct that wires all components of the
// autonomous development orchestrator together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"

	"github.com/primoscope/Spotify-echo-sub014/internal/cli"
	"github.com/primoscope/Spotify-echo-sub014/internal/config"
	"github.com/primoscope/Spotify-echo-sub014/internal/core"
	"github.com/primoscope/Spotify-echo-sub014/internal/integration"
	"github.com/primoscope/Spotify-echo-sub014/internal/observability"
	"github.com/primoscope/Spotify-echo-sub014/internal/storage"
	"github.com/primoscope/Spotify-echo-sub014/internal/tuning"
	"github.com/primoscope/Spotify-echo-sub014/internal/validation"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// App holds all service dependencies for the orchestrator.
type App struct {
	Cfg *config.Config

	// Storage layer
	TaskStore   storage.TaskStore
	SprintStore storage.SprintStore
	History     storage.HistoryStore
	Results     storage.ResultsStore

	// Core services
	Tasks      core.TaskService
	Classifier core.Classifier
	Orch       *core.Orchestrator

	// Tuning and validation
	Tuner   *tuning.Tuner
	Battery *validation.Battery

	// Integration services
	Research integration.ResearchClient
	Runner   integration.ContainerRunner

	// Observability
	Events observability.EventLog
}

// ResolveBaseDir returns the directory configuration is read from: the
// AUTODEV_HOME environment variable when set, otherwise the current
// directory.
func ResolveBaseDir() string {
	if dir := os.Getenv("AUTODEV_HOME"); dir != "" {
		return dir
	}
	return "."
}

// NewApp creates and wires all components, then exposes them to the CLI
// layer.
func NewApp(baseDir string) (*App, error) {
	cfg, err := config.Load(baseDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app := &App{Cfg: cfg}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// --- Observability ---
	events, err := observability.NewJSONLEventLog(cfg.EventsPath())
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	app.Events = events

	// --- Storage layer ---
	app.TaskStore = storage.NewTaskStore(cfg.DataDir)
	if err := app.TaskStore.Load(); err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	app.SprintStore = storage.NewSprintStore(cfg.DataDir)
	if err := app.SprintStore.Load(); err != nil {
		return nil, fmt.Errorf("loading sprints: %w", err)
	}
	app.History = storage.NewHistoryStore(cfg.DataDir, cfg.Policy.HistoryLimit)
	if err := app.History.Load(); err != nil {
		return nil, fmt.Errorf("loading optimization history: %w", err)
	}
	app.Results = storage.NewResultsStore(cfg.DataDir)

	// --- Core services ---
	app.Tasks = core.NewTaskService(app.TaskStore, app.SprintStore, cfg.Milestones)
	app.Classifier = core.NewClassifier()

	// --- Integration services ---
	app.Research = integration.NewResearchClient(cfg.Research.BaseURL, cfg.Research.APIKey)
	app.Runner = integration.NewContainerRunner()

	// --- Tuning ---
	app.Tuner = tuning.NewTuner(tuning.Options{
		Initial: cfg.Tuning,
		Bounds:  models.DefaultKnobBounds(),
		Policy:  cfg.Policy,
		Source:  tuning.NewHostMetricsSource(cfg.Tuning.MemoryLimitMB),
		History: app.History,
		Events:  events,
	})

	// --- Validation ---
	groups := validation.DefaultGroups(app.Runner, app.Research, cfg.Container.Name)
	validator := validation.NewValidator(cfg.Validation, events)
	app.Battery = validation.NewBattery(validator, groups, app.Results)

	// --- Orchestrator ---
	app.Orch = core.NewOrchestrator(core.OrchestratorOptions{
		Classifier: app.Classifier,
		Tasks:      app.Tasks,
		Research: integration.NewResearchProvider(app.Research, integration.ResearchOptions{
			MaxTokens: cfg.Research.MaxTokens,
			Model:     cfg.Research.Model,
		}),
		Executor:  integration.NewTaskExecutor(app.Runner, cfg.Container.Image),
		Checks:    app.Battery,
		Bench:     integration.NewBenchmarker(app.Runner, cfg.Container.Name),
		Results:   app.Results,
		Events:    events,
		Config:    app.Tuner,
		Policy:    cfg.Policy,
		Baselines: cfg.Baselines,
	})

	// Expose services to the CLI layer.
	cli.Cfg = cfg
	cli.Tasks = app.Tasks
	cli.Orch = app.Orch
	cli.Tuner = app.Tuner
	cli.Battery = app.Battery
	cli.Results = app.Results
	cli.Events = events

	return app, nil
}
