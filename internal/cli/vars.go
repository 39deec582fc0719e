package cli

import (
	"github.com/primoscope/Spotify-echo-sub014/internal/config"
	"github.com/primoscope/Spotify-echo-sub014/internal/core"
	"github.com/primoscope/Spotify-echo-sub014/internal/observability"
	"github.com/primoscope/Spotify-echo-sub014/internal/storage"
	"github.com/primoscope/Spotify-echo-sub014/internal/tuning"
	"github.com/primoscope/Spotify-echo-sub014/internal/validation"
)

// Service instances, set during app initialization in app.go.
var (
	Cfg     *config.Config
	Tasks   core.TaskService
	Orch    *core.Orchestrator
	Tuner   *tuning.Tuner
	Battery *validation.Battery
	Results storage.ResultsStore
	Events  observability.EventLog
)
