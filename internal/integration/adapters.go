package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/internal/core"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// researchAdapter narrows ResearchClient to the orchestrator's
// core.ResearchProvider interface.
type researchAdapter struct {
	client ResearchClient
	opts   ResearchOptions
}

// NewResearchProvider adapts a ResearchClient for the orchestrator.
func NewResearchProvider(client ResearchClient, opts ResearchOptions) core.ResearchProvider {
	return &researchAdapter{client: client, opts: opts}
}

func (a *researchAdapter) Research(ctx context.Context, query string) (string, []string, error) {
	resp, err := a.client.Query(ctx, ResearchRequest{Query: query, Options: a.opts})
	if err != nil {
		return "", nil, err
	}
	return resp.Answer, resp.Citations, nil
}

// containerExecutor runs each planned task inside a short-lived container
// and tears it down afterwards. The image's entrypoint receives the task id
// and type and decides what to run.
type containerExecutor struct {
	runner ContainerRunner
	image  string
}

// NewTaskExecutor creates a container-backed core.TaskExecutor.
func NewTaskExecutor(runner ContainerRunner, image string) core.TaskExecutor {
	return &containerExecutor{runner: runner, image: image}
}

func (e *containerExecutor) Execute(ctx context.Context, task models.Task) error {
	name := containerName(task.ID)

	if _, err := e.runner.RunContainer(ctx, e.image, name, "run-task", task.ID, string(task.Type)); err != nil {
		return err
	}
	// Cleanup failures are secondary: the task already ran.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = e.runner.RemoveContainer(cleanupCtx, name)
	}()

	result, err := e.runner.HealthProbe(ctx, name, "task-status", task.ID)
	if err != nil {
		return err
	}
	if status := strings.TrimSpace(result.Stdout); status != "" && status != "ok" {
		return &core.CollaboratorError{
			Collaborator: "container",
			Op:           "task execution",
			Err:          fmt.Errorf("task %s finished with status %q", task.ID, status),
		}
	}
	return nil
}

// containerName derives a runtime-safe container name from a task id.
func containerName(taskID string) string {
	return "autodev-" + strings.ToLower(strings.ReplaceAll(taskID, ":", "-"))
}

// containerBenchmarker measures KPIs against the long-lived validation
// container: resource stats from the runtime plus a wall-clock health probe
// as a latency proxy.
type containerBenchmarker struct {
	runner    ContainerRunner
	container string
}

// NewBenchmarker creates a container-backed core.Benchmarker.
func NewBenchmarker(runner ContainerRunner, container string) core.Benchmarker {
	return &containerBenchmarker{runner: runner, container: container}
}

func (b *containerBenchmarker) Measure(ctx context.Context) (map[string]float64, error) {
	stats, err := b.runner.Stats(ctx, b.container)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if _, err := b.runner.HealthProbe(ctx, b.container, "curl", "-sf", "http://localhost:3000/health"); err != nil {
		return nil, err
	}
	stats["probe_latency_ms"] = float64(time.Since(start).Milliseconds())

	return stats, nil
}
