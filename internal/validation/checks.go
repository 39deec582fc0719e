package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/primoscope/Spotify-echo-sub014/internal/integration"
	"github.com/primoscope/Spotify-echo-sub014/internal/storage"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// probeCheck builds a Check that execs a curl probe inside the validation
// container and passes on a zero exit.
func probeCheck(runner integration.ContainerRunner, container, name string, args ...string) Check {
	return Check{
		Name: name,
		Run: func(ctx context.Context) (bool, string) {
			probe := append([]string{"curl", "-sf", "--max-time", "10"}, args...)
			result, err := runner.HealthProbe(ctx, container, probe...)
			if err != nil {
				return false, err.Error()
			}
			return true, strings.TrimSpace(firstLine(result.Stdout))
		},
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// DefaultGroups builds the stock collaborator-backed battery against the
// long-lived validation container. Group names line up with the remediation
// table.
func DefaultGroups(runner integration.ContainerRunner, research integration.ResearchClient, container string) []Group {
	return []Group{
		{
			Name:  "api-endpoints",
			Class: ClassIntegration,
			Checks: []Check{
				probeCheck(runner, container, "health endpoint", "http://localhost:3000/health"),
				probeCheck(runner, container, "recommendations endpoint", "http://localhost:3000/api/recommendations?limit=1"),
				probeCheck(runner, container, "chat endpoint", "-X", "POST", "-H", "Content-Type: application/json", "-d", `{"message":"ping"}`, "http://localhost:3000/api/chat"),
				{
					Name: "research api reachable",
					Run: func(ctx context.Context) (bool, string) {
						_, err := research.Query(ctx, integration.ResearchRequest{Query: "connectivity check"})
						if err != nil {
							return false, err.Error()
						}
						return true, "research collaborator responding"
					},
				},
			},
		},
		{
			Name:  "data-flow",
			Class: ClassIntegration,
			Checks: []Check{
				probeCheck(runner, container, "listening history ingest", "http://localhost:3000/api/history/status"),
				probeCheck(runner, container, "taste profile pipeline", "http://localhost:3000/api/profile/status"),
				probeCheck(runner, container, "recommendation freshness", "http://localhost:3000/api/recommendations/freshness"),
			},
		},
		{
			Name:  "authentication",
			Class: ClassSecurity,
			Checks: []Check{
				probeCheck(runner, container, "oauth redirect configured", "http://localhost:3000/auth/spotify"),
				probeCheck(runner, container, "token refresh path", "http://localhost:3000/auth/refresh/status"),
				{
					Name: "unauthenticated access rejected",
					Run: func(ctx context.Context) (bool, string) {
						// Expect a failure exit here: the endpoint must refuse
						// anonymous callers.
						_, err := runner.HealthProbe(ctx, container, "curl", "-sf", "--max-time", "10", "http://localhost:3000/api/me")
						if err != nil {
							return true, "protected endpoint refused anonymous request"
						}
						return false, "protected endpoint served an anonymous request"
					},
				},
			},
		},
		{
			Name:  "real-time",
			Class: ClassIntegration,
			Checks: []Check{
				probeCheck(runner, container, "websocket gateway", "http://localhost:3000/socket.io/?EIO=4&transport=polling"),
				probeCheck(runner, container, "event fan-out", "http://localhost:3000/api/events/status"),
			},
		},
		{
			Name:  "error-handling",
			Class: ClassIntegration,
			Checks: []Check{
				{
					Name: "unknown route returns structured error",
					Run: func(ctx context.Context) (bool, string) {
						result, err := runner.HealthProbe(ctx, container, "curl", "-s", "--max-time", "10", "-o", "/dev/null", "-w", "%{http_code}", "http://localhost:3000/api/no-such-route")
						if err != nil {
							return false, err.Error()
						}
						code := strings.TrimSpace(result.Stdout)
						return code == "404", fmt.Sprintf("status %s", code)
					},
				},
				probeCheck(runner, container, "error reporting endpoint", "http://localhost:3000/api/errors/status"),
			},
		},
		{
			Name:  "security",
			Class: ClassSecurity,
			Checks: []Check{
				{
					Name: "security headers present",
					Run: func(ctx context.Context) (bool, string) {
						result, err := runner.HealthProbe(ctx, container, "curl", "-sI", "--max-time", "10", "http://localhost:3000/health")
						if err != nil {
							return false, err.Error()
						}
						headers := strings.ToLower(result.Stdout)
						for _, want := range []string{"x-content-type-options", "x-frame-options"} {
							if !strings.Contains(headers, want) {
								return false, "missing header " + want
							}
						}
						return true, "hardening headers present"
					},
				},
				probeCheck(runner, container, "rate limiting active", "http://localhost:3000/api/ratelimit/status"),
			},
		},
		{
			Name:  "performance",
			Class: ClassPerformance,
			Checks: []Check{
				{
					Name: "container resource headroom",
					Run: func(ctx context.Context) (bool, string) {
						stats, err := runner.Stats(ctx, container)
						if err != nil {
							return false, err.Error()
						}
						if cpu := stats["cpu_pct"]; cpu > 90 {
							return false, fmt.Sprintf("cpu at %.1f%%", cpu)
						}
						if mem := stats["mem_pct"]; mem > 90 {
							return false, fmt.Sprintf("memory at %.1f%%", mem)
						}
						return true, fmt.Sprintf("cpu %.1f%% mem %.1f%%", stats["cpu_pct"], stats["mem_pct"])
					},
				},
				probeCheck(runner, container, "cache hit rate endpoint", "http://localhost:3000/api/cache/status"),
			},
		},
	}
}

// Battery bundles a Validator with its groups and the results store. It is
// the production core.CheckRunner and the full readiness entry point.
type Battery struct {
	validator *Validator
	groups    []Group
	results   storage.ResultsStore
}

// NewBattery creates a Battery over the given groups.
func NewBattery(validator *Validator, groups []Group, results storage.ResultsStore) *Battery {
	return &Battery{validator: validator, groups: groups, results: results}
}

// RunChecks runs every group and flattens the outcomes for the
// orchestrator's validate phase.
func (b *Battery) RunChecks(ctx context.Context) ([]models.CheckOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.CheckOutcome
	for _, gr := range b.validator.RunChecks(ctx, b.groups) {
		out = append(out, gr.Checks...)
	}
	return out, nil
}

// Readiness runs the full battery, rolls up the composite verdict, and
// persists the readiness report.
func (b *Battery) Readiness(ctx context.Context) (*models.ReadinessReport, error) {
	results := b.validator.RunChecks(ctx, b.groups)
	report := b.validator.OverallReadiness(b.groups, results)
	if b.results != nil {
		if err := b.results.SaveReadiness(report); err != nil {
			return report, fmt.Errorf("persisting readiness report: %w", err)
		}
	}
	return report, nil
}
