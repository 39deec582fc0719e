// Package validation runs the integration readiness battery: named check
// groups whose pass rates roll up into a composite readiness verdict with
// remediation guidance.
package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/primoscope/Spotify-echo-sub014/internal/observability"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// GroupClass selects which readiness threshold a group is held to.
// Security and correctness checks are held to a stricter bar than general
// integration or performance checks.
type GroupClass string

const (
	ClassIntegration GroupClass = "integration"
	ClassPerformance GroupClass = "performance"
	ClassSecurity    GroupClass = "security"
)

// Check is a single named probe. Run is collaborator-backed in production
// and injected with fixed outcomes in tests.
type Check struct {
	Name string
	Run  func(ctx context.Context) (bool, string)
}

// Group is a named battery of checks sharing a threshold class.
type Group struct {
	Name   string
	Class  GroupClass
	Checks []Check
}

// Policy holds the configurable thresholds. A group passes when its own
// rate reaches GroupPassRate; overall readiness additionally requires the
// mean rate per class to reach that class's threshold.
type Policy struct {
	GroupPassRate        float64 `mapstructure:"group_pass_rate"`
	IntegrationThreshold float64 `mapstructure:"integration_threshold"`
	SecurityThreshold    float64 `mapstructure:"security_threshold"`
}

// DefaultPolicy returns the stock thresholds: 0.8 for groups and for
// integration/performance readiness, 0.9 for security.
func DefaultPolicy() Policy {
	return Policy{
		GroupPassRate:        0.8,
		IntegrationThreshold: 0.8,
		SecurityThreshold:    0.9,
	}
}

// remediations maps a failing group name to canned remediation text.
var remediations = map[string]string{
	"api-endpoints":  "Verify API server is running and all routes are registered; check server logs for startup errors",
	"data-flow":      "Inspect the recommendation pipeline stages for schema mismatches between producer and consumer",
	"authentication": "Re-check OAuth client credentials and token refresh handling",
	"real-time":      "Confirm websocket gateway availability and event fan-out configuration",
	"error-handling": "Audit error paths for swallowed failures and missing user-facing messages",
	"security":       "Review security scan output; rotate any exposed credentials before deploying",
	"performance":    "Profile slow endpoints and revisit cache TTL and concurrency settings",
}

// Validator runs check groups and aggregates readiness.
type Validator struct {
	policy Policy
	events observability.EventLog
}

// NewValidator creates a Validator with the given policy.
func NewValidator(policy Policy, events observability.EventLog) *Validator {
	if events == nil {
		events = observability.NopEventLog()
	}
	return &Validator{policy: policy, events: events}
}

// RunChecks executes every check in every group, computing per-group pass
// rates. Check failures are outcomes, not errors: a failing probe never
// aborts the battery.
func (v *Validator) RunChecks(ctx context.Context, groups []Group) []models.GroupResult {
	results := make([]models.GroupResult, 0, len(groups))
	for _, g := range groups {
		gr := models.GroupResult{Name: g.Name, Total: len(g.Checks)}
		for _, check := range g.Checks {
			passed, detail := check.Run(ctx)
			gr.Checks = append(gr.Checks, models.CheckOutcome{Name: check.Name, Passed: passed, Detail: detail})
			if passed {
				gr.Passes++
			}
		}
		if gr.Total > 0 {
			gr.SuccessRate = float64(gr.Passes) / float64(gr.Total)
		}
		gr.Success = gr.SuccessRate >= v.policy.GroupPassRate
		results = append(results, gr)
	}
	return results
}

// OverallReadiness rolls group results into the composite verdict: success
// requires every group to pass individually and the mean rate per class to
// clear that class's threshold.
func (v *Validator) OverallReadiness(groups []Group, results []models.GroupResult) *models.ReadinessReport {
	report := &models.ReadinessReport{
		Environment: "docker",
		Timestamp:   time.Now().UTC(),
		Groups:      results,
		Success:     true,
	}

	classOf := make(map[string]GroupClass, len(groups))
	for _, g := range groups {
		classOf[g.Name] = g.Class
	}

	var sum float64
	classSums := map[GroupClass]float64{}
	classCounts := map[GroupClass]int{}
	for _, r := range results {
		sum += r.SuccessRate
		class := classOf[r.Name]
		classSums[class] += r.SuccessRate
		classCounts[class]++

		if !r.Success {
			report.Success = false
			if hint, ok := remediations[r.Name]; ok {
				report.Recommendations = append(report.Recommendations, fmt.Sprintf("%s: %s", r.Name, hint))
			} else {
				report.Recommendations = append(report.Recommendations, fmt.Sprintf("%s: investigate failing checks", r.Name))
			}
			v.bucketNextStep(report, class, r.Name)
		}
	}
	if len(results) > 0 {
		report.OverallScore = sum / float64(len(results)) * 100
	}

	for class, count := range classCounts {
		mean := classSums[class] / float64(count)
		threshold := v.policy.IntegrationThreshold
		if class == ClassSecurity {
			threshold = v.policy.SecurityThreshold
		}
		if mean < threshold {
			report.Success = false
		}
	}

	if report.Success {
		report.Status = "ready"
	} else {
		report.Status = "not-ready"
	}

	v.events.Info(observability.EventValidationDone, fmt.Sprintf("readiness %s (%.1f)", report.Status, report.OverallScore), map[string]any{
		"success": report.Success,
		"score":   report.OverallScore,
	})
	return report
}

// bucketNextStep files remediation work by urgency: failing security is
// immediate, failing performance is short-term, everything else long-term.
func (v *Validator) bucketNextStep(report *models.ReadinessReport, class GroupClass, groupName string) {
	switch class {
	case ClassSecurity:
		report.NextSteps.Immediate = append(report.NextSteps.Immediate, fmt.Sprintf("Resolve %s failures before any deployment", groupName))
	case ClassPerformance:
		report.NextSteps.ShortTerm = append(report.NextSteps.ShortTerm, fmt.Sprintf("Schedule performance work for %s within the current sprint", groupName))
	default:
		report.NextSteps.LongTerm = append(report.NextSteps.LongTerm, fmt.Sprintf("Track %s stabilization on the roadmap", groupName))
	}
}
