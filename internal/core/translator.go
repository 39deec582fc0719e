package core

import (
	"regexp"
	"strings"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// Classifier converts free-text research output into structured tasks.
// Implementations are heuristic keyword matchers, not NLP: known failure
// modes include imperative verbs inside negations ("do not deploy" still
// classifies as deployment) and first-rule-wins ordering ("test the new
// feature" is a testing task, never a feature). Swap the implementation
// rather than patching rules in place if higher accuracy is needed.
type Classifier interface {
	Translate(query, researchText string) []TaskFields
}

// typeRule maps a keyword pattern to a task type. Rules are tested in
// order; the first match wins, so rule order is rule priority.
type typeRule struct {
	pattern   *regexp.Regexp
	taskType  models.TaskType
	baseHours float64
}

var typeRules = []typeRule{
	{regexp.MustCompile(`(?i)\b(implement|create|build)\b`), models.TypeFeature, 8},
	{regexp.MustCompile(`(?i)\b(optimi[sz]e|improve)\b`), models.TypeOptimization, 6},
	{regexp.MustCompile(`(?i)\b(test|validate)\b`), models.TypeTesting, 4},
	{regexp.MustCompile(`(?i)\b(fix|resolve)\b`), models.TypeBugfix, 3},
	{regexp.MustCompile(`(?i)\bdocument\b`), models.TypeDocumentation, 2},
	{regexp.MustCompile(`(?i)\brefactor\b`), models.TypeRefactoring, 6},
	{regexp.MustCompile(`(?i)\b(integrate|connect)\b`), models.TypeIntegration, 6},
	{regexp.MustCompile(`(?i)\b(deploy|docker|ci[-/]?cd)\b`), models.TypeDeployment, 4},
}

// areaVocab is tested independently of the type rules over the same
// sentence. Default area when nothing matches is backend.
var areaVocab = []struct {
	pattern *regexp.Regexp
	area    models.TaskArea
}{
	{regexp.MustCompile(`(?i)\b(frontend|react|ui|component|render|css|browser|player)\b`), models.AreaFrontend},
	{regexp.MustCompile(`(?i)\b(integration|api|spotify|webhook|oauth|third[- ]party)\b`), models.AreaIntegration},
	{regexp.MustCompile(`(?i)\b(test|testing|coverage|e2e|unit)\b`), models.AreaTesting},
	{regexp.MustCompile(`(?i)\b(deploy|deployment|docker|kubernetes|nginx|ssl|dns)\b`), models.AreaDeployment},
	{regexp.MustCompile(`(?i)\b(backend|server|database|endpoint|service|cache|queue)\b`), models.AreaBackend},
}

// priorityVocab is tested independently; default priority is medium.
var priorityVocab = []struct {
	pattern  *regexp.Regexp
	priority models.TaskPriority
}{
	{regexp.MustCompile(`(?i)\b(critical|urgent|security|vulnerability|breaking)\b`), models.PriorityCritical},
	{regexp.MustCompile(`(?i)\b(important|high[- ]priority|significant|major)\b`), models.PriorityHigh},
	{regexp.MustCompile(`(?i)\b(minor|trivial|low[- ]priority|nice[- ]to[- ]have|cosmetic)\b`), models.PriorityLow},
}

var (
	simplePattern  = regexp.MustCompile(`(?i)\b(simple|basic)\b`)
	complexPattern = regexp.MustCompile(`(?i)\b(complex|advanced|comprehensive)\b`)

	// Leading modal phrases stripped from sentence titles.
	modalPrefix = regexp.MustCompile(`(?i)^(we should|we need to|we must|you should|it would be good to|consider|please)\s+`)

	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

// minSentenceLen filters out fragments left over from sentence splitting.
const minSentenceLen = 15

// keywordClassifier is the stock heuristic Classifier.
type keywordClassifier struct{}

// NewClassifier returns the keyword-based Classifier.
func NewClassifier() Classifier {
	return &keywordClassifier{}
}

// Translate splits researchText into sentences, classifies each against the
// ordered type rules, and returns one TaskFields per matching sentence. When
// no sentence matches, exactly one fallback task summarizing the query is
// returned, classified from the query itself (default feature).
func (c *keywordClassifier) Translate(query, researchText string) []TaskFields {
	var out []TaskFields
	for _, sentence := range splitSentences(researchText) {
		rule, ok := matchTypeRule(sentence)
		if !ok {
			continue
		}
		out = append(out, TaskFields{
			Title:          cleanTitle(sentence),
			Description:    sentence,
			Type:           rule.taskType,
			Area:           inferArea(sentence),
			Priority:       inferPriority(sentence),
			EstimatedHours: estimateHours(rule.baseHours, sentence),
			Tags:           inferTags(sentence),
		})
	}

	if len(out) == 0 {
		taskType := models.TypeFeature
		baseHours := 8.0
		if rule, ok := matchTypeRule(query); ok {
			taskType = rule.taskType
			baseHours = rule.baseHours
		}
		out = append(out, TaskFields{
			Title:          cleanTitle(query),
			Description:    "Research follow-up: " + query,
			Type:           taskType,
			Area:           inferArea(query),
			Priority:       inferPriority(query),
			EstimatedHours: estimateHours(baseHours, query),
			Tags:           inferTags(query),
		})
	}
	return out
}

func splitSentences(text string) []string {
	var sentences []string
	for _, raw := range sentenceSplit.Split(text, -1) {
		s := strings.TrimSpace(raw)
		if len(s) >= minSentenceLen {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func matchTypeRule(sentence string) (typeRule, bool) {
	for _, rule := range typeRules {
		if rule.pattern.MatchString(sentence) {
			return rule, true
		}
	}
	return typeRule{}, false
}

func inferArea(sentence string) models.TaskArea {
	for _, v := range areaVocab {
		if v.pattern.MatchString(sentence) {
			return v.area
		}
	}
	return models.AreaBackend
}

func inferPriority(sentence string) models.TaskPriority {
	for _, v := range priorityVocab {
		if v.pattern.MatchString(sentence) {
			return v.priority
		}
	}
	return models.PriorityMedium
}

// estimateHours scales the per-type base: halved for simple/basic work,
// multiplied 1.5x for complex/advanced/comprehensive, rounded with a floor
// of one hour.
func estimateHours(base float64, sentence string) float64 {
	hours := base
	if simplePattern.MatchString(sentence) {
		hours *= 0.5
	} else if complexPattern.MatchString(sentence) {
		hours *= 1.5
	}
	rounded := float64(int(hours + 0.5))
	if rounded < 1 {
		rounded = 1
	}
	return rounded
}

func cleanTitle(sentence string) string {
	title := modalPrefix.ReplaceAllString(strings.TrimSpace(sentence), "")
	if title == "" {
		return sentence
	}
	return strings.ToUpper(title[:1]) + title[1:]
}

// tagVocab derives free-form tags from well-known vocabulary hits.
var tagVocab = []struct {
	pattern *regexp.Regexp
	tag     string
}{
	{regexp.MustCompile(`(?i)\breact\b`), "react"},
	{regexp.MustCompile(`(?i)\bspotify\b`), "spotify"},
	{regexp.MustCompile(`(?i)\bdocker\b`), "docker"},
	{regexp.MustCompile(`(?i)\bapi\b`), "api"},
	{regexp.MustCompile(`(?i)\bcache\b`), "cache"},
	{regexp.MustCompile(`(?i)\bsecurity\b`), "security"},
	{regexp.MustCompile(`(?i)\bperformance\b`), "performance"},
	{regexp.MustCompile(`(?i)\bdatabase\b`), "database"},
}

func inferTags(sentence string) []string {
	var tags []string
	for _, v := range tagVocab {
		if v.pattern.MatchString(sentence) {
			tags = append(tags, v.tag)
		}
	}
	return tags
}
