package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/primoscope/Spotify-echo-sub014/internal/storage"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

// Dashboard panel indices.
const (
	panelTasks = iota
	panelTuner
	panelRoadmap
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	taskCounts map[models.TaskStatus]int
	tunerData  *tunerSnapshot
	roadmap    *models.RoadmapSummary

	// State.
	loading bool
	err     error
}

type tunerSnapshot struct {
	config  models.TuningConfig
	recent  []models.OptimizationRecord
	history int
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	taskCounts map[models.TaskStatus]int
	tuner      *tunerSnapshot
	roadmap    *models.RoadmapSummary
	err        error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusDone       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusReview     = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	statusTesting    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	statusPlanned    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusBacklog    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelTasks,
		loading:     true,
		taskCounts:  make(map[models.TaskStatus]int),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.taskCounts = msg.taskCounts
		m.tunerData = msg.tuner
		m.roadmap = msg.roadmap
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" AutoDev Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	tasksPanel := m.renderTasksPanel()
	tunerPanel := m.renderTunerPanel()
	roadmapPanel := m.renderRoadmapPanel()

	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 3
		tasksPanel = m.applyPanelStyle(panelTasks, tasksPanel, colWidth-4)
		tunerPanel = m.applyPanelStyle(panelTuner, tunerPanel, colWidth-4)
		roadmapPanel = m.applyPanelStyle(panelRoadmap, roadmapPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, tasksPanel, tunerPanel, roadmapPanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		tasksPanel = m.applyPanelStyle(panelTasks, tasksPanel, panelWidth)
		tunerPanel = m.applyPanelStyle(panelTuner, tunerPanel, panelWidth)
		roadmapPanel = m.applyPanelStyle(panelRoadmap, roadmapPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, tasksPanel, tunerPanel, roadmapPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderTasksPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Tasks"))
	b.WriteString("\n")

	if len(m.taskCounts) == 0 {
		b.WriteString("  No tasks found.")
		return b.String()
	}

	// Display in lifecycle order.
	order := []models.TaskStatus{
		models.StatusInProgress,
		models.StatusReview,
		models.StatusTesting,
		models.StatusPlanned,
		models.StatusBacklog,
		models.StatusDone,
	}
	for _, status := range order {
		count, ok := m.taskCounts[status]
		if !ok || count == 0 {
			continue
		}
		label := fmt.Sprintf("  %-14s %d", status, count)
		b.WriteString(styleForStatus(status).Render(label))
		b.WriteString("\n")
	}

	total := 0
	for _, c := range m.taskCounts {
		total += c
	}
	b.WriteString(fmt.Sprintf("\n  Total: %d", total))

	return b.String()
}

func (m dashboardModel) renderTunerPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Auto-Tuner"))
	b.WriteString("\n")

	if m.tunerData == nil {
		b.WriteString("  Tuner not running.")
		return b.String()
	}

	cfg := m.tunerData.config
	b.WriteString(fmt.Sprintf("  Level:       %s\n", cfg.OptimizationLevel))
	b.WriteString(fmt.Sprintf("  Cache TTL:   %s\n", cfg.CacheTTL))
	b.WriteString(fmt.Sprintf("  Concurrency: %d\n", cfg.MaxConcurrentWorkflows))
	b.WriteString(fmt.Sprintf("  Workers:     %d\n", cfg.WorkerPoolSize))
	b.WriteString(fmt.Sprintf("  Batch:       %d\n", cfg.BatchSize))

	if len(m.tunerData.recent) > 0 {
		b.WriteString("\n  Recent optimizations:\n")
		for _, r := range m.tunerData.recent {
			label := string(r.Strategy)
			if r.Type == models.OptimizationTargeted {
				label = "target " + r.Target
			}
			b.WriteString(fmt.Sprintf("  - %s %s\n", r.Timestamp.Format("15:04:05"), label))
		}
	}
	b.WriteString(fmt.Sprintf("\n  History: %d record(s)", m.tunerData.history))

	return b.String()
}

func (m dashboardModel) renderRoadmapPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Roadmap"))
	b.WriteString("\n")

	if m.roadmap == nil {
		b.WriteString("  No roadmap data.")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  Complete:  %.1f%%\n", m.roadmap.CompletionRate))
	b.WriteString(fmt.Sprintf("  Milestone: %s\n", m.roadmap.NextMilestone))
	b.WriteString(fmt.Sprintf("  Hours:     %.1f / %.1f\n", m.roadmap.SpentHours, m.roadmap.EstimatedHours))

	if len(m.roadmap.ByArea) > 0 {
		b.WriteString("\n  By area:\n")
		for _, area := range []models.TaskArea{models.AreaFrontend, models.AreaBackend, models.AreaIntegration, models.AreaTesting, models.AreaDeployment} {
			if count := m.roadmap.ByArea[area]; count > 0 {
				b.WriteString(fmt.Sprintf("    %-12s %d\n", area, count))
			}
		}
	}

	return b.String()
}

func styleForStatus(status models.TaskStatus) lipgloss.Style {
	switch status {
	case models.StatusInProgress:
		return statusInProgress
	case models.StatusDone:
		return statusDone
	case models.StatusReview:
		return statusReview
	case models.StatusTesting:
		return statusTesting
	case models.StatusPlanned:
		return statusPlanned
	case models.StatusBacklog:
		return statusBacklog
	default:
		return lipgloss.NewStyle()
	}
}

func loadData() tea.Msg {
	result := dataLoadedMsg{
		taskCounts: make(map[models.TaskStatus]int),
	}

	if Tasks != nil {
		for _, t := range Tasks.QueryTasks(storage.TaskFilter{}) {
			result.taskCounts[t.Status]++
		}
		result.roadmap = Tasks.RoadmapSummary()
	}

	if Tuner != nil {
		history := Tuner.History()
		recent := history
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		result.tuner = &tunerSnapshot{
			config:  Tuner.Config(),
			recent:  recent,
			history: len(history),
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for tasks, tuning, and roadmap",
	Long: `Launch an interactive terminal dashboard showing task status, the
auto-tuner's current configuration, and roadmap progress.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
