package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

var (
	runDescriptionFlag string
	runPriorityFlag    string
)

var runCmd = &cobra.Command{
	Use:   "run <component>...",
	Short: "Run the development pipeline for one or more components",
	Long: `Run the five-phase pipeline (research, implement, validate, benchmark,
update roadmap) for each named component, in order. Components:
frontend, backend, spotify, recommendations, data.

Workflows generated by the run itself (regressions, recoveries) are
appended to the queue and processed in the same invocation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Orch == nil {
			return fmt.Errorf("orchestrator not initialized")
		}

		priority := models.TaskPriority(runPriorityFlag)
		if !models.ValidPriorities[priority] {
			return fmt.Errorf("invalid priority %q", runPriorityFlag)
		}

		var queue []models.Workflow
		for _, arg := range args {
			component := models.WorkflowComponent(arg)
			if !models.ValidWorkflowComponents[component] {
				return fmt.Errorf("unknown component %q", arg)
			}
			queue = append(queue, models.Workflow{
				Name:        fmt.Sprintf("%s improvement cycle", component),
				Component:   component,
				Priority:    priority,
				Description: runDescriptionFlag,
				State:       models.WorkflowQueued,
				QueuedAt:    time.Now().UTC(),
			})
		}

		summary, err := Orch.Run(cmd.Context(), queue)
		if err != nil {
			return fmt.Errorf("running pipeline: %w", err)
		}

		fmt.Printf("Processed %d workflow(s)\n", summary.Processed)
		fmt.Printf("  Completed: %d\n", summary.Completed)
		fmt.Printf("  Failed:    %d\n", summary.Failed)
		fmt.Printf("  Tasks:     %d generated\n", summary.TasksGenerated)

		if summary.Failed > 0 {
			return fmt.Errorf("%d workflow(s) failed; recovery tasks were created", summary.Failed)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runDescriptionFlag, "description", "general improvements", "context appended to every research query")
	runCmd.Flags().StringVar(&runPriorityFlag, "priority", "medium", "workflow priority (critical, high, medium, low)")
	rootCmd.AddCommand(runCmd)
}
