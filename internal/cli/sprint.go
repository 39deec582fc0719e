package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sprintCmd = &cobra.Command{
	Use:   "sprint",
	Short: "Manage sprints (create, assign, report)",
}

var sprintCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new sprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		startFlag, _ := cmd.Flags().GetString("start")
		endFlag, _ := cmd.Flags().GetString("end")
		goalsFlag, _ := cmd.Flags().GetStringSlice("goals")

		start := time.Now().UTC()
		if startFlag != "" {
			parsed, err := time.Parse("2006-01-02", startFlag)
			if err != nil {
				return fmt.Errorf("parsing start date: %w", err)
			}
			start = parsed
		}
		end := start.AddDate(0, 0, 14)
		if endFlag != "" {
			parsed, err := time.Parse("2006-01-02", endFlag)
			if err != nil {
				return fmt.Errorf("parsing end date: %w", err)
			}
			end = parsed
		}

		sprint, err := Tasks.CreateSprint(args[0], start, end, goalsFlag)
		if err != nil {
			return fmt.Errorf("creating sprint: %w", err)
		}
		if err := Tasks.Save(); err != nil {
			return err
		}

		fmt.Printf("Created sprint %s\n", sprint.ID)
		fmt.Printf("  %s — %s\n", sprint.StartDate.Format("2006-01-02"), sprint.EndDate.Format("2006-01-02"))
		for _, g := range sprint.Goals {
			fmt.Printf("  * %s\n", g)
		}
		return nil
	},
}

var sprintAssignCmd = &cobra.Command{
	Use:   "assign <task-id> <sprint-id>",
	Short: "Assign a task to a sprint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}
		if err := Tasks.AssignTaskToSprint(args[0], args[1]); err != nil {
			return fmt.Errorf("assigning task: %w", err)
		}
		if err := Tasks.Save(); err != nil {
			return err
		}
		fmt.Printf("Assigned %s to %s\n", args[0], args[1])
		return nil
	},
}

var sprintReportCmd = &cobra.Command{
	Use:   "report <sprint-id>",
	Short: "Show the progress report for a sprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}
		report, err := Tasks.SprintReport(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Sprint %s — %s\n", report.SprintID, report.Name)
		fmt.Printf("  Tasks:    %d\n", report.TotalTasks)
		fmt.Printf("  Progress: %.1f%%\n", report.Progress)
		fmt.Printf("  Hours:    %.1f spent / %.1f estimated\n", report.SpentHours, report.EstimatedHours)
		if len(report.ByStatus) > 0 {
			fmt.Println("  By status:")
			for status, count := range report.ByStatus {
				fmt.Printf("    %-12s %d\n", status, count)
			}
		}
		return nil
	},
}

func init() {
	sprintCreateCmd.Flags().String("start", "", "start date (YYYY-MM-DD, default today)")
	sprintCreateCmd.Flags().String("end", "", "end date (YYYY-MM-DD, default start + 14 days)")
	sprintCreateCmd.Flags().StringSlice("goals", nil, "sprint goals")

	sprintCmd.AddCommand(sprintCreateCmd, sprintAssignCmd, sprintReportCmd)
	rootCmd.AddCommand(sprintCmd)
}
