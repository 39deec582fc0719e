package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/primoscope/Spotify-echo-sub014/internal/core"
	"github.com/primoscope/Spotify-echo-sub014/internal/storage"
	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (create, status, log, show, list)",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		typeFlag, _ := cmd.Flags().GetString("type")
		areaFlag, _ := cmd.Flags().GetString("area")
		priorityFlag, _ := cmd.Flags().GetString("priority")
		descFlag, _ := cmd.Flags().GetString("description")
		hoursFlag, _ := cmd.Flags().GetFloat64("hours")
		tagsFlag, _ := cmd.Flags().GetStringSlice("tags")
		depsFlag, _ := cmd.Flags().GetStringSlice("depends-on")

		task, err := Tasks.CreateTask(core.TaskFields{
			Title:          args[0],
			Description:    descFlag,
			Type:           models.TaskType(typeFlag),
			Area:           models.TaskArea(areaFlag),
			Priority:       models.TaskPriority(priorityFlag),
			EstimatedHours: hoursFlag,
			Tags:           tagsFlag,
			Dependencies:   depsFlag,
		})
		if err != nil {
			return fmt.Errorf("creating task: %w", err)
		}
		if err := Tasks.Save(); err != nil {
			return err
		}

		fmt.Printf("Created task %s\n", task.ID)
		fmt.Printf("  Type:     %s\n", task.Type)
		fmt.Printf("  Area:     %s\n", task.Area)
		fmt.Printf("  Priority: %s\n", task.Priority)
		fmt.Printf("  Estimate: %gh\n", task.EstimatedHours)
		return nil
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-id> <status>",
	Short: "Move a task to a new status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		titleFlag, _ := cmd.Flags().GetString("title")
		priorityFlag, _ := cmd.Flags().GetString("priority")

		var patch *core.StatusPatch
		if titleFlag != "" || priorityFlag != "" {
			patch = &core.StatusPatch{
				Title:    titleFlag,
				Priority: models.TaskPriority(priorityFlag),
			}
		}

		task, err := Tasks.UpdateStatus(args[0], models.TaskStatus(args[1]), patch)
		if err != nil {
			return fmt.Errorf("updating status: %w", err)
		}
		if err := Tasks.Save(); err != nil {
			return err
		}

		fmt.Printf("Task %s is now %s (progress %d%%)\n", task.ID, task.Status, task.Progress)
		return nil
	},
}

var taskLogCmd = &cobra.Command{
	Use:   "log <task-id> <hours>",
	Short: "Log time against a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		hours, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("parsing hours %q: %w", args[1], err)
		}
		noteFlag, _ := cmd.Flags().GetString("note")

		task, err := Tasks.LogTime(args[0], hours, noteFlag)
		if err != nil {
			return fmt.Errorf("logging time: %w", err)
		}
		if err := Tasks.Save(); err != nil {
			return err
		}

		fmt.Printf("Logged %gh on %s\n", hours, task.ID)
		fmt.Printf("  Spent:     %gh\n", task.TimeSpent)
		fmt.Printf("  Remaining: %gh\n", task.TimeRemaining)
		fmt.Printf("  Progress:  %d%%\n", task.Progress)
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show one task in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}
		task, err := Tasks.GetTask(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s  %s\n", task.ID, task.Title)
		fmt.Printf("  Status:    %s\n", task.Status)
		fmt.Printf("  Type:      %s / %s\n", task.Type, task.Area)
		fmt.Printf("  Priority:  %s\n", task.Priority)
		fmt.Printf("  Hours:     %g spent / %g estimated (%g remaining)\n", task.TimeSpent, task.EstimatedHours, task.TimeRemaining)
		fmt.Printf("  Progress:  %d%%\n", task.Progress)
		if task.SprintID != "" {
			fmt.Printf("  Sprint:    %s\n", task.SprintID)
		}
		if len(task.Tags) > 0 {
			fmt.Printf("  Tags:      %s\n", strings.Join(task.Tags, ", "))
		}
		if task.Description != "" {
			fmt.Printf("  %s\n", task.Description)
		}
		for _, entry := range task.TimeLog {
			fmt.Printf("  - %s: %gh %s\n", entry.LoggedAt.Format("2006-01-02"), entry.Hours, entry.Note)
		}
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}

		statusFlag, _ := cmd.Flags().GetString("status")
		priorityFlag, _ := cmd.Flags().GetString("priority")
		typeFlag, _ := cmd.Flags().GetString("type")
		areaFlag, _ := cmd.Flags().GetString("area")
		sprintFlag, _ := cmd.Flags().GetString("sprint")
		tagsFlag, _ := cmd.Flags().GetStringSlice("tags")

		filter := storage.TaskFilter{SprintID: sprintFlag, Tags: tagsFlag}
		if statusFlag != "" {
			filter.Status = []models.TaskStatus{models.TaskStatus(statusFlag)}
		}
		if priorityFlag != "" {
			filter.Priority = []models.TaskPriority{models.TaskPriority(priorityFlag)}
		}
		if typeFlag != "" {
			filter.Type = []models.TaskType{models.TaskType(typeFlag)}
		}
		if areaFlag != "" {
			filter.Area = []models.TaskArea{models.TaskArea(areaFlag)}
		}

		tasks := Tasks.QueryTasks(filter)
		if len(tasks) == 0 {
			fmt.Println("No tasks match.")
			return nil
		}

		for _, t := range tasks {
			fmt.Printf("%-28s %-12s %-8s %3d%%  %s\n", t.ID, t.Status, t.Priority, t.Progress, t.Title)
		}
		fmt.Printf("\n%d task(s)\n", len(tasks))
		return nil
	},
}

func init() {
	taskCreateCmd.Flags().String("type", "feature", "task type")
	taskCreateCmd.Flags().String("area", "backend", "task area")
	taskCreateCmd.Flags().String("priority", "medium", "task priority")
	taskCreateCmd.Flags().String("description", "", "task description")
	taskCreateCmd.Flags().Float64("hours", 4, "estimated hours")
	taskCreateCmd.Flags().StringSlice("tags", nil, "tags")
	taskCreateCmd.Flags().StringSlice("depends-on", nil, "task ids this task depends on")

	taskStatusCmd.Flags().String("title", "", "replace the task title")
	taskStatusCmd.Flags().String("priority", "", "replace the task priority")

	taskLogCmd.Flags().String("note", "", "note attached to the time entry")

	taskListCmd.Flags().String("status", "", "filter by status")
	taskListCmd.Flags().String("priority", "", "filter by priority")
	taskListCmd.Flags().String("type", "", "filter by type")
	taskListCmd.Flags().String("area", "", "filter by area")
	taskListCmd.Flags().String("sprint", "", "filter by sprint id")
	taskListCmd.Flags().StringSlice("tags", nil, "filter by tags (all must match)")

	taskCmd.AddCommand(taskCreateCmd, taskStatusCmd, taskLogCmd, taskShowCmd, taskListCmd)
	rootCmd.AddCommand(taskCmd)
}
