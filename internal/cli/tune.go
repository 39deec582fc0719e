package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/primoscope/Spotify-echo-sub014/pkg/models"
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Inspect and control the performance auto-tuner",
}

var tuneStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current tuning configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tuner == nil {
			return fmt.Errorf("tuner not initialized")
		}
		cfg := Tuner.Config()

		fmt.Printf("Optimization level: %s\n", cfg.OptimizationLevel)
		fmt.Printf("  Cache TTL:           %s\n", cfg.CacheTTL)
		fmt.Printf("  Concurrent workflows: %d\n", cfg.MaxConcurrentWorkflows)
		fmt.Printf("  Batch size:          %d\n", cfg.BatchSize)
		fmt.Printf("  Worker pool:         %d\n", cfg.WorkerPoolSize)
		fmt.Printf("  Memory limit:        %d MB\n", cfg.MemoryLimitMB)
		fmt.Printf("  Execution timeout:   %s\n", cfg.ExecutionTimeout)
		fmt.Printf("  Retries:             %d (delay %s)\n", cfg.RetryAttempts, cfg.RetryDelay)
		return nil
	},
}

var tuneApplyCmd = &cobra.Command{
	Use:   "apply <strategy>",
	Short: "Manually apply an optimization preset (aggressive, balanced, conservative)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tuner == nil {
			return fmt.Errorf("tuner not initialized")
		}
		level := models.OptimizationLevel(args[0])
		if !models.ValidOptimizationLevels[level] {
			return fmt.Errorf("unknown strategy %q", args[0])
		}
		if err := Tuner.ApplyStrategy(level, models.OptimizationManual, nil, 0); err != nil {
			return fmt.Errorf("applying strategy: %w", err)
		}
		fmt.Printf("Applied %s preset\n", level)
		return nil
	},
}

var tuneHistoryLimitFlag int

var tuneHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the optimization audit trail",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tuner == nil {
			return fmt.Errorf("tuner not initialized")
		}
		records := Tuner.History()
		if len(records) == 0 {
			fmt.Println("No optimizations recorded.")
			return nil
		}
		if tuneHistoryLimitFlag > 0 && len(records) > tuneHistoryLimitFlag {
			records = records[len(records)-tuneHistoryLimitFlag:]
		}

		for _, r := range records {
			label := string(r.Strategy)
			if r.Type == models.OptimizationTargeted {
				label = "target " + r.Target
			}
			fmt.Printf("%s  %-9s %-18s overall %.1f\n", r.Timestamp.Format("2006-01-02 15:04:05"), r.Type, label, r.Overall)
		}
		return nil
	},
}

var tuneWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the auto-tune control loop until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tuner == nil {
			return fmt.Errorf("tuner not initialized")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Println("Auto-tuner running; ctrl-c to stop.")
		Tuner.Run(ctx)
		return nil
	},
}

func init() {
	tuneHistoryCmd.Flags().IntVar(&tuneHistoryLimitFlag, "limit", 20, "show at most this many recent records (0 for all)")

	tuneCmd.AddCommand(tuneStatusCmd, tuneApplyCmd, tuneHistoryCmd, tuneWatchCmd)
	rootCmd.AddCommand(tuneCmd)
}
