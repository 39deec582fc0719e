package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateStrictFlag bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the integration readiness battery",
	Long: `Run every configured check group against the validation container,
compute the composite readiness verdict, and persist the report.

With --strict the command exits non-zero when the system is not ready.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Battery == nil {
			return fmt.Errorf("validation battery not initialized")
		}

		report, err := Battery.Readiness(cmd.Context())
		if err != nil {
			return fmt.Errorf("running validation: %w", err)
		}

		fmt.Printf("Readiness: %s (score %.1f)\n", report.Status, report.OverallScore)
		for _, group := range report.Groups {
			marker := "ok"
			if !group.Success {
				marker = "FAIL"
			}
			fmt.Printf("  [%-4s] %-16s %d/%d passed\n", marker, group.Name, group.Passes, group.Total)
		}

		if len(report.Recommendations) > 0 {
			fmt.Println("\nRecommendations:")
			for _, rec := range report.Recommendations {
				fmt.Printf("  - %s\n", rec)
			}
		}
		printSteps := func(label string, steps []string) {
			if len(steps) == 0 {
				return
			}
			fmt.Printf("\n%s:\n", label)
			for _, s := range steps {
				fmt.Printf("  - %s\n", s)
			}
		}
		printSteps("Immediate", report.NextSteps.Immediate)
		printSteps("Short term", report.NextSteps.ShortTerm)
		printSteps("Long term", report.NextSteps.LongTerm)

		if validateStrictFlag && !report.Success {
			return fmt.Errorf("system is not ready")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrictFlag, "strict", false, "exit non-zero when not ready")
	rootCmd.AddCommand(validateCmd)
}
