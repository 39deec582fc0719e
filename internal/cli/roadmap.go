package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var roadmapJSONFlag bool

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Show the roadmap summary and next milestone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task service not initialized")
		}
		summary := Tasks.RoadmapSummary()

		if roadmapJSONFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		fmt.Printf("Roadmap: %d task(s), %.1f%% complete\n", summary.TotalTasks, summary.CompletionRate)
		fmt.Printf("  Next milestone: %s\n", summary.NextMilestone)
		fmt.Printf("  Hours: %.1f spent / %.1f estimated\n", summary.SpentHours, summary.EstimatedHours)
		if len(summary.ByStatus) > 0 {
			fmt.Println("  By status:")
			for status, count := range summary.ByStatus {
				fmt.Printf("    %-12s %d\n", status, count)
			}
		}
		if len(summary.ByArea) > 0 {
			fmt.Println("  By area:")
			for area, count := range summary.ByArea {
				fmt.Printf("    %-12s %d\n", area, count)
			}
		}

		if Results != nil {
			doc, err := Results.LoadRoadmap()
			if err != nil {
				return err
			}
			if !doc.LastUpdated.IsZero() {
				fmt.Printf("  Document updated: %s\n", doc.LastUpdated.Format("2006-01-02 15:04 UTC"))
			}
		}
		return nil
	},
}

func init() {
	roadmapCmd.Flags().BoolVar(&roadmapJSONFlag, "json", false, "emit the summary as JSON")
	rootCmd.AddCommand(roadmapCmd)
}
