package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fourpillars-ai/pillars/internal/core"
	"github.com/fourpillars-ai/pillars/internal/report"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Show aggregate metrics over the analysis history",
	RunE:  runReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
}

func runReports(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	summary := report.Metrics(a.history.List(0), time.Now())
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, headerStyle.Render("Analysis metrics"))
	fmt.Fprintf(out, "  total analyses:     %d\n", summary.TotalCount)
	fmt.Fprintf(out, "  completed:          %d\n", summary.CompletedCount)
	fmt.Fprintf(out, "  this month:         %d\n", summary.ThisMonthCount)
	fmt.Fprintf(out, "  average confidence: %.1f%%\n", summary.AverageConfidence)

	if len(summary.PriorityDistribution) > 0 {
		fmt.Fprintln(out, headerStyle.Render("Priorities"))
		for _, p := range []string{"critical", "high", "medium", "low"} {
			if n := summary.PriorityDistribution[core.Priority(p)]; n > 0 {
				fmt.Fprintf(out, "  %-8s %d\n", p, n)
			}
		}
	}

	if len(summary.AgentPerformance) > 0 {
		fmt.Fprintln(out, headerStyle.Render("Agent performance"))
		for _, stat := range summary.AgentPerformance {
			fmt.Fprintf(out, "  %-12s %.1f%% over %d analyses\n",
				stat.AgentID, stat.AverageConfidence, stat.Appearances)
		}
	}

	if len(summary.TrendsByDay) > 0 {
		fmt.Fprintln(out, headerStyle.Render("Daily trend (30d)"))
		for _, day := range summary.TrendsByDay {
			fmt.Fprintf(out, "  %s  %.1f%% (%d)\n", day.Day, day.AverageConfidence, day.Count)
		}
	}
	return nil
}
