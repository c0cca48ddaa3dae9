package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past analyses, newest first",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10,
		"maximum number of records to show (0 for all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	records := a.history.List(historyLimit)
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no analyses yet"))
		return nil
	}

	for _, rec := range records {
		scenario := rec.ScenarioText
		if len(scenario) > 60 {
			scenario = scenario[:57] + "..."
		}
		fmt.Fprintf(out, "%s  %-20s %3d%%  %-8s  %s\n",
			rec.Timestamp.Local().Format(time.DateTime),
			rec.Verdict, rec.OverallConfidence, rec.Priority, scenario)
	}
	return nil
}
