package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fourpillars-ai/pillars/internal/core"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Show the agent roster and current status",
	RunE:  runAgents,
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}

func runAgents(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-12s %-10s %6s %6s  %s",
		"AGENT", "STATUS", "SCORE", "USES", "LAST USED")))

	for _, rec := range a.registry.Snapshot() {
		lastUsed := "never"
		if rec.LastUsedAt != nil {
			lastUsed = rec.LastUsedAt.Local().Format(time.RFC822)
		}
		line := fmt.Sprintf("%-12s %-10s %5d%% %6d  %s",
			rec.ID, rec.Status, rec.PerformanceScore, rec.UsageCount, lastUsed)
		fmt.Fprintln(out, statusStyle(rec.Status).Render(line))
	}
	return nil
}

func statusStyle(status core.AgentStatus) lipgloss.Style {
	switch status {
	case core.AgentStatusActive:
		return activeStyle
	case core.AgentStatusAnalyzing:
		return analyzingStyle
	default:
		return inactiveStyle
	}
}
