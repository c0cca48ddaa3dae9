package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/fourpillars-ai/pillars/internal/clip"
	"github.com/fourpillars-ai/pillars/internal/core"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [scenario]",
	Short: "Run a one-shot scenario analysis",
	Long: `Submit a business scenario to the analysis backend and print the
derived record: verdict, overall confidence, per-agent scores and key
insights.

Examples:
  pillars analyze "Expand into the Nordic market next quarter"
  pillars analyze --depth comprehensive "Acquire competitor X"
  pillars analyze --copy "Launch the subscription tier"`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeDepth string
	analyzeCopy  bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeDepth, "depth", "d", "standard",
		"analysis depth (quick, standard, comprehensive)")
	analyzeCmd.Flags().BoolVar(&analyzeCopy, "copy", false,
		"copy the recommendation to the clipboard")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	depth := core.Depth(analyzeDepth)
	if !cmd.Flags().Changed("depth") {
		var ui core.UIState
		if found, err := a.store.Load(core.NamespaceUI, &ui); err == nil && found && ui.LastDepth != "" {
			depth = ui.LastDepth
		}
	}

	record, err := a.orch.Submit(cmd.Context(), core.AnalyzeRequest{
		Scenario: args[0],
		Depth:    depth,
	})
	if err != nil {
		return err
	}

	if err := a.store.Save(core.NamespaceUI, core.UIState{LastDepth: depth}); err != nil {
		a.logger.Warn("saving ui state failed", "error", err.Error())
	}

	md := renderRecordMarkdown(record)
	out, rerr := renderMarkdown(md)
	if rerr != nil {
		out = md
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if analyzeCopy {
		res, err := clip.WriteAll(recommendationText(record))
		if err != nil {
			a.logger.Warn("clipboard copy failed", "error", err.Error())
		} else if res.Method == clip.MethodFile {
			fmt.Fprintf(cmd.ErrOrStderr(), "clipboard unavailable, saved to %s\n", res.FilePath)
		}
	}
	return nil
}

func renderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}

func renderRecordMarkdown(r core.AnalysisRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis %s\n\n", r.ID)
	fmt.Fprintf(&b, "**Verdict:** %s  \n", r.Verdict)
	fmt.Fprintf(&b, "**Confidence:** %d%%  \n", r.OverallConfidence)
	fmt.Fprintf(&b, "**Priority:** %s  \n", r.Priority)
	fmt.Fprintf(&b, "**Duration:** %.1fs\n\n", r.ExecutionSeconds)

	if len(r.RawResult) > 0 {
		b.WriteString("## Agents\n\n")
		for _, res := range r.RawResult {
			fmt.Fprintf(&b, "- **%s** (%d%%): %s\n", res.AgentName, res.Confidence, res.Recommendation)
		}
		b.WriteString("\n")
	}

	if len(r.KeyInsights) > 0 {
		b.WriteString("## Key insights\n\n")
		for _, insight := range r.KeyInsights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
	}
	return b.String()
}

func recommendationText(r core.AnalysisRecord) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("%s (%d%% confidence)", r.Verdict, r.OverallConfidence))
	for _, res := range r.RawResult {
		lines = append(lines, fmt.Sprintf("%s: %s", res.AgentName, res.Recommendation))
	}
	return strings.Join(lines, "\n")
}
