package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fourpillars-ai/pillars/internal/diagnostics"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check backend reachability and host resources",
	Long: `Probe the analysis backend and report host CPU, memory, disk and GPU
capacity. Useful before running comprehensive analyses, which lean on
backend-side model inference.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()

	// Backend probe and hardware scan are both slow, so run them together.
	var (
		healthErr error
		info      diagnostics.SystemInfo
	)
	var g errgroup.Group
	g.Go(func() error {
		healthErr = a.orch.Health(cmd.Context())
		return nil
	})
	g.Go(func() error {
		info = diagnostics.NewCollector().Collect()
		return nil
	})
	_ = g.Wait()

	fmt.Fprintln(out, headerStyle.Render("Backend"))
	if healthErr != nil {
		fmt.Fprintf(out, "  %s unreachable: %v\n", a.cfg.Backend.URL, healthErr)
	} else {
		fmt.Fprintf(out, "  %s reachable\n", a.cfg.Backend.URL)
	}

	fmt.Fprintln(out, headerStyle.Render("Host"))
	fmt.Fprintf(out, "  cpu:    %s (%d cores, %d threads)\n", info.CPUModel, info.CPUCores, info.CPUThreads)
	fmt.Fprintf(out, "  memory: %.0f/%.0f MB (%.0f%%)\n", info.MemUsedMB, info.MemTotalMB, info.MemPercent)
	fmt.Fprintf(out, "  disk:   %.1f/%.1f GB (%.0f%%)\n", info.DiskUsedGB, info.DiskTotalGB, info.DiskPercent)
	fmt.Fprintf(out, "  load:   %.2f %.2f %.2f\n", info.LoadAvg1, info.LoadAvg5, info.LoadAvg15)

	if len(info.GPUs) > 0 {
		fmt.Fprintln(out, headerStyle.Render("GPU"))
		for _, gpu := range info.GPUs {
			line := "  " + gpu.Name
			if gpu.UtilValid {
				line += fmt.Sprintf("  util %.0f%%", gpu.UtilPercent)
			}
			if gpu.MemValid {
				line += fmt.Sprintf("  vram %.0f/%.0f MB", gpu.MemUsedMB, gpu.MemTotalMB)
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}
