package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe agents, history and persisted state",
	RunE:  runReset,
}

var resetForce bool

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false,
		"skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, _ []string) error {
	if !resetForce {
		fmt.Fprint(cmd.OutOrStdout(), "This removes every agent record and all analysis history. Continue? [y/N] ")
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.orch.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "state reset")
	return nil
}
