package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fourpillars-ai/pillars/internal/config"
	"github.com/fourpillars-ai/pillars/internal/core"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .pillars.yaml",
	RunE:  runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"overwrite an existing config file")
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := ".pillars.yaml"
	if cfgFile != "" {
		path = cfgFile
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := &config.Config{
		Log:     config.LogConfig{Level: "info", Format: "auto"},
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 8421},
		Backend: config.BackendConfig{URL: "http://localhost:8000"},
		State:   config.StateConfig{Backend: "json", Dir: ".pillars/state"},
		History: config.HistoryConfig{Capacity: core.DefaultHistoryCapacity},
		Agents:  core.DefaultAgents(),
	}
	if err := config.Write(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
