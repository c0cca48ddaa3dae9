package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fourpillars-ai/pillars/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST/SSE server",
	Long: `Start the pillars server. It exposes the analysis API under /api/v1
and streams lifecycle events over /api/v1/sse/events.

Examples:
  # Start with defaults (127.0.0.1:8421)
  pillars serve

  # Bind elsewhere
  pillars serve --host 0.0.0.0 --port 9000`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "host address to bind to")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	webCfg := web.DefaultConfig()
	webCfg.Host = a.cfg.Server.Host
	webCfg.Port = a.cfg.Server.Port
	if a.cfg.Server.ShutdownTimeout > 0 {
		webCfg.ShutdownTimeout = a.cfg.Server.ShutdownTimeout
	}
	if len(a.cfg.Server.AllowedOrigins) > 0 {
		webCfg.CORSOrigins = a.cfg.Server.AllowedOrigins
	}
	if serveHost != "" {
		webCfg.Host = serveHost
	}
	if servePort != 0 {
		webCfg.Port = servePort
	}

	srv := web.New(webCfg, a.orch, a.registry, a.history, a.bus, a.logger)
	srv.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
	case <-cmd.Context().Done():
	}

	return srv.Shutdown(context.Background())
}
