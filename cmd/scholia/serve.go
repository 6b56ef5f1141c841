package scholia

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/scholia"
	"github.com/soundprediction/scholia/pkg/config"
	"github.com/soundprediction/scholia/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Scholia HTTP server",
	Long: `Start the Scholia HTTP server to provide REST API access to the timetable graph.

The server provides endpoints for:
- Building timetables from inline tables (POST /api/v1/timetables)
- Reading nodes, neighbours and store statistics back
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServe,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serveCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&serverMode, "mode", "release", "Server mode (debug, release, test)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	overrideServerFlags(cmd, env.cfg)
	if err := validateServerConfig(env.cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	client, err := env.newClient(store, &scholia.Config{CreateIndices: true})
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	srv := server.New(env.cfg, client, env.logger)
	srv.Setup()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		env.logger.Info("Shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		env.logger.Info("Server stopped gracefully")
		return nil
	}
}

func overrideServerFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") || cfg.Server.Mode == "" {
		cfg.Server.Mode = serverMode
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Database.Driver == "neo4j" && cfg.Database.URI == "" {
		return fmt.Errorf("database URI is required")
	}
	return nil
}
