package scholia

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/scholia"
	"github.com/soundprediction/scholia/pkg/alert"
	"github.com/soundprediction/scholia/pkg/config"
	"github.com/soundprediction/scholia/pkg/driver"
	"github.com/soundprediction/scholia/pkg/export"
	scholiaLogger "github.com/soundprediction/scholia/pkg/logger"
	"github.com/soundprediction/scholia/pkg/telemetry"
	"github.com/soundprediction/scholia/pkg/types"
	"github.com/soundprediction/scholia/pkg/workspace"
)

// environment carries what every command needs: configuration, the logger and the telemetry
// flush hook.
type environment struct {
	cfg    *config.Config
	logger *slog.Logger

	closeTelemetry func() error
}

// setup loads configuration and builds the logger with its telemetry sinks.
// A telemetry sink that cannot be opened is reported and skipped.
func setup(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	base, err := scholiaLogger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log configuration: %w", err)
	}
	handler, closeTelemetry, err := telemetry.Wrap(base, cfg.Telemetry)
	logger := slog.New(handler)
	if err != nil {
		logger.Warn("Telemetry disabled", "error", err)
	}
	slog.SetDefault(logger)

	return &environment{cfg: cfg, logger: logger, closeTelemetry: closeTelemetry}, nil
}

func (e *environment) Close() {
	if err := e.closeTelemetry(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to flush telemetry: %v\n", err)
	}
}

// openStore opens the configured graph store behind the circuit breaker.
func (e *environment) openStore(ctx context.Context) (driver.GraphStore, error) {
	db := e.cfg.Database
	store, err := driver.NewGraphStore(ctx, &driver.Config{
		Driver:   db.Driver,
		URI:      db.URI,
		Username: db.Username,
		Password: db.Password,
		Database: db.Database,
		Path:     db.Path,
	}, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", db.Driver, err)
	}
	e.logger.Info("Opened graph store", "provider", store.Provider())
	alerter := alert.New(e.cfg.Alert, e.logger)
	return driver.NewBreakerStore(store, e.cfg.CircuitBreaker, alerter, e.logger), nil
}

// newClient creates a client. The workspace is attached only when enabled and not a dry run;
// builds are journaled when checkpoints are enabled.
func (e *environment) newClient(store driver.GraphStore, opts *scholia.Config) (*scholia.Client, error) {
	var ws *workspace.Workspace
	if e.cfg.Workspace.Enabled && !opts.DryRun && e.cfg.Workspace.Root != "" {
		ws = workspace.New(e.cfg.Workspace.Root, e.logger)
	}
	if e.cfg.Checkpoint.Enabled && opts.CheckpointDir == "" {
		opts.CheckpointDir = e.checkpointDir()
	}
	return scholia.NewClient(store, ws, opts, e.logger)
}

// checkpointDir returns the configured journal directory, falling back to the temp directory.
func (e *environment) checkpointDir() string {
	if e.cfg.Checkpoint.Dir != "" {
		return e.cfg.Checkpoint.Dir
	}
	return filepath.Join(os.TempDir(), "scholia-checkpoints")
}

// exportOptions names the optional export destinations of a build.
type exportOptions struct {
	parquetDir  string
	icsFile     string
	timezone    string
	includeDays bool
}

func (o exportOptions) empty() bool {
	return o.parquetDir == "" && o.icsFile == ""
}

// writeExports writes the result batch to Parquet and the timetable to iCalendar as requested.
func writeExports(ctx context.Context, logger *slog.Logger, result *scholia.BuildResult, opts exportOptions) error {
	if opts.parquetDir != "" {
		w, err := export.NewParquetWriter(opts.parquetDir)
		if err != nil {
			return err
		}
		if err := w.WriteBatch(ctx, result.Batch); err != nil {
			return err
		}
		logger.Info("Wrote parquet export", "dir", w.BaseDir(),
			"nodes", len(result.Batch.Nodes), "edges", len(result.Batch.Edges))
	}

	if opts.icsFile != "" {
		loc := time.UTC
		if opts.timezone != "" {
			var err error
			if loc, err = time.LoadLocation(opts.timezone); err != nil {
				return fmt.Errorf("%w: timezone %q: %v", types.ErrInvalidValue, opts.timezone, err)
			}
		}
		f, err := os.Create(opts.icsFile)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.icsFile, err)
		}
		if err := export.WriteICS(f, result.TimetableLayer, export.ICSOptions{
			Location:    loc,
			IncludeDays: opts.includeDays,
		}); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.icsFile, err)
		}
		logger.Info("Wrote iCalendar export", "file", opts.icsFile)
	}
	return nil
}

func addExportFlags(cmd *cobra.Command, opts *exportOptions) {
	cmd.Flags().StringVar(&opts.parquetDir, "parquet-dir", "", "Write nodes.parquet and edges.parquet to this directory")
	cmd.Flags().StringVar(&opts.icsFile, "ics-file", "", "Write the timetable as an iCalendar file")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "UTC", "IANA time zone of period times in the iCalendar export")
	cmd.Flags().BoolVar(&opts.includeDays, "include-days", false, "Add holiday, staff and off-timetable days to the iCalendar export")
}

// commandContext tags the command context as CLI-originated.
func commandContext(cmd *cobra.Command) context.Context {
	return context.WithValue(cmd.Context(), types.ContextKeyRequestSource, "cli")
}
