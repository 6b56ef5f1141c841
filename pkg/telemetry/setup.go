package telemetry

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/go-sql-driver/mysql" // MySQL / Dolt telemetry sink
	_ "github.com/lib/pq"              // Postgres telemetry sink

	"github.com/soundprediction/scholia/pkg/config"
)

// Wrap layers the configured error sinks over base. The returned close function flushes the
// parquet buffer and releases the SQL connection; it is never nil.
func Wrap(base slog.Handler, cfg config.TelemetryConfig) (slog.Handler, func() error, error) {
	handler := base
	var closers []func() error

	if cfg.ParquetPath != "" {
		ph, err := NewParquetHandler(handler, cfg.ParquetPath)
		if err != nil {
			return base, func() error { return nil }, err
		}
		handler = ph
		closers = append(closers, ph.Close)
	}

	if cfg.DbURL != "" {
		driverName := cfg.DbDriver
		if driverName == "" {
			driverName = "mysql"
		}
		db, err := sql.Open(driverName, cfg.DbURL)
		if err != nil {
			return handler, closeAll(closers), fmt.Errorf("failed to open telemetry database: %w", err)
		}
		sh, err := NewSQLHandler(handler, db, driverName)
		if err != nil {
			db.Close()
			return handler, closeAll(closers), err
		}
		handler = sh
		closers = append(closers, db.Close)
	}

	return handler, closeAll(closers), nil
}

func closeAll(closers []func() error) func() error {
	return func() error {
		var errs []error
		for _, c := range closers {
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
