package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
)

// SQLHandler is a slog.Handler that writes error logs to a SQL database (MySQL/Dolt or Postgres)
type SQLHandler struct {
	next      slog.Handler
	db        *sql.DB
	driver    string
	tableName string
	attrs     []slog.Attr
}

// NewSQLHandler creates a new SQLHandler using an existing DB connection. driverName selects
// the placeholder style: "postgres" uses $n, anything else uses ?.
func NewSQLHandler(next slog.Handler, db *sql.DB, driverName string) (*SQLHandler, error) {
	h := &SQLHandler{
		next:      next,
		db:        db,
		driver:    driverName,
		tableName: "build_telemetry_logs",
	}

	if err := h.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure telemetry table: %w", err)
	}

	return h, nil
}

func (h *SQLHandler) ensureTable() error {
	attrType := "JSON"
	if h.driver == "postgres" {
		attrType = "JSONB"
	}
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			timestamp TIMESTAMP,
			level VARCHAR(10),
			message TEXT,
			run_id VARCHAR(64),
			request_source VARCHAR(255),
			source_file VARCHAR(255),
			line_number INT,
			attributes %s
		)
	`, h.tableName, attrType)

	_, err := h.db.Exec(query)
	return err
}

func (h *SQLHandler) insertQuery() string {
	if h.driver == "postgres" {
		return fmt.Sprintf(`INSERT INTO %s (id, timestamp, level, message, run_id, request_source, source_file, line_number, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, h.tableName)
	}
	return fmt.Sprintf(`INSERT INTO %s (id, timestamp, level, message, run_id, request_source, source_file, line_number, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, h.tableName)
}

// Enabled implements slog.Handler
func (h *SQLHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *SQLHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always pass to next handler first
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level < slog.LevelError {
		return nil
	}

	rec := newLogRecord(ctx, r, h.attrs)
	_, err := h.db.ExecContext(ctx, h.insertQuery(),
		rec.ID,
		rec.Timestamp,
		rec.Level,
		rec.Message,
		rec.RunID,
		rec.RequestSource,
		rec.SourceFile,
		rec.LineNumber,
		rec.Attributes,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write log to SQL: %v\n", err)
	}

	return nil // Don't block logging chain on database error
}

// WithAttrs implements slog.Handler
func (h *SQLHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SQLHandler{
		next:      h.next.WithAttrs(attrs),
		db:        h.db,
		driver:    h.driver,
		tableName: h.tableName,
		attrs:     append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler
func (h *SQLHandler) WithGroup(name string) slog.Handler {
	return &SQLHandler{
		next:      h.next.WithGroup(name),
		db:        h.db,
		driver:    h.driver,
		tableName: h.tableName,
		attrs:     h.attrs,
	}
}
