package logger_test

import (
	"log/slog"

	"github.com/soundprediction/scholia/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("Calendar miss", "unique_id", "AcademicDay_S1_2024-12-30")
	log.Info("Built timetable batch", "nodes", 412, "edges", 1650)
	log.Info("Merging timetable nodes", "count", 412) // Will be green in terminal
	log.Warn("Skipping self-referencing sequence edge", "unique_id", "AcademicDay_S1_2024-01-02")
	log.Error("Build failed", "error", "connection refused")
}
