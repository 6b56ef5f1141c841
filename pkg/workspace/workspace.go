// Package workspace mirrors the timetable hierarchy on disk: one directory per directory-backed
// node plus a companion tldraw file describing the node.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/soundprediction/scholia/pkg/types"
)

// CompanionFileName is the name of the companion file written into each node directory.
const CompanionFileName = "tldraw_file.json"

// HasDirectory reports whether nodes of kind get a path and a companion file.
func HasDirectory(kind types.NodeKind) bool {
	switch kind {
	case types.KindTimetable,
		types.KindAcademicYear,
		types.KindAcademicTerm,
		types.KindAcademicWeek,
		types.KindAcademicDay,
		types.KindAcademicPeriod,
		types.KindRegistrationPeriod:
		return true
	}
	return false
}

// Workspace lays out node directories under Root.
type Workspace struct {
	Root   string
	logger *slog.Logger
}

// New creates a workspace rooted at root. A nil logger falls back to slog.Default().
func New(root string, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{Root: root, logger: logger}
}

// TimetableDir returns the timetable directory of a school. A school reference with its own
// path wins over the workspace layout.
func (w *Workspace) TimetableDir(schoolID string, school *types.SchoolRef) string {
	if school != nil && school.Path != "" {
		return filepath.Join(school.Path, "timetable")
	}
	return filepath.Join(w.Root, "schools", schoolID, "timetable")
}

// NodeDir returns the directory of n below the timetable directory. day is the owning academic
// day and is only consulted for periods. The second result is false for kinds without a
// directory.
func (w *Workspace) NodeDir(timetableDir string, n, day *types.Node) (string, bool) {
	if n == nil || !HasDirectory(n.Kind) {
		return "", false
	}
	switch n.Kind {
	case types.KindTimetable:
		return timetableDir, true
	case types.KindAcademicYear:
		return filepath.Join(timetableDir, "years", strconv.Itoa(n.Year)), true
	case types.KindAcademicTerm:
		return filepath.Join(timetableDir, "terms", "term_"+strconv.Itoa(n.TermNumber)), true
	case types.KindAcademicWeek:
		return filepath.Join(timetableDir, "weeks", "week_"+strconv.Itoa(n.WeekNumber)), true
	case types.KindAcademicDay:
		return dayDir(timetableDir, n), true
	default:
		if day == nil || n.PeriodCode == "" {
			return "", false
		}
		return filepath.Join(dayDir(timetableDir, day), "periods", n.PeriodCode), true
	}
}

func dayDir(timetableDir string, day *types.Node) string {
	return filepath.Join(timetableDir, "days", "day_"+strconv.Itoa(day.AcademicDay))
}

// Ensure creates dir and its parents.
func (w *Workspace) Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteCompanion writes the default companion file for n into dir. An existing file is kept.
func (w *Workspace) WriteCompanion(dir string, n *types.Node) error {
	path := filepath.Join(dir, CompanionFileName)
	if _, err := os.Stat(path); err == nil {
		w.logger.Debug("Companion file exists", "path", path)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := json.MarshalIndent(NewDocument(n), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode companion file for %s: %w", n.UniqueID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.logger.Debug("Wrote companion file", "path", path, "node", n.UniqueID)
	return nil
}

// Materialize sets n.Path, creates the directory and writes the companion file.
func (w *Workspace) Materialize(dir string, n *types.Node) error {
	n.Path = dir
	if err := w.Ensure(dir); err != nil {
		return err
	}
	return w.WriteCompanion(dir, n)
}
