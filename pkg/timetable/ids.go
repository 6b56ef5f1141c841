package timetable

import (
	"fmt"
	"time"

	"github.com/soundprediction/scholia/pkg/types"
)

// TimetableID returns the unique_id of a school's timetable for a year range.
func TimetableID(school string, startYear, endYear int) string {
	return fmt.Sprintf("SchoolTimetable_%s_%d_%d", school, startYear, endYear)
}

// YearID returns the unique_id of an academic year.
func YearID(school string, year int) string {
	return fmt.Sprintf("AcademicYear_%s_%d", school, year)
}

// TermID returns the unique_id of the nth term of a timetable.
func TermID(school string, startYear, endYear, n int) string {
	return fmt.Sprintf("AcademicTerm_%s_%d_%d_%d", school, startYear, endYear, n)
}

// BreakID returns the unique_id of the term break starting on start.
func BreakID(school string, startYear, endYear int, start time.Time) string {
	return fmt.Sprintf("AcademicTermBreak_%s_%d_%d_%s", school, startYear, endYear, start.Format(types.DateLayout))
}

// DatedID returns the unique_id of a week or day node: <Kind>_<school>_<date>.
func DatedID(kind types.NodeKind, school string, date time.Time) string {
	return fmt.Sprintf("%s_%s_%s", kind, school, date.Format(types.DateLayout))
}

// PeriodID returns the unique_id of a period; row is the 1-based periods-table row.
func PeriodID(kind types.NodeKind, school string, date time.Time, row int) string {
	return fmt.Sprintf("%s_%d", DatedID(kind, school, date), row)
}

// PeriodCode builds the composite code of a counted period, e.g. "A" + "Mon" + "P1".
func PeriodCode(weekType string, date time.Time, code string) string {
	return weekType + date.Weekday().String()[:3] + code
}
