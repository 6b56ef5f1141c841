package tables

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soundprediction/scholia/pkg/types"
)

// School table keys.
const (
	KeySchoolID        = "SchoolID"
	KeySchoolName      = "SchoolName"
	KeySchoolYearStart = "SchoolYearStartDate"
	KeySchoolYearEnd   = "SchoolYearEndDate"
)

// HolidayWeekType is the WeekType tag that marks a holiday week.
const HolidayWeekType = "Holiday"

// TermTypeTerm is the TermType tag that marks a term; any other tag marks a break.
const TermTypeTerm = "Term"

// SchoolInfo holds the normalized school table.
type SchoolInfo struct {
	ID         string
	Name       string
	Start      time.Time
	End        time.Time
	Attributes map[string]string
}

// TermRow is one row of the terms table.
type TermRow struct {
	Name  string
	Break bool
	Start time.Time
	End   time.Time
}

// WeekRow is one row of the weeks table.
type WeekRow struct {
	Start    time.Time
	WeekType string
}

// Holiday reports whether the row describes a holiday week.
func (w WeekRow) Holiday() bool { return w.WeekType == HolidayWeekType }

// DayRow is one row of the days table.
type DayRow struct {
	Date     time.Time
	DayType  types.DayType
	WeekType string
}

// PeriodRow is one row of the periods table. Start and End are offsets from midnight.
type PeriodRow struct {
	Name  string
	Code  string
	Type  types.PeriodType
	Start time.Duration
	End   time.Duration
}

// Inputs is the normalized form of a table Set.
type Inputs struct {
	School  SchoolInfo
	Terms   []TermRow
	Weeks   []WeekRow
	Days    []DayRow
	Periods []PeriodRow
}

// Normalize validates a table Set and coerces every cell into its canonical form. When school is
// non-nil its unique_id is used as the school identifier in preference to the SchoolID row.
func Normalize(set Set, school *types.SchoolRef) (*Inputs, error) {
	for _, name := range Names {
		if _, ok := set.Get(name); !ok {
			return nil, fmt.Errorf("%w: %s", types.ErrMissingTable, name)
		}
	}

	in := &Inputs{}
	var err error

	schoolTable, _ := set.Get(TableSchool)
	if in.School, err = normalizeSchool(schoolTable, school); err != nil {
		return nil, err
	}

	termTable, _ := set.Get(TableTerms)
	for i, row := range termTable.Rows {
		tr, err := normalizeTerm(row)
		if err != nil {
			return nil, rowError(TableTerms, i, err)
		}
		in.Terms = append(in.Terms, tr)
	}

	weekTable, _ := set.Get(TableWeeks)
	for i, row := range weekTable.Rows {
		wr, err := normalizeWeek(row)
		if err != nil {
			return nil, rowError(TableWeeks, i, err)
		}
		in.Weeks = append(in.Weeks, wr)
	}

	dayTable, _ := set.Get(TableDays)
	for i, row := range dayTable.Rows {
		dr, err := normalizeDay(row)
		if err != nil {
			return nil, rowError(TableDays, i, err)
		}
		in.Days = append(in.Days, dr)
	}

	periodTable, _ := set.Get(TablePeriods)
	for i, row := range periodTable.Rows {
		pr, err := normalizePeriod(row)
		if err != nil {
			return nil, rowError(TablePeriods, i, err)
		}
		in.Periods = append(in.Periods, pr)
	}

	return in, nil
}

// columnError tags an error with the column that produced it.
type columnError struct {
	column string
	err    error
}

func (e *columnError) Error() string { return e.err.Error() }
func (e *columnError) Unwrap() error { return e.err }

func rowError(table string, index int, err error) error {
	re := &types.RowError{Table: table, Row: index + 1, Err: err}
	var ce *columnError
	if errors.As(err, &ce) {
		re.Column = ce.column
		re.Err = ce.err
	}
	return re
}

func requiredDate(row Row, columns ...string) (time.Time, error) {
	for _, col := range columns {
		v, ok := row.Value(col)
		if !ok {
			continue
		}
		t, err := ParseDate(v)
		if err != nil {
			return time.Time{}, &columnError{column: col, err: err}
		}
		return t, nil
	}
	return time.Time{}, &columnError{column: columns[0], err: types.ErrMissingField}
}

func requiredClock(row Row, column string) (time.Duration, error) {
	v, ok := row.Value(column)
	if !ok {
		return 0, &columnError{column: column, err: types.ErrMissingField}
	}
	d, err := ParseClock(v)
	if err != nil {
		return 0, &columnError{column: column, err: err}
	}
	return d, nil
}

func normalizeSchool(t *Table, ref *types.SchoolRef) (SchoolInfo, error) {
	info := SchoolInfo{Attributes: make(map[string]string)}

	// Key/value layout, or a single wide row.
	if len(t.Rows) > 0 {
		if _, ok := t.Rows[0].Value("Key"); ok {
			for _, row := range t.Rows {
				key := row.String("Key")
				if key == "" {
					continue
				}
				v, _ := row.Value("Value")
				info.Attributes[key] = asString(v)
			}
		} else {
			for k, v := range t.Rows[0] {
				info.Attributes[k] = asString(v)
			}
		}
	}

	lookup := func(key string) string {
		if v, ok := info.Attributes[key]; ok {
			return v
		}
		want := normalizeHeader(key)
		for k, v := range info.Attributes {
			if normalizeHeader(k) == want {
				return v
			}
		}
		return ""
	}

	switch {
	case ref != nil && ref.UniqueID != "":
		info.ID = ref.UniqueID
	case lookup(KeySchoolID) != "":
		info.ID = lookup(KeySchoolID)
	default:
		return info, fmt.Errorf("%w: %s (no school node supplied)", types.ErrMissingField, KeySchoolID)
	}
	info.Name = lookup(KeySchoolName)
	if info.Name == "" && ref != nil {
		info.Name = ref.Name
	}

	var err error
	for _, f := range []struct {
		key string
		dst *time.Time
	}{
		{KeySchoolYearStart, &info.Start},
		{KeySchoolYearEnd, &info.End},
	} {
		raw := lookup(f.key)
		if raw == "" {
			return info, fmt.Errorf("%w: school %s", types.ErrMissingField, f.key)
		}
		if *f.dst, err = ParseDate(raw); err != nil {
			return info, fmt.Errorf("school %s: %w", f.key, err)
		}
	}
	if info.End.Before(info.Start) {
		return info, fmt.Errorf("%w: school year ends %s before it starts %s", types.ErrInvalidValue,
			info.End.Format(types.DateLayout), info.Start.Format(types.DateLayout))
	}
	return info, nil
}

func normalizeTerm(row Row) (TermRow, error) {
	termType := row.String("TermType")
	if termType == "" {
		return TermRow{}, &columnError{column: "TermType", err: types.ErrMissingField}
	}
	// only the exact tag makes a term; every other value is a break
	tr := TermRow{
		Name:  row.String("TermName"),
		Break: termType != TermTypeTerm,
	}
	var err error
	if tr.Start, err = requiredDate(row, "StartDate", "TermStart"); err != nil {
		return tr, err
	}
	if tr.End, err = requiredDate(row, "EndDate", "TermEnd"); err != nil {
		return tr, err
	}
	if tr.End.Before(tr.Start) {
		return tr, &columnError{column: "EndDate", err: fmt.Errorf("%w: end before start", types.ErrInvalidValue)}
	}
	return tr, nil
}

func normalizeWeek(row Row) (WeekRow, error) {
	wr := WeekRow{WeekType: row.String("WeekType")}
	if wr.WeekType == "" {
		return wr, &columnError{column: "WeekType", err: types.ErrMissingField}
	}
	if strings.EqualFold(wr.WeekType, HolidayWeekType) {
		wr.WeekType = HolidayWeekType
	}
	var err error
	wr.Start, err = requiredDate(row, "WeekStart", "StartDate")
	return wr, err
}

func normalizeDay(row Row) (DayRow, error) {
	dr := DayRow{WeekType: row.String("WeekType")}
	var err error
	if dr.Date, err = requiredDate(row, "Date"); err != nil {
		return dr, err
	}
	tag := row.String("DayType")
	if tag == "" {
		return dr, &columnError{column: "DayType", err: types.ErrMissingField}
	}
	if dr.DayType, err = types.ParseDayType(tag); err != nil {
		return dr, &columnError{column: "DayType", err: err}
	}
	return dr, nil
}

func normalizePeriod(row Row) (PeriodRow, error) {
	pr := PeriodRow{
		Name: row.String("PeriodName"),
		Code: row.String("PeriodCode"),
	}
	tag := row.String("PeriodType")
	if tag == "" {
		return pr, &columnError{column: "PeriodType", err: types.ErrMissingField}
	}
	var err error
	if pr.Type, err = types.ParsePeriodType(tag); err != nil {
		return pr, &columnError{column: "PeriodType", err: err}
	}
	if pr.Start, err = requiredClock(row, "StartTime"); err != nil {
		return pr, err
	}
	if pr.End, err = requiredClock(row, "EndTime"); err != nil {
		return pr, err
	}
	if pr.Name == "" {
		pr.Name = pr.Code
	}
	return pr, nil
}
