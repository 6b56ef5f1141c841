package tables

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/soundprediction/scholia/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleSet() Set {
	return Set{
		TableSchool: NewTable(TableSchool, []string{"Key", "Value"}, [][]any{
			{"SchoolID", "SCH"},
			{"SchoolName", "Hill School"},
			{"SchoolYearStartDate", "2024-01-01"},
			{"SchoolYearEndDate", "2024-12-31"},
		}),
		TableTerms: NewTable(TableTerms, []string{"TermType", "TermName", "StartDate", "EndDate"}, [][]any{
			{"Term", "Spring", "2024-01-01", "2024-06-30"},
			{"Break", "Summer", "2024-07-01", "2024-07-31"},
			{"Term", "Autumn", "2024-08-01", "2024-12-31"},
		}),
		TableWeeks: NewTable(TableWeeks, []string{"WeekStart", "WeekType"}, [][]any{
			{"2024-01-01", "A"},
			{"2024-07-01", "holiday"},
		}),
		TableDays: NewTable(TableDays, []string{"Date", "DayType", "WeekType"}, [][]any{
			{"2024-01-01", "Academic", "A"},
			{"2024-07-01", "Holiday", ""},
		}),
		TablePeriods: NewTable(TablePeriods, []string{"PeriodName", "PeriodCode", "PeriodType", "StartTime", "EndTime"}, [][]any{
			{"Registration", "R", "Registration", "08:30", "08:45"},
			{"Period 1", "P1", "Academic", "08:45", "09:45"},
			{"Break", "B", "Break", "09:45", "10:00"},
		}),
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{"iso string", "2024-03-04", date(2024, 3, 4)},
		{"datetime string", "2024-03-04 10:30:00", date(2024, 3, 4)},
		{"time value", time.Date(2024, 3, 4, 15, 0, 0, 0, time.Local), date(2024, 3, 4)},
		{"serial float", 45355.0, date(2024, 3, 4)},
		{"serial string", "45355", date(2024, 3, 4)},
		{"serial int", 45355, date(2024, 3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseDate("04/03/2024")
	assert.ErrorIs(t, err, types.ErrInvalidValue)
	_, err = ParseDate(nil)
	assert.ErrorIs(t, err, types.ErrMissingField)
	_, err = ParseDate(-1.0)
	assert.ErrorIs(t, err, types.ErrInvalidValue)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   any
		want time.Duration
	}{
		{"08:45", 8*time.Hour + 45*time.Minute},
		{"08:45:30", 8*time.Hour + 45*time.Minute + 30*time.Second},
		{"1:15 PM", 13*time.Hour + 15*time.Minute},
		{0.5, 12 * time.Hour},
		{"0.375", 9 * time.Hour},
		{time.Date(1899, 12, 30, 10, 0, 0, 0, time.UTC), 10 * time.Hour},
		{90 * time.Minute, 90 * time.Minute},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}

	_, err := ParseClock("quarter past")
	assert.ErrorIs(t, err, types.ErrInvalidValue)
}

func TestNormalize(t *testing.T) {
	in, err := Normalize(sampleSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, "SCH", in.School.ID)
	assert.Equal(t, "Hill School", in.School.Name)
	assert.Equal(t, date(2024, 1, 1), in.School.Start)
	assert.Equal(t, date(2024, 12, 31), in.School.End)

	require.Len(t, in.Terms, 3)
	assert.False(t, in.Terms[0].Break)
	assert.True(t, in.Terms[1].Break)
	assert.Equal(t, "Autumn", in.Terms[2].Name)

	require.Len(t, in.Weeks, 2)
	assert.False(t, in.Weeks[0].Holiday())
	assert.Equal(t, "A", in.Weeks[0].WeekType)
	assert.True(t, in.Weeks[1].Holiday(), "holiday tag is case-insensitive")

	require.Len(t, in.Days, 2)
	assert.Equal(t, types.DayTypeAcademic, in.Days[0].DayType)
	assert.Equal(t, types.DayTypeHoliday, in.Days[1].DayType)

	require.Len(t, in.Periods, 3)
	assert.Equal(t, types.PeriodTypeRegistration, in.Periods[0].Type)
	assert.Equal(t, 8*time.Hour+45*time.Minute, in.Periods[1].Start)
}

func TestNormalizeSchoolRefWins(t *testing.T) {
	in, err := Normalize(sampleSet(), &types.SchoolRef{UniqueID: "School_42", Name: "Ref"})
	require.NoError(t, err)
	assert.Equal(t, "School_42", in.School.ID)
	assert.Equal(t, "Hill School", in.School.Name)
}

func TestNormalizeWideSchoolTable(t *testing.T) {
	set := sampleSet()
	set[TableSchool] = NewTable(TableSchool,
		[]string{"School ID", "School Year Start Date", "School Year End Date"},
		[][]any{{"SCH", 45292.0, 45657.0}})

	in, err := Normalize(set, nil)
	require.NoError(t, err)
	assert.Equal(t, "SCH", in.School.ID)
	assert.Equal(t, date(2024, 1, 1), in.School.Start)
	assert.Equal(t, date(2024, 12, 31), in.School.End)
}

func TestNormalizePreconditions(t *testing.T) {
	t.Run("missing table", func(t *testing.T) {
		set := sampleSet()
		delete(set, TablePeriods)
		_, err := Normalize(set, nil)
		assert.ErrorIs(t, err, types.ErrMissingTable)
	})

	t.Run("missing boundary", func(t *testing.T) {
		set := sampleSet()
		set[TableSchool] = NewTable(TableSchool, []string{"Key", "Value"}, [][]any{
			{"SchoolID", "SCH"},
			{"SchoolYearStartDate", "2024-01-01"},
		})
		_, err := Normalize(set, nil)
		assert.ErrorIs(t, err, types.ErrMissingField)
	})

	t.Run("missing school id", func(t *testing.T) {
		set := sampleSet()
		set[TableSchool] = NewTable(TableSchool, []string{"Key", "Value"}, [][]any{
			{"SchoolYearStartDate", "2024-01-01"},
			{"SchoolYearEndDate", "2024-12-31"},
		})
		_, err := Normalize(set, nil)
		assert.ErrorIs(t, err, types.ErrMissingField)
	})

	t.Run("unknown day type", func(t *testing.T) {
		set := sampleSet()
		set[TableDays] = NewTable(TableDays, []string{"Date", "DayType"}, [][]any{
			{"2024-01-01", "Academic"},
			{"2024-01-02", "Acadmic"},
		})
		_, err := Normalize(set, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrUnknownVariant)

		var rowErr *types.RowError
		require.True(t, errors.As(err, &rowErr))
		assert.Equal(t, TableDays, rowErr.Table)
		assert.Equal(t, 2, rowErr.Row)
		assert.Equal(t, "DayType", rowErr.Column)
	})

	t.Run("missing term type", func(t *testing.T) {
		set := sampleSet()
		set[TableTerms] = NewTable(TableTerms, []string{"TermType", "TermName", "StartDate", "EndDate"}, [][]any{
			{"Term", "Spring", "2024-01-01", "2024-06-30"},
			{"", "Autumn", "2024-08-01", "2024-12-31"},
		})
		_, err := Normalize(set, nil)
		assert.ErrorIs(t, err, types.ErrMissingField)

		var rowErr *types.RowError
		require.True(t, errors.As(err, &rowErr))
		assert.Equal(t, TableTerms, rowErr.Table)
		assert.Equal(t, 2, rowErr.Row)
		assert.Equal(t, "TermType", rowErr.Column)
	})

	t.Run("term ends before start", func(t *testing.T) {
		set := sampleSet()
		set[TableTerms] = NewTable(TableTerms, []string{"TermType", "TermName", "StartDate", "EndDate"}, [][]any{
			{"Term", "Spring", "2024-06-30", "2024-01-01"},
		})
		_, err := Normalize(set, nil)
		assert.ErrorIs(t, err, types.ErrInvalidValue)
	})
}

func TestNormalizeTermTypeIsExact(t *testing.T) {
	set := sampleSet()
	set[TableTerms] = NewTable(TableTerms, []string{"TermType", "TermName", "StartDate", "EndDate"}, [][]any{
		{"Term", "Spring", "2024-01-01", "2024-06-30"},
		{"term", "Summer", "2024-07-01", "2024-07-31"},
		{"Break", "Autumn", "2024-08-01", "2024-12-31"},
	})
	in, err := Normalize(set, nil)
	require.NoError(t, err)
	require.Len(t, in.Terms, 3)
	assert.False(t, in.Terms[0].Break)
	assert.True(t, in.Terms[1].Break, "only the exact Term tag makes a term")
	assert.True(t, in.Terms[2].Break)
}

func TestRowValueMatchesLooseHeaders(t *testing.T) {
	row := Row{"Week Start": "2024-01-01", "week_type": "B", "Blank": "  "}

	v, ok := row.Value("WeekStart")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01", v)
	assert.Equal(t, "B", row.String("WeekType"))

	_, ok = row.Value("Blank")
	assert.False(t, ok, "blank cells count as missing")
}

func TestReadYAML(t *testing.T) {
	doc := `
school:
  - {Key: SchoolID, Value: SCH}
  - {Key: SchoolYearStartDate, Value: "2024-01-01"}
  - {Key: SchoolYearEndDate, Value: "2024-12-31"}
terms:
  - {TermType: Term, TermName: Spring, StartDate: "2024-01-01", EndDate: "2024-06-30"}
weeks:
  - {WeekStart: "2024-01-01", WeekType: A}
days:
  - {Date: "2024-01-01", DayType: Academic, WeekType: A}
periods:
  - {PeriodName: P1, PeriodCode: P1, PeriodType: Academic, StartTime: "09:00", EndTime: "10:00"}
notes:
  - {Text: ignored}
`
	set, err := ReadYAML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, set, 5)

	in, err := Normalize(set, nil)
	require.NoError(t, err)
	assert.Equal(t, "SCH", in.School.ID)
	assert.Len(t, in.Periods, 1)
}

func TestReadCSVDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"school.csv":  "Key,Value\nSchoolID,SCH\nSchoolYearStartDate,2024-01-01\nSchoolYearEndDate,2024-12-31\n",
		"terms.csv":   "TermType,TermName,StartDate,EndDate\nTerm,Spring,2024-01-01,2024-06-30\n",
		"weeks.csv":   "WeekStart,WeekType\n2024-01-01,A\n",
		"days.csv":    "Date,DayType,WeekType\n2024-01-01,Academic,A\n,,\n",
		"periods.csv": "PeriodName,PeriodCode,PeriodType,StartTime,EndTime\nP1,P1,Academic,09:00,10:00\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	set, err := Read(dir)
	require.NoError(t, err)

	in, err := Normalize(set, nil)
	require.NoError(t, err)
	assert.Len(t, in.Days, 1, "empty rows are skipped")

	require.NoError(t, os.Remove(filepath.Join(dir, "periods.csv")))
	set, err = ReadCSVDir(dir)
	require.NoError(t, err)
	_, err = Normalize(set, nil)
	assert.ErrorIs(t, err, types.ErrMissingTable)
}

func TestReadCSVDirWithByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	const bom = "\ufeff"
	files := map[string]string{
		"school.csv":  bom + "Key,Value\nSchoolID,SCH\nSchoolYearStartDate,2024-01-01\nSchoolYearEndDate,2024-12-31\n",
		"terms.csv":   bom + "TermType,TermName,StartDate,EndDate\nTerm,Spring,2024-01-01,2024-06-30\nTerm,Autumn,2024-08-01,2024-12-31\n",
		"weeks.csv":   bom + "WeekStart,WeekType\n2024-01-01,A\n",
		"days.csv":    bom + "Date,DayType,WeekType\n2024-01-01,Academic,A\n",
		"periods.csv": bom + "PeriodName,PeriodCode,PeriodType,StartTime,EndTime\nP1,P1,Academic,09:00,10:00\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	set, err := ReadCSVDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "TermType", set[TableTerms].Columns[0])

	in, err := Normalize(set, nil)
	require.NoError(t, err)
	assert.Equal(t, "SCH", in.School.ID)
	require.Len(t, in.Terms, 2)
	for _, term := range in.Terms {
		assert.False(t, term.Break, "term %q", term.Name)
	}
	assert.Len(t, in.Periods, 1)
}

func TestRowValueIgnoresByteOrderMark(t *testing.T) {
	row := Row{"\ufeffTermType": "Term"}
	assert.Equal(t, "Term", row.String("TermType"))
}

func TestReadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timetable.xlsx")

	f := excelize.NewFile()
	sheets := map[string][][]any{
		"School": {
			{"Key", "Value"},
			{"SchoolID", "SCH"},
			{"SchoolYearStartDate", 45292},
			{"SchoolYearEndDate", 45657},
		},
		"Terms":   {{"TermType", "TermName", "StartDate", "EndDate"}, {"Term", "Spring", 45292, 45473}},
		"Weeks":   {{"WeekStart", "WeekType"}, {45292, "A"}},
		"Days":    {{"Date", "DayType", "WeekType"}, {45292, "Academic", "A"}},
		"Periods": {{"PeriodName", "PeriodCode", "PeriodType", "StartTime", "EndTime"}, {"P1", "P1", "Academic", 0.375, 0.416666666666667}},
	}
	for sheet, rows := range sheets {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	set, err := Read(path)
	require.NoError(t, err)

	in, err := Normalize(set, nil)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 1), in.School.Start)
	assert.Equal(t, date(2024, 6, 30), in.Terms[0].End)
	require.Len(t, in.Periods, 1)
	assert.Equal(t, 9*time.Hour, in.Periods[0].Start)
	assert.Equal(t, 10*time.Hour, in.Periods[0].End)
}
