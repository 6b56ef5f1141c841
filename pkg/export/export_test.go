package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/scholia/pkg/calendar"
	"github.com/soundprediction/scholia/pkg/tables"
	"github.com/soundprediction/scholia/pkg/timetable"
	"github.com/soundprediction/scholia/pkg/types"
)

func date(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func buildTimetable(t *testing.T) (*timetable.Result, *calendar.Result) {
	t.Helper()
	in := &tables.Inputs{
		School: tables.SchoolInfo{ID: "SCH", Name: "Hill", Start: date(1, 1), End: date(3, 31)},
		Terms: []tables.TermRow{
			{Name: "Spring", Start: date(1, 1), End: date(2, 9)},
			{Name: "Half term", Break: true, Start: date(2, 12), End: date(2, 16)},
		},
		Weeks: []tables.WeekRow{
			{Start: date(1, 1), WeekType: "A"},
			{Start: date(2, 12), WeekType: tables.HolidayWeekType},
		},
		Days: []tables.DayRow{
			{Date: date(1, 1), DayType: types.DayTypeAcademic, WeekType: "A"},
			{Date: date(1, 2), DayType: types.DayTypeHoliday},
		},
		Periods: []tables.PeriodRow{
			{Name: "Registration", Code: "R", Type: types.PeriodTypeRegistration, Start: 8*time.Hour + 30*time.Minute, End: 8*time.Hour + 45*time.Minute},
			{Name: "Break", Code: "BR", Type: types.PeriodTypeBreak, Start: 10 * time.Hour, End: 10*time.Hour + 15*time.Minute},
			{Name: "Period 1", Code: "P1", Type: types.PeriodTypeAcademic, Start: 9 * time.Hour, End: 10 * time.Hour},
		},
	}
	cal := calendar.NewBuilder(nil).Build(in.School.Start, in.School.End)
	tt, err := timetable.NewBuilder(nil).Build(in, cal, nil)
	require.NoError(t, err)
	return tt, cal
}

func TestParquetWriterWriteBatch(t *testing.T) {
	tt, cal := buildTimetable(t)
	batch := types.NewBatch()
	batch.Merge(cal.Batch)
	batch.Merge(tt.Batch)

	w, err := NewParquetWriter(filepath.Join(t.TempDir(), "export"))
	require.NoError(t, err)
	require.NoError(t, w.WriteBatch(context.Background(), batch))

	nodes, err := parquet.ReadFile[ParquetNode](filepath.Join(w.BaseDir(), NodesFile))
	require.NoError(t, err)
	assert.Len(t, nodes, len(batch.Nodes))

	byID := make(map[string]ParquetNode, len(nodes))
	for _, n := range nodes {
		byID[n.UniqueID] = n
	}
	day, ok := byID["AcademicDay_SCH_2024-01-01"]
	require.True(t, ok)
	assert.Equal(t, "AcademicDay", day.Label)
	require.NotNil(t, day.Date)
	assert.True(t, date(1, 1).Equal(*day.Date))
	assert.Nil(t, day.StartDate)
	assert.Contains(t, day.Properties, `"academic_day":1`)

	edges, err := parquet.ReadFile[ParquetEdge](filepath.Join(w.BaseDir(), EdgesFile))
	require.NoError(t, err)
	assert.Len(t, edges, len(batch.Edges))

	var isEdges int
	for _, e := range edges {
		if e.Category == string(types.CategoryIs) {
			isEdges++
		}
	}
	assert.Equal(t, batch.CountByCategory()[types.CategoryIs], isEdges)
}

func TestParquetWriterRejectsNilBatch(t *testing.T) {
	w, err := NewParquetWriter(t.TempDir())
	require.NoError(t, err)
	assert.ErrorIs(t, w.WriteBatch(context.Background(), nil), types.ErrInvalidValue)
}

func TestWriteICS(t *testing.T) {
	tt, _ := buildTimetable(t)
	stamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, tt, ICSOptions{Stamp: stamp}))

	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	require.NoError(t, err)

	events := map[string]*ics.VEvent{}
	for _, e := range cal.Events() {
		events[e.Id()] = e
	}
	// two terms + registration and academic period; the break period is not exported
	assert.Len(t, events, 4)

	spring := events["AcademicTerm_SCH_2024_2024_1"]
	require.NotNil(t, spring)
	assert.Equal(t, "Spring", spring.GetProperty(ics.ComponentPropertySummary).Value)
	end, err := spring.GetAllDayEndAt()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-10", end.Format("2006-01-02"))

	period := events["AcademicPeriod_SCH_2024-01-01_3"]
	require.NotNil(t, period)
	assert.Equal(t, "Period 1 [AMonP1]", period.GetProperty(ics.ComponentPropertySummary).Value)
	start, err := period.GetStartAt()
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).Equal(start))

	_, hasBreak := events["BreakPeriod_SCH_2024-01-01_2"]
	assert.False(t, hasBreak)
}

func TestWriteICSIncludeDays(t *testing.T) {
	tt, _ := buildTimetable(t)

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, tt, ICSOptions{IncludeDays: true}))
	assert.Contains(t, buf.String(), "UID:HolidayDay_SCH_2024-01-02")
	assert.NotContains(t, buf.String(), "UID:AcademicDay_SCH_2024-01-01")

	assert.ErrorIs(t, WriteICS(&buf, nil, ICSOptions{}), types.ErrInvalidValue)
}
