package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/scholia/pkg/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildYear(t *testing.T) {
	r := NewBuilder(nil).Build(day(2024, 1, 1), day(2024, 12, 31))

	assert.Equal(t, "Calendar_2024-01-01_2024-12-31", r.Calendar.UniqueID)
	assert.Len(t, r.Years, 1)
	assert.Len(t, r.Months, 12)
	assert.Len(t, r.Days, 366)
	// 2024-01-01 is a Monday; 2024-12-30 starts ISO week 2025-W01.
	assert.Len(t, r.Weeks, 53)

	d, ok := r.Day(day(2024, 2, 29))
	require.True(t, ok)
	assert.Equal(t, "CalendarDay_2024-02-29", d.UniqueID)
	assert.Equal(t, "Thursday", d.DayOfWeek)

	w, ok := r.Week(day(2024, 1, 1))
	require.True(t, ok)
	assert.Equal(t, "CalendarWeek_2024_W01", w.UniqueID)

	last, ok := r.Week(day(2024, 12, 30))
	require.True(t, ok)
	assert.Equal(t, "CalendarWeek_2025_W01", last.UniqueID)

	_, ok = r.Week(day(2024, 1, 2))
	assert.False(t, ok, "weeks are looked up by their Monday")

	y, ok := r.Year(2024)
	require.True(t, ok)
	assert.Equal(t, 2024, y.Year)
}

func TestBuildEdges(t *testing.T) {
	r := NewBuilder(nil).Build(day(2023, 12, 30), day(2024, 1, 2))

	counts := map[types.RelType]int{}
	for _, e := range r.Batch.Edges {
		counts[e.Type]++
	}

	assert.Equal(t, 2, counts["CALENDAR_HAS_CALENDAR_YEAR"])
	assert.Equal(t, 2, counts["CALENDAR_YEAR_HAS_CALENDAR_MONTH"])
	assert.Equal(t, 4, counts["CALENDAR_MONTH_HAS_CALENDAR_DAY"])
	assert.Equal(t, 4, counts["CALENDAR_WEEK_HAS_CALENDAR_DAY"])
	assert.Equal(t, 2, counts["CALENDAR_YEAR_HAS_CALENDAR_WEEK"])

	assert.Equal(t, 1, counts["CALENDAR_YEAR_FOLLOWS_CALENDAR_YEAR"])
	assert.Equal(t, 1, counts["CALENDAR_MONTH_FOLLOWS_CALENDAR_MONTH"])
	assert.Equal(t, 1, counts["CALENDAR_WEEK_FOLLOWS_CALENDAR_WEEK"])
	assert.Equal(t, 3, counts["CALENDAR_DAY_FOLLOWS_CALENDAR_DAY"])

	for _, e := range r.Batch.Edges {
		if e.Category != types.CategoryFollows {
			continue
		}
		src, _ := r.Batch.Node(e.SourceID)
		dst, _ := r.Batch.Node(e.TargetID)
		assert.NotEqual(t, src.UniqueID, dst.UniqueID)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a := NewBuilder(nil).Build(day(2024, 9, 1), day(2024, 9, 30))
	b := NewBuilder(nil).Build(day(2024, 9, 30), day(2024, 9, 1))

	require.Len(t, b.Batch.Nodes, len(a.Batch.Nodes))
	for i := range a.Batch.Nodes {
		assert.Equal(t, a.Batch.Nodes[i].UniqueID, b.Batch.Nodes[i].UniqueID)
	}
	assert.Len(t, a.Collections()[RoleDays], 30)
}

func TestWeekStart(t *testing.T) {
	assert.Equal(t, day(2024, 1, 1), WeekStart(day(2024, 1, 7)))
	assert.Equal(t, day(2024, 1, 8), WeekStart(day(2024, 1, 8)))
	assert.Equal(t, day(2023, 12, 25), WeekStart(day(2023, 12, 31)))
}
