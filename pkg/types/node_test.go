package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelPrefix(t *testing.T) {
	tests := []struct {
		kind     NodeKind
		expected string
	}{
		{KindTimetable, "TIMETABLE"},
		{KindAcademicYear, "ACADEMIC_YEAR"},
		{KindAcademicTermBreak, "ACADEMIC_TERM_BREAK"},
		{KindOffTimetablePeriod, "OFF_TIMETABLE_PERIOD"},
		{KindCalendarDay, "CALENDAR_DAY"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.RelPrefix(); got != tt.expected {
				t.Errorf("RelPrefix(%s) = %s, expected %s", tt.kind, got, tt.expected)
			}
		})
	}
}

func TestRelationNames(t *testing.T) {
	assert.Equal(t, RelType("ACADEMIC_WEEK_HAS_HOLIDAY_DAY"), HasRelation(KindAcademicWeek, KindHolidayDay))
	assert.Equal(t, RelType("ACADEMIC_TERM_BREAK_FOLLOWS_ACADEMIC_TERM"), FollowsRelation(KindAcademicTermBreak, KindAcademicTerm))
	assert.Equal(t, RelType("HOLIDAY_WEEK_IS_CALENDAR_WEEK"), IsRelation(KindHolidayWeek, KindCalendarWeek))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("AcademicDay")
	require.NoError(t, err)
	assert.Equal(t, KindAcademicDay, k)

	_, err = ParseKind("AcademicDays")
	assert.True(t, errors.Is(err, ErrUnknownVariant))
}

func TestParseDayAndPeriodType(t *testing.T) {
	t.Run("day types", func(t *testing.T) {
		cases := map[string]NodeKind{
			"Academic":     KindAcademicDay,
			"Holiday":      KindHolidayDay,
			"OffTimetable": KindOffTimetableDay,
			"StaffDay":     KindStaffDay,
			"Staff":        KindStaffDay,
		}
		for tag, kind := range cases {
			dt, err := ParseDayType(tag)
			require.NoError(t, err, tag)
			assert.Equal(t, kind, dt.Kind(), tag)
		}
		_, err := ParseDayType("Acadmic")
		assert.ErrorIs(t, err, ErrUnknownVariant)
	})

	t.Run("period types", func(t *testing.T) {
		cases := map[string]struct {
			kind    NodeKind
			counted bool
		}{
			"Academic":     {KindAcademicPeriod, true},
			"Registration": {KindRegistrationPeriod, true},
			"Break":        {KindBreakPeriod, false},
			"OffTimetable": {KindOffTimetablePeriod, false},
		}
		for tag, want := range cases {
			pt, err := ParsePeriodType(tag)
			require.NoError(t, err, tag)
			assert.Equal(t, want.kind, pt.Kind(), tag)
			assert.Equal(t, want.counted, pt.Counted(), tag)
		}
		_, err := ParsePeriodType("Lunch")
		assert.ErrorIs(t, err, ErrUnknownVariant)
	})
}

func TestNodePropertiesRoundTrip(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	node := &Node{
		UniqueID:    "AcademicPeriod_SCH_2024-03-04_1",
		Kind:        KindAcademicPeriod,
		Name:        "Period 1",
		Path:        "/tmp/p1",
		Date:        date,
		StartTime:   date.Add(8*time.Hour + 45*time.Minute),
		EndTime:     date.Add(9*time.Hour + 45*time.Minute),
		PeriodCode:  "AMonP1",
		PeriodOfDay: 1,
	}

	props := node.Properties()
	assert.Equal(t, "2024-03-04", props["date"])
	assert.Equal(t, "2024-03-04T08:45:00", props["start_time"])
	assert.Equal(t, int64(1), props["academic_or_registration_period_of_day"])
	_, hasYear := props["year"]
	assert.False(t, hasYear, "zero fields must be omitted")

	parsed, err := NodeFromProperties(KindAcademicPeriod, props)
	require.NoError(t, err)
	assert.Equal(t, node, parsed)
}

func TestNodeFromPropertiesErrors(t *testing.T) {
	_, err := NodeFromProperties(KindAcademicDay, map[string]any{})
	assert.ErrorIs(t, err, ErrEmptyUniqueID)

	_, err = NodeFromProperties(KindAcademicDay, map[string]any{"unique_id": "x", "date": "04/03/2024"})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestNodeValidate(t *testing.T) {
	var nilNode *Node
	assert.ErrorIs(t, nilNode.Validate(), ErrNilNode)
	assert.ErrorIs(t, (&Node{Kind: KindAcademicDay}).Validate(), ErrEmptyUniqueID)
	assert.ErrorIs(t, (&Node{UniqueID: "x", Kind: "Lesson"}).Validate(), ErrUnknownVariant)
	assert.NoError(t, (&Node{UniqueID: "x", Kind: KindAcademicDay}).Validate())
}
