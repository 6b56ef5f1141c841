package export

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/soundprediction/scholia/pkg/timetable"
	"github.com/soundprediction/scholia/pkg/types"
)

// ICSOptions controls iCalendar output.
type ICSOptions struct {
	// Location interprets period wall-clock times. Nil means UTC.
	Location *time.Location
	// Stamp is written as DTSTAMP on every event. Zero means time.Now.
	Stamp time.Time
	// IncludeDays adds all-day events for holiday, staff and off-timetable days.
	IncludeDays bool
}

// WriteICS writes the timetable as an iCalendar feed: all-day events for terms and breaks and
// timed events for academic and registration periods. Event UIDs are node unique ids, so
// re-exporting updates rather than duplicates events in subscribed clients.
func WriteICS(w io.Writer, tt *timetable.Result, opts ICSOptions) error {
	if tt == nil || tt.Timetable == nil {
		return fmt.Errorf("%w: nil timetable", types.ErrInvalidValue)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ics.NewCalendarFor("scholia")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(calendarName(tt))
	cal.SetXWRTimezone(loc.String())

	for _, term := range tt.Terms {
		event := cal.AddEvent(term.UniqueID)
		event.SetDtStampTime(stamp)
		event.SetSummary(term.Name)
		event.AddCategory(term.Kind.Label())
		event.SetAllDayStartAt(term.StartDate)
		// DTEND is exclusive for all-day events.
		event.SetAllDayEndAt(term.EndDate.AddDate(0, 0, 1))
		if term.Kind == types.KindAcademicTermBreak {
			event.SetTimeTransparency(ics.TransparencyTransparent)
		}
	}

	if opts.IncludeDays {
		for _, day := range tt.Days {
			if day.Kind == types.KindAcademicDay {
				continue
			}
			event := cal.AddEvent(day.UniqueID)
			event.SetDtStampTime(stamp)
			event.SetSummary(fmt.Sprintf("%s (%s)", day.DayType, day.DayOfWeek))
			event.AddCategory(day.Kind.Label())
			event.SetAllDayStartAt(day.Date)
			event.SetAllDayEndAt(day.Date.AddDate(0, 0, 1))
		}
	}

	for _, period := range tt.Periods {
		if period.Kind != types.KindAcademicPeriod && period.Kind != types.KindRegistrationPeriod {
			continue
		}
		event := cal.AddEvent(period.UniqueID)
		event.SetDtStampTime(stamp)
		summary := period.Name
		if period.PeriodCode != "" {
			summary = fmt.Sprintf("%s [%s]", period.Name, period.PeriodCode)
		}
		event.SetSummary(summary)
		event.AddCategory(period.Kind.Label())
		event.SetStartAt(inLocation(period.StartTime, loc))
		event.SetEndAt(inLocation(period.EndTime, loc))
	}

	return cal.SerializeTo(w)
}

func calendarName(tt *timetable.Result) string {
	if tt.School != nil && tt.School.Name != "" {
		return tt.School.Name + " timetable"
	}
	return tt.Timetable.UniqueID
}

// inLocation keeps the wall-clock reading of t but places it in loc.
func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}
