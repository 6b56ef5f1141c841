// Package timetable turns normalized timetable tables into a graph batch: the node hierarchy
// (timetable, years, terms, weeks, days, periods) plus containment, calendar cross-link and
// sequence edges. Building is pure; persistence happens elsewhere.
package timetable

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/scholia/pkg/calendar"
	"github.com/soundprediction/scholia/pkg/tables"
	"github.com/soundprediction/scholia/pkg/types"
)

// Collection roles of a timetable Result.
const (
	RoleTimetable = "timetable_node"
	RoleYears     = "academic_year_nodes"
	RoleTerms     = "academic_term_nodes"
	RoleWeeks     = "academic_week_nodes"
	RoleDays      = "academic_day_nodes"
	RolePeriods   = "academic_period_nodes"
)

// Report summarizes decisions taken while building.
type Report struct {
	// SkippedDays lists day rows (YYYY-MM-DD) with no calendar counterpart.
	SkippedDays []string `json:"skipped_days,omitempty"`
	// Ambiguities counts containment candidates dropped because an earlier candidate matched.
	Ambiguities int `json:"ambiguities"`
	// Unparented counts nodes for which no container was found.
	Unparented int `json:"unparented"`
	// CalendarMisses counts nodes with no calendar counterpart to cross-link to.
	CalendarMisses int `json:"calendar_misses"`
	// SelfReferences counts sequence pairs skipped because both sides were the same node.
	SelfReferences int `json:"self_references"`
}

// Result is the timetable layer for one school and year range.
type Result struct {
	Timetable *types.Node
	School    *types.Node
	Years     []*types.Node
	// Terms holds terms and term breaks in table order.
	Terms []*types.Node
	// Weeks holds academic and holiday weeks in table order.
	Weeks []*types.Node
	// Days holds the persisted days of every variant in table order.
	Days    []*types.Node
	Periods []*types.Node

	Batch  *types.Batch
	Report Report

	periodDay map[string]*types.Node
}

// Collections returns the nodes keyed by role.
func (r *Result) Collections() map[string][]*types.Node {
	return map[string][]*types.Node{
		RoleTimetable: {r.Timetable},
		RoleYears:     r.Years,
		RoleTerms:     r.Terms,
		RoleWeeks:     r.Weeks,
		RoleDays:      r.Days,
		RolePeriods:   r.Periods,
	}
}

// DayOf returns the academic day a period belongs to.
func (r *Result) DayOf(periodID string) (*types.Node, bool) {
	d, ok := r.periodDay[periodID]
	return d, ok
}

// Builder constructs timetable layers.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a timetable builder. A nil logger falls back to slog.Default().
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build constructs every timetable node from in, then runs the containment, calendar
// cross-link and sequence passes. cal must cover the school year; day rows without a calendar
// day are skipped. school, when non-nil, is attached as the owner of the timetable.
func (b *Builder) Build(in *tables.Inputs, cal *calendar.Result, school *types.SchoolRef) (*Result, error) {
	if in == nil || cal == nil {
		return nil, fmt.Errorf("%w: inputs and calendar are required", types.ErrInvalidValue)
	}

	r := &Result{
		Batch:     types.NewBatch(),
		periodDay: make(map[string]*types.Node),
	}
	if school != nil && school.UniqueID != "" {
		r.School = r.Batch.AddNode(school.Node())
	}

	b.construct(r, in, cal)

	if err := b.linkContainment(r); err != nil {
		return nil, err
	}
	b.linkCalendar(r, cal)
	b.linkSequences(r)

	b.logger.Info("Built timetable",
		"timetable", r.Timetable.UniqueID,
		"years", len(r.Years),
		"terms", len(r.Terms),
		"weeks", len(r.Weeks),
		"days", len(r.Days),
		"periods", len(r.Periods),
		"edges", len(r.Batch.Edges),
		"skipped_days", len(r.Report.SkippedDays),
		"ambiguities", r.Report.Ambiguities)

	return r, nil
}

func (b *Builder) construct(r *Result, in *tables.Inputs, cal *calendar.Result) {
	school := in.School.ID
	startYear, endYear := in.School.Start.Year(), in.School.End.Year()

	name := fmt.Sprintf("%d-%d", startYear, endYear)
	if in.School.Name != "" {
		name = in.School.Name + " " + name
	}
	r.Timetable = r.Batch.AddNode(&types.Node{
		UniqueID:  TimetableID(school, startYear, endYear),
		Kind:      types.KindTimetable,
		Name:      name,
		StartDate: in.School.Start,
		EndDate:   in.School.End,
	})

	for y := startYear; y <= endYear; y++ {
		year := r.Batch.AddNode(&types.Node{
			UniqueID: YearID(school, y),
			Kind:     types.KindAcademicYear,
			Name:     fmt.Sprintf("%d", y),
			Year:     y,
		})
		r.Years = append(r.Years, year)
		b.logger.Debug("Created academic year", "unique_id", year.UniqueID)
	}

	termNumber := 0
	for _, row := range in.Terms {
		n := &types.Node{
			Kind:      types.KindAcademicTermBreak,
			Name:      row.Name,
			StartDate: row.Start,
			EndDate:   row.End,
		}
		if row.Break {
			n.UniqueID = BreakID(school, startYear, endYear, row.Start)
		} else {
			termNumber++
			n.Kind = types.KindAcademicTerm
			n.TermNumber = termNumber
			n.UniqueID = TermID(school, startYear, endYear, termNumber)
		}
		r.Terms = append(r.Terms, r.Batch.AddNode(n))
		b.logger.Debug("Created term", "unique_id", n.UniqueID, "kind", n.Kind)
	}

	weekNumber := 0
	for _, row := range in.Weeks {
		n := &types.Node{
			Kind:      types.KindHolidayWeek,
			StartDate: row.Start,
			EndDate:   row.Start.AddDate(0, 0, 6),
			Name:      "Holiday week " + row.Start.Format(types.DateLayout),
		}
		if !row.Holiday() {
			weekNumber++
			n.Kind = types.KindAcademicWeek
			n.WeekNumber = weekNumber
			n.WeekType = row.WeekType
			n.Name = fmt.Sprintf("Week %d", weekNumber)
		}
		n.UniqueID = DatedID(n.Kind, school, row.Start)
		r.Weeks = append(r.Weeks, r.Batch.AddNode(n))
		b.logger.Debug("Created week", "unique_id", n.UniqueID, "kind", n.Kind)
	}

	academicDay := 0
	for _, row := range in.Days {
		date := row.Date.Format(types.DateLayout)
		if _, ok := cal.Day(row.Date); !ok {
			r.Report.SkippedDays = append(r.Report.SkippedDays, date)
			b.logger.Debug("Skipping day outside calendar", "date", date)
			continue
		}

		kind := row.DayType.Kind()
		n := &types.Node{
			UniqueID:  DatedID(kind, school, row.Date),
			Kind:      kind,
			Name:      row.Date.Format("Monday 2 January 2006"),
			Date:      row.Date,
			DayOfWeek: row.Date.Weekday().String(),
			DayType:   string(row.DayType),
		}
		if kind == types.KindAcademicDay {
			academicDay++
			n.AcademicDay = academicDay
			n.WeekType = row.WeekType
		}
		day := r.Batch.AddNode(n)
		r.Days = append(r.Days, day)
		b.logger.Debug("Created day", "unique_id", day.UniqueID, "kind", kind)

		if kind == types.KindAcademicDay {
			b.constructPeriods(r, school, day, in.Periods)
		}
	}
}

func (b *Builder) constructPeriods(r *Result, school string, day *types.Node, rows []tables.PeriodRow) {
	weekType := day.WeekType
	if weekType == "" {
		if week, _ := firstContaining(r.Weeks, day.Date, weekContains); week != nil {
			weekType = week.WeekType
		}
	}

	counted := 0
	for i, row := range rows {
		kind := row.Type.Kind()
		n := &types.Node{
			UniqueID:  PeriodID(kind, school, day.Date, i+1),
			Kind:      kind,
			Name:      row.Name,
			Date:      day.Date,
			StartTime: clock(day.Date, row.Start),
			EndTime:   clock(day.Date, row.End),
		}
		if row.Type.Counted() {
			counted++
			n.PeriodOfDay = counted
			n.PeriodCode = PeriodCode(weekType, day.Date, row.Code)
		}
		p := r.Batch.AddNode(n)
		r.Periods = append(r.Periods, p)
		r.periodDay[p.UniqueID] = day
	}
	b.logger.Debug("Created periods", "day", day.UniqueID, "count", len(rows))
}

func clock(date time.Time, offset time.Duration) time.Time {
	return date.Add(offset)
}
