// Package calendar builds the generic calendar layer (calendar, years, months, ISO weeks and
// days) that timetable nodes are cross-linked to.
package calendar

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/scholia/pkg/types"
)

// Collection roles of a calendar Result.
const (
	RoleCalendar = "calendar_node"
	RoleYears    = "calendar_year_nodes"
	RoleMonths   = "calendar_month_nodes"
	RoleWeeks    = "calendar_week_nodes"
	RoleDays     = "calendar_day_nodes"
)

// Result is the calendar layer for one date range.
type Result struct {
	Calendar *types.Node
	Years    []*types.Node
	Months   []*types.Node
	Weeks    []*types.Node
	Days     []*types.Node

	// Batch holds every calendar node and edge in construction order.
	Batch *types.Batch

	byDate      map[string]*types.Node
	byWeekStart map[string]*types.Node
	byYear      map[int]*types.Node
}

// Day returns the calendar day for date.
func (r *Result) Day(date time.Time) (*types.Node, bool) {
	n, ok := r.byDate[date.Format(types.DateLayout)]
	return n, ok
}

// Week returns the calendar week starting on start.
func (r *Result) Week(start time.Time) (*types.Node, bool) {
	n, ok := r.byWeekStart[start.Format(types.DateLayout)]
	return n, ok
}

// Year returns the calendar year node for year.
func (r *Result) Year(year int) (*types.Node, bool) {
	n, ok := r.byYear[year]
	return n, ok
}

// Collections returns the nodes keyed by role.
func (r *Result) Collections() map[string][]*types.Node {
	return map[string][]*types.Node{
		RoleCalendar: {r.Calendar},
		RoleYears:    r.Years,
		RoleMonths:   r.Months,
		RoleWeeks:    r.Weeks,
		RoleDays:     r.Days,
	}
}

// Builder constructs calendar layers.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a calendar builder. A nil logger falls back to slog.Default().
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build creates the calendar layer covering [start, end]. Weeks are ISO weeks and may start
// before start or end after end so that every day in range has a week.
func (b *Builder) Build(start, end time.Time) *Result {
	start = truncate(start)
	end = truncate(end)
	if end.Before(start) {
		start, end = end, start
	}

	r := &Result{
		Batch:       types.NewBatch(),
		byDate:      make(map[string]*types.Node),
		byWeekStart: make(map[string]*types.Node),
		byYear:      make(map[int]*types.Node),
	}

	r.Calendar = r.Batch.AddNode(&types.Node{
		UniqueID:  fmt.Sprintf("Calendar_%s_%s", start.Format(types.DateLayout), end.Format(types.DateLayout)),
		Kind:      types.KindCalendar,
		StartDate: start,
		EndDate:   end,
	})

	months := make(map[string]*types.Node)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		year := r.year(d.Year())
		month := r.month(months, year, d)
		week := r.week(year, d)

		day := r.Batch.AddNode(&types.Node{
			UniqueID:  DayID(d),
			Kind:      types.KindCalendarDay,
			Name:      d.Format("Monday 2 January 2006"),
			Date:      d,
			DayOfWeek: d.Weekday().String(),
		})
		r.Days = append(r.Days, day)
		r.byDate[d.Format(types.DateLayout)] = day

		r.has(month, day)
		r.has(week, day)
	}

	r.sequence(r.Years)
	r.sequence(r.Months)
	r.sequence(r.Weeks)
	r.sequence(r.Days)

	b.logger.Info("Built calendar layer",
		"calendar", r.Calendar.UniqueID,
		"years", len(r.Years),
		"months", len(r.Months),
		"weeks", len(r.Weeks),
		"days", len(r.Days))

	return r
}

func (r *Result) year(y int) *types.Node {
	if n, ok := r.byYear[y]; ok {
		return n
	}
	n := r.Batch.AddNode(&types.Node{
		UniqueID:  YearID(y),
		Kind:      types.KindCalendarYear,
		Name:      fmt.Sprintf("%d", y),
		Year:      y,
		StartDate: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
	r.Years = append(r.Years, n)
	r.byYear[y] = n
	r.has(r.Calendar, n)
	return n
}

func (r *Result) month(months map[string]*types.Node, year *types.Node, d time.Time) *types.Node {
	id := MonthID(d)
	if n, ok := months[id]; ok {
		return n
	}
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	n := r.Batch.AddNode(&types.Node{
		UniqueID:  id,
		Kind:      types.KindCalendarMonth,
		Name:      d.Format("January 2006"),
		Year:      d.Year(),
		Month:     int(d.Month()),
		StartDate: first,
		EndDate:   first.AddDate(0, 1, -1),
	})
	months[id] = n
	r.Months = append(r.Months, n)
	r.has(year, n)
	return n
}

// week returns the ISO week containing d. A week straddling a year boundary is owned by the
// year of its first in-range day.
func (r *Result) week(year *types.Node, d time.Time) *types.Node {
	start := WeekStart(d)
	key := start.Format(types.DateLayout)
	if n, ok := r.byWeekStart[key]; ok {
		return n
	}
	isoYear, isoWeek := d.ISOWeek()
	n := r.Batch.AddNode(&types.Node{
		UniqueID:   WeekID(d),
		Kind:       types.KindCalendarWeek,
		Name:       fmt.Sprintf("%d-W%02d", isoYear, isoWeek),
		Year:       isoYear,
		WeekNumber: isoWeek,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 6),
	})
	r.Weeks = append(r.Weeks, n)
	r.byWeekStart[key] = n
	r.has(year, n)
	return n
}

func (r *Result) has(parent, child *types.Node) {
	r.Batch.AddEdge(types.NewEdge(types.HasRelation(parent.Kind, child.Kind), types.CategoryHas, parent, child))
}

// sequence links adjacent nodes of one collection, already in chronological order.
func (r *Result) sequence(nodes []*types.Node) {
	for i := 1; i < len(nodes); i++ {
		prev, next := nodes[i-1], nodes[i]
		r.Batch.AddEdge(types.NewEdge(types.FollowsRelation(next.Kind, prev.Kind), types.CategoryFollows, prev, next))
	}
}

// YearID returns the unique_id of a calendar year.
func YearID(year int) string { return fmt.Sprintf("CalendarYear_%d", year) }

// MonthID returns the unique_id of the calendar month containing d.
func MonthID(d time.Time) string { return fmt.Sprintf("CalendarMonth_%d_%02d", d.Year(), d.Month()) }

// WeekID returns the unique_id of the ISO week containing d.
func WeekID(d time.Time) string {
	y, w := d.ISOWeek()
	return fmt.Sprintf("CalendarWeek_%d_W%02d", y, w)
}

// DayID returns the unique_id of the calendar day for d.
func DayID(d time.Time) string { return "CalendarDay_" + d.Format(types.DateLayout) }

// WeekStart returns the Monday of the ISO week containing d.
func WeekStart(d time.Time) time.Time {
	d = truncate(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
