package timetable

import (
	"github.com/soundprediction/scholia/pkg/calendar"
	"github.com/soundprediction/scholia/pkg/types"
)

// linkCalendar emits one "is" edge from each year, week and day to its calendar counterpart.
// Nodes without a counterpart are left unlinked.
func (b *Builder) linkCalendar(r *Result, cal *calendar.Result) {
	link := func(n, target *types.Node, ok bool) {
		if !ok {
			r.Report.CalendarMisses++
			b.logger.Debug("No calendar counterpart", "node", n.UniqueID)
			return
		}
		r.Batch.AddEdge(types.NewEdge(types.IsRelation(n.Kind, target.Kind), types.CategoryIs, n, target))
	}

	for _, year := range r.Years {
		target, ok := cal.Year(year.Year)
		link(year, target, ok)
	}
	for _, week := range r.Weeks {
		target, ok := cal.Week(week.StartDate)
		link(week, target, ok)
	}
	for _, day := range r.Days {
		target, ok := cal.Day(day.Date)
		link(day, target, ok)
	}

	b.logger.Info("Linked calendar", "edges", r.Batch.CountByCategory()[types.CategoryIs])
}
