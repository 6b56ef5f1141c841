package timetable

import (
	"fmt"
	"time"

	"github.com/soundprediction/scholia/pkg/types"
)

var dayKinds = []types.NodeKind{
	types.KindAcademicDay, types.KindHolidayDay, types.KindOffTimetableDay, types.KindStaffDay,
}

var periodKinds = []types.NodeKind{
	types.KindAcademicPeriod, types.KindRegistrationPeriod, types.KindBreakPeriod, types.KindOffTimetablePeriod,
}

// containment lists the parent kinds allowed to contain each child kind.
var containment = func() map[types.NodeKind]map[types.NodeKind]bool {
	m := make(map[types.NodeKind]map[types.NodeKind]bool)
	allow := func(parents []types.NodeKind, children ...types.NodeKind) {
		for _, p := range parents {
			if m[p] == nil {
				m[p] = make(map[types.NodeKind]bool)
			}
			for _, c := range children {
				m[p][c] = true
			}
		}
	}
	terms := []types.NodeKind{types.KindAcademicTerm, types.KindAcademicTermBreak}
	weeks := []types.NodeKind{types.KindAcademicWeek, types.KindHolidayWeek}

	allow([]types.NodeKind{types.KindSchool}, types.KindTimetable)
	allow([]types.NodeKind{types.KindTimetable}, types.KindAcademicYear)
	allow([]types.NodeKind{types.KindAcademicYear}, append(terms, weeks...)...)
	allow(terms, append(append([]types.NodeKind{}, weeks...), dayKinds...)...)
	allow(weeks, dayKinds...)
	allow([]types.NodeKind{types.KindAcademicDay}, periodKinds...)
	return m
}()

// ContainmentRelation returns the "has" relationship type for a parent and child kind, or false
// when the parent may not contain the child.
func ContainmentRelation(parent, child types.NodeKind) (types.RelType, bool) {
	if !containment[parent][child] {
		return "", false
	}
	return types.HasRelation(parent, child), true
}

func termContains(n *types.Node, d time.Time) bool {
	return !d.Before(n.StartDate) && !d.After(n.EndDate)
}

func weekContains(n *types.Node, d time.Time) bool {
	return !d.Before(n.StartDate) && !d.After(n.StartDate.AddDate(0, 0, 6))
}

// firstContaining scans candidates in construction order and returns the first one containing
// d, plus the number of later candidates that also contain it.
func firstContaining(candidates []*types.Node, d time.Time, contains func(*types.Node, time.Time) bool) (*types.Node, int) {
	var first *types.Node
	extra := 0
	for _, c := range candidates {
		if !contains(c, d) {
			continue
		}
		if first == nil {
			first = c
		} else if c.UniqueID != first.UniqueID {
			extra++
		}
	}
	return first, extra
}

func (b *Builder) linkContainment(r *Result) error {
	link := func(parent, child *types.Node) error {
		rel, ok := ContainmentRelation(parent.Kind, child.Kind)
		if !ok {
			return fmt.Errorf("%w: %s cannot contain %s", types.ErrInvalidValue, parent.Kind, child.Kind)
		}
		r.Batch.AddEdge(types.NewEdge(rel, types.CategoryHas, parent, child))
		return nil
	}
	// parent resolves the first container of child and reports dropped candidates.
	parent := func(child *types.Node, candidates []*types.Node, d time.Time,
		contains func(*types.Node, time.Time) bool) error {
		p, extra := firstContaining(candidates, d, contains)
		if extra > 0 {
			r.Report.Ambiguities += extra
			b.logger.Warn("Multiple containers match, keeping first",
				"node", child.UniqueID, "kept", p.UniqueID, "dropped", extra)
		}
		if p == nil {
			r.Report.Unparented++
			b.logger.Debug("No container found", "node", child.UniqueID, "date", d.Format(types.DateLayout))
			return nil
		}
		return link(p, child)
	}
	yearOf := func(n *types.Node, d time.Time) bool { return n.Year == d.Year() }

	if r.School != nil {
		if err := link(r.School, r.Timetable); err != nil {
			return err
		}
	}
	for _, year := range r.Years {
		if err := link(r.Timetable, year); err != nil {
			return err
		}
	}

	// A term is attached to every year its range touches.
	for _, term := range r.Terms {
		for y := term.StartDate.Year(); y <= term.EndDate.Year(); y++ {
			d := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
			if err := parent(term, r.Years, d, yearOf); err != nil {
				return err
			}
		}
	}

	for _, week := range r.Weeks {
		if err := parent(week, r.Years, week.StartDate, yearOf); err != nil {
			return err
		}
		if err := parent(week, r.Terms, week.StartDate, termContains); err != nil {
			return err
		}
	}

	for _, day := range r.Days {
		if err := parent(day, r.Weeks, day.Date, weekContains); err != nil {
			return err
		}
		if err := parent(day, r.Terms, day.Date, termContains); err != nil {
			return err
		}
	}

	for _, period := range r.Periods {
		if err := link(r.periodDay[period.UniqueID], period); err != nil {
			return err
		}
	}

	b.logger.Info("Linked containment", "edges", r.Batch.CountByCategory()[types.CategoryHas])
	return nil
}
