package timetable

import (
	"sort"

	"github.com/soundprediction/scholia/pkg/types"
)

// sequenceGroups lists the kinds that share one chronological sequence.
var sequenceGroups = [][]types.NodeKind{
	{types.KindAcademicYear},
	{types.KindAcademicTerm, types.KindAcademicTermBreak},
	{types.KindAcademicWeek, types.KindHolidayWeek},
	dayKinds,
	periodKinds,
}

// sequenceTable maps an ordered (earlier, later) kind pair to its "follows" relationship type.
var sequenceTable = func() map[[2]types.NodeKind]types.RelType {
	m := make(map[[2]types.NodeKind]types.RelType)
	for _, group := range sequenceGroups {
		for _, prev := range group {
			for _, next := range group {
				m[[2]types.NodeKind{prev, next}] = types.FollowsRelation(next, prev)
			}
		}
	}
	return m
}()

// SequenceRelation returns the relationship type for an edge from prev to the node that
// immediately follows it, or false when the pair has no sequence relationship.
func SequenceRelation(prev, next types.NodeKind) (types.RelType, bool) {
	rel, ok := sequenceTable[[2]types.NodeKind{prev, next}]
	return rel, ok
}

func (b *Builder) linkSequences(r *Result) {
	b.sequence(r, r.Years, func(x, y *types.Node) bool { return x.Year < y.Year })
	b.sequence(r, r.Terms, func(x, y *types.Node) bool { return x.StartDate.Before(y.StartDate) })
	b.sequence(r, r.Weeks, func(x, y *types.Node) bool { return x.StartDate.Before(y.StartDate) })
	b.sequence(r, r.Days, func(x, y *types.Node) bool { return x.Date.Before(y.Date) })
	b.sequence(r, r.Periods, func(x, y *types.Node) bool {
		if !x.StartTime.Equal(y.StartTime) {
			return x.StartTime.Before(y.StartTime)
		}
		return x.EndTime.Before(y.EndTime)
	})

	b.logger.Info("Linked sequences", "edges", r.Batch.CountByCategory()[types.CategoryFollows])
}

// sequence sorts a copy of nodes with less (ties keep input order) and links each adjacent pair.
func (b *Builder) sequence(r *Result, nodes []*types.Node, less func(x, y *types.Node) bool) {
	sorted := make([]*types.Node, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if prev.UniqueID == next.UniqueID {
			r.Report.SelfReferences++
			b.logger.Warn("Skipping self-referencing sequence edge", "node", prev.UniqueID)
			continue
		}
		rel, ok := SequenceRelation(prev.Kind, next.Kind)
		if !ok {
			b.logger.Debug("No sequence relationship", "prev", prev.Kind, "next", next.Kind)
			continue
		}
		r.Batch.AddEdge(types.NewEdge(rel, types.CategoryFollows, prev, next))
	}
}
