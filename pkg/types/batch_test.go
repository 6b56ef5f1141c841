package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchMergeSemantics(t *testing.T) {
	b := NewBatch()

	year := &Node{UniqueID: "AcademicYear_SCH_2024", Kind: KindAcademicYear, Year: 2024}
	got := b.AddNode(year)
	assert.Same(t, year, got)

	dup := &Node{UniqueID: "AcademicYear_SCH_2024", Kind: KindAcademicYear, Year: 2024}
	got = b.AddNode(dup)
	assert.Same(t, year, got, "existing node should be returned for a duplicate unique_id")
	assert.Len(t, b.Nodes, 1)

	tt := b.AddNode(&Node{UniqueID: "SchoolTimetable_SCH_2024_2024", Kind: KindTimetable})
	edge := NewEdge(HasRelation(KindTimetable, KindAcademicYear), CategoryHas, tt, year)
	assert.True(t, b.AddEdge(edge))
	assert.False(t, b.AddEdge(NewEdge(edge.Type, CategoryHas, tt, year)))
	assert.Len(t, b.Edges, 1)

	assert.Len(t, b.EdgesFrom(tt.UniqueID), 1)
	assert.Len(t, b.EdgesTo(year.UniqueID), 1)
	assert.Equal(t, 1, b.CountByCategory()[CategoryHas])
}

func TestBatchMerge(t *testing.T) {
	a := NewBatch()
	a.AddNode(&Node{UniqueID: "a", Kind: KindCalendarDay})

	other := NewBatch()
	other.AddNode(&Node{UniqueID: "a", Kind: KindCalendarDay})
	other.AddNode(&Node{UniqueID: "b", Kind: KindCalendarDay})

	a.Merge(other)
	a.Merge(nil)
	assert.Len(t, a.Nodes, 2)

	_, ok := a.Node("b")
	assert.True(t, ok)
}

func TestZeroValueBatch(t *testing.T) {
	var b Batch
	b.AddNode(&Node{UniqueID: "x", Kind: KindCalendarDay})
	_, ok := b.Node("x")
	assert.True(t, ok)
}
