package types

import "fmt"

// RelType is a graph relationship type, e.g. ACADEMIC_YEAR_HAS_ACADEMIC_TERM.
type RelType string

// EdgeCategory groups relationship types by meaning.
type EdgeCategory string

const (
	// CategoryHas marks containment: a parent hierarchy level includes a child.
	CategoryHas EdgeCategory = "has"
	// CategoryFollows marks chronological adjacency within one node collection.
	CategoryFollows EdgeCategory = "follows"
	// CategoryIs marks a timetable node coinciding with a calendar node.
	CategoryIs EdgeCategory = "is"
)

// HasRelation returns the containment relationship type from parent to child.
func HasRelation(parent, child NodeKind) RelType {
	return RelType(parent.RelPrefix() + "_HAS_" + child.RelPrefix())
}

// FollowsRelation returns the sequence relationship type stating that later follows earlier.
func FollowsRelation(later, earlier NodeKind) RelType {
	return RelType(later.RelPrefix() + "_FOLLOWS_" + earlier.RelPrefix())
}

// IsRelation returns the cross-link relationship type from a timetable node to its calendar node.
func IsRelation(node, calendar NodeKind) RelType {
	return RelType(node.RelPrefix() + "_IS_" + calendar.RelPrefix())
}

// Edge represents a directed relationship between two nodes.
type Edge struct {
	Type       RelType      `json:"type"`
	Category   EdgeCategory `json:"category"`
	SourceID   string       `json:"source_id"`
	TargetID   string       `json:"target_id"`
	SourceKind NodeKind     `json:"source_kind"`
	TargetKind NodeKind     `json:"target_kind"`
}

// NewEdge creates an edge between two nodes.
func NewEdge(relType RelType, category EdgeCategory, source, target *Node) *Edge {
	return &Edge{
		Type:       relType,
		Category:   category,
		SourceID:   source.UniqueID,
		TargetID:   target.UniqueID,
		SourceKind: source.Kind,
		TargetKind: target.Kind,
	}
}

// Key identifies the edge for merge purposes.
func (e *Edge) Key() string {
	return fmt.Sprintf("%s|%s|%s", e.Type, e.SourceID, e.TargetID)
}

// Validate checks if the Edge has all required fields set.
func (e *Edge) Validate() error {
	if e == nil {
		return ErrNilEdge
	}
	if e.Type == "" {
		return fmt.Errorf("%w: empty relationship type", ErrInvalidValue)
	}
	if e.SourceID == "" || e.TargetID == "" {
		return ErrEmptyUniqueID
	}
	return nil
}
