package types

// Batch is an ordered set of nodes and edges with merge semantics: adding a node whose
// unique_id is already present returns the existing node, and an edge with the same
// (type, source, target) is only kept once.
type Batch struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`

	nodeIndex map[string]*Node
	edgeIndex map[string]struct{}
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{
		nodeIndex: make(map[string]*Node),
		edgeIndex: make(map[string]struct{}),
	}
}

func (b *Batch) init() {
	if b.nodeIndex == nil {
		b.nodeIndex = make(map[string]*Node, len(b.Nodes))
		for _, n := range b.Nodes {
			b.nodeIndex[n.UniqueID] = n
		}
	}
	if b.edgeIndex == nil {
		b.edgeIndex = make(map[string]struct{}, len(b.Edges))
		for _, e := range b.Edges {
			b.edgeIndex[e.Key()] = struct{}{}
		}
	}
}

// AddNode adds n unless a node with the same unique_id exists, in which case the
// existing node is returned.
func (b *Batch) AddNode(n *Node) *Node {
	b.init()
	if existing, ok := b.nodeIndex[n.UniqueID]; ok {
		return existing
	}
	b.nodeIndex[n.UniqueID] = n
	b.Nodes = append(b.Nodes, n)
	return n
}

// AddEdge adds e and reports whether it was new.
func (b *Batch) AddEdge(e *Edge) bool {
	b.init()
	key := e.Key()
	if _, ok := b.edgeIndex[key]; ok {
		return false
	}
	b.edgeIndex[key] = struct{}{}
	b.Edges = append(b.Edges, e)
	return true
}

// Node looks up a node by unique_id.
func (b *Batch) Node(uniqueID string) (*Node, bool) {
	b.init()
	n, ok := b.nodeIndex[uniqueID]
	return n, ok
}

// Merge appends other's nodes and edges, keeping merge semantics.
func (b *Batch) Merge(other *Batch) {
	if other == nil {
		return
	}
	for _, n := range other.Nodes {
		b.AddNode(n)
	}
	for _, e := range other.Edges {
		b.AddEdge(e)
	}
}

// EdgesFrom returns the edges whose source is uniqueID.
func (b *Batch) EdgesFrom(uniqueID string) []*Edge {
	var out []*Edge
	for _, e := range b.Edges {
		if e.SourceID == uniqueID {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the edges whose target is uniqueID.
func (b *Batch) EdgesTo(uniqueID string) []*Edge {
	var out []*Edge
	for _, e := range b.Edges {
		if e.TargetID == uniqueID {
			out = append(out, e)
		}
	}
	return out
}

// CountByCategory counts edges per category.
func (b *Batch) CountByCategory() map[EdgeCategory]int {
	counts := make(map[EdgeCategory]int)
	for _, e := range b.Edges {
		counts[e.Category]++
	}
	return counts
}

// ContextKey is the type for values scholia stores in a context.Context.
type ContextKey string

const (
	// ContextKeyRunID carries the build run identifier.
	ContextKeyRunID ContextKey = "run_id"
	// ContextKeyRequestSource carries the entry point that started the work (cli, server).
	ContextKeyRequestSource ContextKey = "request_source"
)
