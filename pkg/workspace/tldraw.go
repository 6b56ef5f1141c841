package workspace

import "github.com/soundprediction/scholia/pkg/types"

// Document is an empty tldraw file whose document record carries the node properties as meta.
type Document struct {
	FormatVersion int      `json:"tldrawFileFormatVersion"`
	Schema        Schema   `json:"schema"`
	Records       []Record `json:"records"`
}

// Schema is the tldraw store schema header.
type Schema struct {
	SchemaVersion int            `json:"schemaVersion"`
	Sequences     map[string]int `json:"sequences"`
}

// Record is one tldraw store record.
type Record struct {
	ID       string         `json:"id"`
	TypeName string         `json:"typeName"`
	Name     string         `json:"name"`
	GridSize int            `json:"gridSize,omitempty"`
	Index    string         `json:"index,omitempty"`
	Meta     map[string]any `json:"meta"`
}

// NewDocument returns the default companion document for n.
func NewDocument(n *types.Node) *Document {
	return &Document{
		FormatVersion: 1,
		Schema: Schema{
			SchemaVersion: 2,
			Sequences: map[string]int{
				"com.tldraw.store":    4,
				"com.tldraw.document": 2,
				"com.tldraw.page":     1,
			},
		},
		Records: []Record{
			{
				ID:       "document:document",
				TypeName: "document",
				Name:     n.Name,
				GridSize: 10,
				Meta:     n.Properties(),
			},
			{
				ID:       "page:page",
				TypeName: "page",
				Name:     "Page 1",
				Index:    "a1",
				Meta:     map[string]any{},
			},
		},
	}
}
