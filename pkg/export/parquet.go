// Package export writes built timetable graphs to files: Parquet node/edge tables for analysis
// and an iCalendar feed of terms and periods.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/soundprediction/scholia/pkg/types"
)

// File names written by ParquetWriter.
const (
	NodesFile = "nodes.parquet"
	EdgesFile = "edges.parquet"
)

// ParquetNode represents the schema for a graph node in Parquet
type ParquetNode struct {
	UniqueID   string     `parquet:"unique_id"`
	Label      string     `parquet:"label"`
	Name       string     `parquet:"name"`
	Path       string     `parquet:"path"`
	StartDate  *time.Time `parquet:"start_date,optional"`
	EndDate    *time.Time `parquet:"end_date,optional"`
	Date       *time.Time `parquet:"date,optional"`
	StartTime  *time.Time `parquet:"start_time,optional"`
	EndTime    *time.Time `parquet:"end_time,optional"`
	Properties string     `parquet:"properties"` // JSON string
}

// ParquetEdge represents the schema for a graph relationship in Parquet
type ParquetEdge struct {
	Type        string `parquet:"type"`
	Category    string `parquet:"category"`
	SourceID    string `parquet:"source_id"`
	TargetID    string `parquet:"target_id"`
	SourceLabel string `parquet:"source_label"`
	TargetLabel string `parquet:"target_label"`
}

// ParquetWriter handles writing graph batches to Parquet files
type ParquetWriter struct {
	baseDir string
}

// NewParquetWriter creates a new Parquet writer
// baseDir is created if it does not exist
func NewParquetWriter(baseDir string) (*ParquetWriter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", baseDir, err)
	}
	return &ParquetWriter{baseDir: baseDir}, nil
}

// BaseDir returns the output directory.
func (w *ParquetWriter) BaseDir() string {
	return w.baseDir
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// WriteBatch writes the batch nodes to nodes.parquet and its edges to edges.parquet, replacing
// previous exports.
func (w *ParquetWriter) WriteBatch(ctx context.Context, batch *types.Batch) error {
	if batch == nil {
		return fmt.Errorf("%w: nil batch", types.ErrInvalidValue)
	}
	if err := w.WriteNodes(ctx, batch.Nodes); err != nil {
		return err
	}
	return w.WriteEdges(ctx, batch.Edges)
}

// WriteNodes writes nodes to nodes.parquet
func (w *ParquetWriter) WriteNodes(ctx context.Context, nodes []*types.Node) error {
	rows := make([]ParquetNode, 0, len(nodes))
	for _, node := range nodes {
		propsJSON, err := json.Marshal(node.Properties())
		if err != nil {
			return fmt.Errorf("failed to marshal properties of %s: %w", node.UniqueID, err)
		}
		rows = append(rows, ParquetNode{
			UniqueID:   node.UniqueID,
			Label:      node.Kind.Label(),
			Name:       node.Name,
			Path:       node.Path,
			StartDate:  optionalTime(node.StartDate),
			EndDate:    optionalTime(node.EndDate),
			Date:       optionalTime(node.Date),
			StartTime:  optionalTime(node.StartTime),
			EndTime:    optionalTime(node.EndTime),
			Properties: string(propsJSON),
		})
	}
	return parquet.WriteFile(filepath.Join(w.baseDir, NodesFile), rows)
}

// WriteEdges writes edges to edges.parquet
func (w *ParquetWriter) WriteEdges(ctx context.Context, edges []*types.Edge) error {
	rows := make([]ParquetEdge, 0, len(edges))
	for _, edge := range edges {
		rows = append(rows, ParquetEdge{
			Type:        string(edge.Type),
			Category:    string(edge.Category),
			SourceID:    edge.SourceID,
			TargetID:    edge.TargetID,
			SourceLabel: edge.SourceKind.Label(),
			TargetLabel: edge.TargetKind.Label(),
		})
	}
	return parquet.WriteFile(filepath.Join(w.baseDir, EdgesFile), rows)
}
