package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/scholia/pkg/types"
)

func TestNodeDir(t *testing.T) {
	ws := New("/data", nil)
	tt := ws.TimetableDir("SCH", nil)
	assert.Equal(t, filepath.Join("/data", "schools", "SCH", "timetable"), tt)
	assert.Equal(t, "/srv/sch/timetable", ws.TimetableDir("SCH", &types.SchoolRef{UniqueID: "SCH", Path: "/srv/sch"}))

	day := &types.Node{Kind: types.KindAcademicDay, AcademicDay: 3}
	tests := []struct {
		name string
		node *types.Node
		want string
		ok   bool
	}{
		{"year", &types.Node{Kind: types.KindAcademicYear, Year: 2024}, filepath.Join(tt, "years", "2024"), true},
		{"term", &types.Node{Kind: types.KindAcademicTerm, TermNumber: 2}, filepath.Join(tt, "terms", "term_2"), true},
		{"week", &types.Node{Kind: types.KindAcademicWeek, WeekNumber: 7}, filepath.Join(tt, "weeks", "week_7"), true},
		{"day", day, filepath.Join(tt, "days", "day_3"), true},
		{"period", &types.Node{Kind: types.KindRegistrationPeriod, PeriodCode: "AMonR"}, filepath.Join(tt, "days", "day_3", "periods", "AMonR"), true},
		{"holiday week", &types.Node{Kind: types.KindHolidayWeek}, "", false},
		{"term break", &types.Node{Kind: types.KindAcademicTermBreak}, "", false},
		{"break period", &types.Node{Kind: types.KindBreakPeriod}, "", false},
		{"staff day", &types.Node{Kind: types.KindStaffDay}, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ws.NodeDir(tt, tc.node, day)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMaterializeIsIdempotent(t *testing.T) {
	ws := New(t.TempDir(), nil)
	node := &types.Node{
		UniqueID:   "AcademicWeek_SCH_2024-01-01",
		Kind:       types.KindAcademicWeek,
		Name:       "Week 1",
		WeekNumber: 1,
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	dir, ok := ws.NodeDir(ws.TimetableDir("SCH", nil), node, nil)
	require.True(t, ok)

	require.NoError(t, ws.Materialize(dir, node))
	assert.Equal(t, dir, node.Path)

	path := filepath.Join(dir, CompanionFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Records, 2)
	assert.Equal(t, "document", doc.Records[0].TypeName)
	assert.Equal(t, node.UniqueID, doc.Records[0].Meta["unique_id"])
	assert.Equal(t, dir, doc.Records[0].Meta["path"])
	assert.Equal(t, "2024-01-01", doc.Records[0].Meta["start_date"])

	// A second write leaves the file untouched.
	require.NoError(t, os.WriteFile(path, []byte(`{"edited":true}`), 0o644))
	require.NoError(t, ws.Materialize(dir, node))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"edited":true}`, string(data))
}
