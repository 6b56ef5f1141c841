//go:build cgo

package driver_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/scholia/pkg/driver"
	"github.com/soundprediction/scholia/pkg/types"
)

// createTempLadybugDB creates a temporary directory for ladybug database testing
func createTempLadybugDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ladybug_test.db")
}

func TestNewLadybugDriver(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		d, err := driver.NewLadybugDriver("", nil)
		require.NoError(t, err)
		assert.Equal(t, driver.GraphProviderLadybug, d.Provider())
		assert.NoError(t, d.Close(context.Background()))
	})

	t.Run("custom path", func(t *testing.T) {
		d, err := driver.NewLadybugDriver(createTempLadybugDB(t), nil)
		require.NoError(t, err)
		assert.NoError(t, d.Close(context.Background()))
	})
}

func TestLadybugMergeRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := driver.NewLadybugDriver(createTempLadybugDB(t), nil)
	require.NoError(t, err)
	defer d.Close(ctx)

	day := &types.Node{
		UniqueID:    "AcademicDay_S1_2024-01-01",
		Kind:        types.KindAcademicDay,
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DayOfWeek:   "Monday",
		AcademicDay: 1,
		WeekType:    "A",
		DayType:     "Academic",
	}
	calDay := &types.Node{
		UniqueID: "CalendarDay_2024-01-01",
		Kind:     types.KindCalendarDay,
		Date:     day.Date,
	}
	require.NoError(t, d.MergeNode(ctx, day))
	require.NoError(t, d.MergeNode(ctx, calDay))
	require.NoError(t, d.MergeNode(ctx, day))

	edge := types.NewEdge(types.IsRelation(day.Kind, calDay.Kind), types.CategoryIs, day, calDay)
	require.NoError(t, d.MergeEdge(ctx, edge))
	require.NoError(t, d.MergeEdge(ctx, edge))

	got, err := d.GetNode(ctx, day.UniqueID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AcademicDay)
	assert.Equal(t, "Monday", got.DayOfWeek)

	stats, err := d.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.NodeCount)
	assert.Equal(t, int64(1), stats.EdgeCount)

	neighbors, err := d.GetNeighbors(ctx, calDay.UniqueID)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, types.RelType("ACADEMIC_DAY_IS_CALENDAR_DAY"), neighbors[0].RelType)
	assert.False(t, neighbors[0].Outgoing)

	days, err := d.ListNodes(ctx, types.KindAcademicDay, 10)
	require.NoError(t, err)
	assert.Len(t, days, 1)
}

func TestLadybugMergeEdgeRequiresEndpoints(t *testing.T) {
	ctx := context.Background()
	d, err := driver.NewLadybugDriver("", nil)
	require.NoError(t, err)
	defer d.Close(ctx)

	year := &types.Node{UniqueID: "CalendarYear_2024", Kind: types.KindCalendarYear, Year: 2024}
	month := &types.Node{UniqueID: "CalendarMonth_2024_01", Kind: types.KindCalendarMonth}
	require.NoError(t, d.MergeNode(ctx, year))

	err = d.MergeEdge(ctx, types.NewEdge(types.HasRelation(year.Kind, month.Kind), types.CategoryHas, year, month))
	assert.ErrorIs(t, err, types.ErrNodeNotFound)
}
