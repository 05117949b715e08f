package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studylock/internal/database"
	"github.com/example/studylock/internal/scheduling"
	"github.com/example/studylock/pkg/models"
)

func openTestStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, scheduling.BucketZone())

func TestRecordAnswer_IncrementsAdditively(t *testing.T) {
	agg := NewAggregator(openTestStore(t))

	require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, true, 8, now))
	require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, false, 0, now))
	require.NoError(t, agg.RecordAnswer(models.ModeSort, 4, true, 12, now))

	day, err := agg.Day(scheduling.DayKey(now))
	require.NoError(t, err)
	assert.Equal(t, 20, day.Points)
	assert.Equal(t, 3, day.StudyCount)
	assert.Equal(t, 2, day.CorrectCount)
	assert.Zero(t, day.PointsUsed)
}

func TestRecordAnswer_ModeAndGradeSetsStayUnique(t *testing.T) {
	agg := NewAggregator(openTestStore(t))

	for i := 0; i < 3; i++ {
		require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, true, 8, now))
	}
	require.NoError(t, agg.RecordAnswer(models.ModeSort, 5, true, 12, now))

	day, err := agg.Day(scheduling.DayKey(now))
	require.NoError(t, err)
	assert.Equal(t, []string{"MEANING", "SORT"}, day.ModesStudied)
	assert.Equal(t, []int{3, 5}, day.GradesStudied)
}

func TestRecordSpend_MovesBothUsageCounters(t *testing.T) {
	agg := NewAggregator(openTestStore(t))

	require.NoError(t, agg.RecordSpend(20, now))
	require.NoError(t, agg.RecordRefund(10, now))

	day, err := agg.Day(scheduling.DayKey(now))
	require.NoError(t, err)
	assert.Equal(t, 10, day.PointsUsed)
	assert.Equal(t, day.PointsUsed, day.UsedPoints)
}

func TestDay_SplitsAtBucketZoneMidnight(t *testing.T) {
	agg := NewAggregator(openTestStore(t))

	lateNight := time.Date(2025, 6, 10, 23, 59, 0, 0, scheduling.BucketZone())
	earlyMorning := time.Date(2025, 6, 11, 0, 1, 0, 0, scheduling.BucketZone())
	require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, true, 8, lateNight))
	require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, true, 8, earlyMorning))

	first, err := agg.Day("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, 1, first.StudyCount)

	second, err := agg.Day("2025-06-11")
	require.NoError(t, err)
	assert.Equal(t, 1, second.StudyCount)
}

func TestDay_NotFoundForQuietDay(t *testing.T) {
	agg := NewAggregator(openTestStore(t))

	_, err := agg.Day("2025-01-01")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestActions_AppendOnlyLogKeepsOrder(t *testing.T) {
	agg := NewAggregator(openTestStore(t))

	require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, true, 8, now))
	require.NoError(t, agg.RecordSpend(20, now.Add(time.Minute)))
	require.NoError(t, agg.RecordRefund(5, now.Add(2*time.Minute)))

	actions, err := agg.Actions(scheduling.DayKey(now))
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, KindAnswer, actions[0].Kind)
	assert.Equal(t, KindSpend, actions[1].Kind)
	assert.Equal(t, 20, actions[1].Delta)
	assert.Equal(t, KindRefund, actions[2].Kind)
	assert.Equal(t, -5, actions[2].Delta)
}

func TestModeReports_GroupsAnswersByMode(t *testing.T) {
	agg := NewAggregator(openTestStore(t))

	require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, true, 8, now))
	require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, false, 0, now))
	require.NoError(t, agg.RecordAnswer(models.ModeSort, 4, true, 12, now))
	// Spends never show up in the per-mode answer report.
	require.NoError(t, agg.RecordSpend(20, now))

	reports, err := agg.ModeReports(scheduling.DayKey(now))
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "MEANING", reports[0].Mode)
	assert.Equal(t, 2, reports[0].AnswerCount)
	assert.Equal(t, 1, reports[0].CorrectCount)
	assert.Equal(t, 8, reports[0].PointsChange)

	assert.Equal(t, "SORT", reports[1].Mode)
	assert.Equal(t, 1, reports[1].AnswerCount)
	assert.Equal(t, 12, reports[1].PointsChange)
}
