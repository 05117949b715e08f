package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueAt_AlignsToBucketZoneMidnight(t *testing.T) {
	// 23:30 in the bucket zone: the one-day offset still lands on the next
	// midnight, not 24 hours later.
	now := time.Date(2025, 6, 10, 23, 30, 0, 0, BucketZone())
	due := time.Unix(dueAt(1, now), 0).In(BucketZone())

	assert.Equal(t, 2025, due.Year())
	assert.Equal(t, time.June, due.Month())
	assert.Equal(t, 11, due.Day())
	assert.Equal(t, 0, due.Hour())
	assert.Equal(t, 0, due.Minute())
}

func TestDueAt_SameDayAnswersShareTheBoundary(t *testing.T) {
	morning := time.Date(2025, 6, 10, 7, 0, 0, 0, BucketZone())
	evening := time.Date(2025, 6, 10, 22, 45, 0, 0, BucketZone())

	assert.Equal(t, dueAt(3, morning), dueAt(3, evening))
}

func TestEpochDay_RollsAtBucketZoneMidnight(t *testing.T) {
	beforeMidnight := time.Date(2025, 6, 10, 23, 59, 59, 0, BucketZone())
	afterMidnight := time.Date(2025, 6, 11, 0, 0, 1, 0, BucketZone())

	assert.Equal(t, EpochDay(beforeMidnight)+1, EpochDay(afterMidnight))
	assert.Equal(t, "2025-06-10", DayKey(beforeMidnight))
	assert.Equal(t, "2025-06-11", DayKey(afterMidnight))
}

func TestDisplayZone_FallsBackToBucketZoneOnInvalidConfig(t *testing.T) {
	t.Setenv("DISPLAY_TZ", "Not/AZone")
	assert.Equal(t, BucketZone(), DisplayZone())

	t.Setenv("DISPLAY_TZ", "America/New_York")
	assert.Equal(t, "America/New_York", DisplayZone().String())
}
