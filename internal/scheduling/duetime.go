package scheduling

import (
	"os"
	"time"
)

// dueDays maps a mastery level to its review offset in days. Day offsets are
// anchored to local midnight in the bucketing zone, not to now+n*86400, so
// everyone who answers on the same day lands on the same boundary. Level 1
// is pinned to one day and wrong answers bypass the table entirely with a
// short retry offset.
var dueDays = map[int]int{
	2: 1,
	3: 3,
	4: 7,
	5: 14,
	6: 30,
	7: 60,
	8: 90,
}

// retryDelaySec is the short-term retry offset after a wrong answer.
const retryDelaySec = 60

// bucketZoneName is the fixed reference zone for all date bucketing. Client
// and server must agree on it, so it is not configurable; the display zone
// for due-time countdowns is (see DisplayZone).
const bucketZoneName = "Asia/Tokyo"

var bucketZone = loadBucketZone()

func loadBucketZone() *time.Location {
	loc, err := time.LoadLocation(bucketZoneName)
	if err != nil {
		// Devices without tzdata still need a stable bucket boundary.
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// BucketZone returns the fixed reference zone used for day bucketing.
func BucketZone() *time.Location {
	return bucketZone
}

// DisplayZone returns the zone for user-facing due-time countdowns: DISPLAY_TZ
// if set and valid, otherwise the device zone, otherwise the bucketing zone.
func DisplayZone() *time.Location {
	if name := os.Getenv("DISPLAY_TZ"); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
		return bucketZone
	}
	if time.Local != nil {
		return time.Local
	}
	return bucketZone
}

// startOfDay returns midnight of now's calendar day in the bucketing zone.
func startOfDay(now time.Time) time.Time {
	y, m, d := now.In(bucketZone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, bucketZone)
}

// dueAt computes the next due time in epoch seconds for a level reached at
// now by a correct answer.
func dueAt(level int, now time.Time) int64 {
	days, ok := dueDays[level]
	if !ok {
		// Level 1 and level 0 both review the next day; level 1 is the fixed
		// one-day rule, level 0 cannot be reached by a correct answer.
		days = 1
	}
	return startOfDay(now).AddDate(0, 0, days).Unix()
}

// EpochDay returns the calendar-day index of now in the bucketing zone.
func EpochDay(now time.Time) int64 {
	y, m, d := now.In(bucketZone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DayKey formats now as the per-day aggregate key in the bucketing zone.
func DayKey(now time.Time) string {
	return now.In(bucketZone).Format("2006-01-02")
}
