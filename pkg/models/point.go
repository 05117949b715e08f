package models

// PointEntry is one signed movement in the point history. History is
// append-only and bucketed by local calendar day; several entries may share
// a (day, mode) pair and are summed on read. The running balance is kept
// separately and is the authoritative value for spend checks.
type PointEntry struct {
	ID       int64  `json:"id" db:"id"`
	Mode     string `json:"mode" db:"mode"`
	EpochDay int64  `json:"epoch_day" db:"epoch_day"`
	Delta    int    `json:"delta" db:"delta"`
}

// DayTotal is a per-day per-mode aggregate of point movements.
type DayTotal struct {
	EpochDay int64  `json:"epoch_day" db:"epoch_day"`
	Mode     string `json:"mode" db:"mode"`
	Total    int    `json:"total" db:"total"`
}

// UnlockHistory records one purchase of temporary app access. Rows are
// append-only; Cancelled flips when the user ends the unlock early for a
// pro-rated refund.
type UnlockHistory struct {
	ID                int64  `json:"id" db:"id"`
	PackageID         string `json:"package_id" db:"package_id"`
	PointsSpent       int    `json:"points_spent" db:"points_spent"`
	UnlockDurationSec int64  `json:"unlock_duration_sec" db:"unlock_duration_sec"`
	UnlockedAtSec     int64  `json:"unlocked_at_sec" db:"unlocked_at_sec"`
	Cancelled         bool   `json:"cancelled" db:"cancelled"`
}

// ExpiresAtSec returns the natural end of the purchased unlock window.
func (u *UnlockHistory) ExpiresAtSec() int64 {
	return u.UnlockedAtSec + u.UnlockDurationSec
}
