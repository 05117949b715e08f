package models

// UnlockGrant permits a locked package to run until a deadline. At most one
// grant exists per package; buying again overwrites the previous grant.
// Grants with UnlockedUntilSec <= now are expired and get purged by the
// enforcement loop.
type UnlockGrant struct {
	PackageID        string `json:"package_id" db:"package_id"`
	UnlockedUntilSec int64  `json:"unlocked_until_sec" db:"unlocked_until_sec"`
}

// Active reports whether the grant still covers nowSec.
func (g *UnlockGrant) Active(nowSec int64) bool {
	return g.UnlockedUntilSec > nowSec
}

// LockedApp is one row of the lock registry: an installed application the
// parent can toggle between locked and freely usable.
type LockedApp struct {
	PackageID string `json:"package_id" db:"package_id"`
	Label     string `json:"label" db:"label"`
	IsLocked  bool   `json:"is_locked" db:"is_locked"`
}
