package models

// MaxLevel is the top mastery rung. Levels run 0..8.
const MaxLevel = 8

// ProgressRecord tracks mastery of a single item within a single mode.
// There is at most one record per (item, mode) pair; records are created on
// the first answer and updated on every answer after that, never deleted.
type ProgressRecord struct {
	ItemID           int64 `json:"item_id" db:"item_id"`
	Mode             Mode  `json:"mode" db:"mode"`
	Level            int   `json:"level" db:"level"`
	NextDueAtSec     int64 `json:"next_due_at_sec" db:"next_due_at_sec"`
	LastAnsweredAtMS int64 `json:"last_answered_at_ms" db:"last_answered_at_ms"`
	StudyCount       int   `json:"study_count" db:"study_count"`
}

// Due reports whether the record is due for review at nowSec.
func (p *ProgressRecord) Due(nowSec int64) bool {
	return p.NextDueAtSec <= nowSec
}
