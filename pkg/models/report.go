package models

// DailyReport is the per-mode payload sent to the reporting collaborator
// once a day.
type DailyReport struct {
	Mode         string `json:"mode" db:"mode"`
	AnswerCount  int    `json:"answer_count" db:"answer_count"`
	CorrectCount int    `json:"correct_count" db:"correct_count"`
	PointsChange int    `json:"points_change" db:"points_change"`
}

// DailyAggregate is the per-day rollup document consumed by server-side
// reporting. Day is a calendar date ("2006-01-02") in the fixed bucketing
// zone. UsedPoints mirrors PointsUsed for older report consumers; both carry
// the same value.
type DailyAggregate struct {
	Day           string   `json:"day" db:"day"`
	Points        int      `json:"points" db:"points"`
	PointsUsed    int      `json:"pointsUsed" db:"points_used"`
	UsedPoints    int      `json:"usedPoints" db:"used_points"`
	StudyCount    int      `json:"studyCount" db:"study_count"`
	CorrectCount  int      `json:"correctCount" db:"correct_count"`
	GradesStudied []int    `json:"gradesStudied"`
	ModesStudied  []string `json:"modesStudied"`
}

// DailyAction is one row of the append-only per-day action log.
type DailyAction struct {
	ID      int64  `json:"id" db:"id"`
	Day     string `json:"day" db:"day"`
	Kind    string `json:"kind" db:"kind"`
	Mode    string `json:"mode" db:"mode"`
	Correct bool   `json:"correct" db:"correct"`
	Delta   int    `json:"delta" db:"delta"`
	AtSec   int64  `json:"at_sec" db:"at_sec"`
}
