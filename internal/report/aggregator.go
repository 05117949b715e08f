package report

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/studylock/internal/database"
	"github.com/example/studylock/internal/scheduling"
	"github.com/example/studylock/pkg/models"
)

// Action kinds in the per-day log.
const (
	KindAnswer = "answer"
	KindSpend  = "spend"
	KindRefund = "refund"
)

// Aggregator maintains the per-day rollup document consumed by server-side
// reporting. Days are keyed in the fixed bucketing zone. All counter updates
// are SQL-side increments, so answer and spend events racing within the same
// day stay additive; the grade/mode sets and the action log are append-only.
type Aggregator struct {
	store *database.Store
}

// NewAggregator creates an aggregator on the given store.
func NewAggregator(store *database.Store) *Aggregator {
	return &Aggregator{store: store}
}

// RecordAnswer folds one answered question into today's aggregate.
func (a *Aggregator) RecordAnswer(mode models.Mode, grade int, correct bool, points int, now time.Time) error {
	day := scheduling.DayKey(now)
	correctInc := 0
	if correct {
		correctInc = 1
	}

	tx, err := a.store.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin aggregate tx: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(a.store.Rebind(`
		INSERT INTO daily_aggregates (day, points, study_count, correct_count)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (day) DO UPDATE SET
			points = daily_aggregates.points + excluded.points,
			study_count = daily_aggregates.study_count + 1,
			correct_count = daily_aggregates.correct_count + excluded.correct_count`),
		day, points, correctInc)
	if err != nil {
		return fmt.Errorf("failed to increment daily aggregate: %v", err)
	}

	_, err = tx.Exec(a.store.Rebind(`
		INSERT INTO daily_modes (day, mode) VALUES (?, ?)
		ON CONFLICT (day, mode) DO NOTHING`), day, mode)
	if err != nil {
		return fmt.Errorf("failed to record studied mode: %v", err)
	}
	_, err = tx.Exec(a.store.Rebind(`
		INSERT INTO daily_grades (day, grade) VALUES (?, ?)
		ON CONFLICT (day, grade) DO NOTHING`), day, grade)
	if err != nil {
		return fmt.Errorf("failed to record studied grade: %v", err)
	}

	_, err = tx.Exec(a.store.Rebind(`
		INSERT INTO daily_actions (day, kind, mode, correct, delta, at_sec)
		VALUES (?, ?, ?, ?, ?, ?)`),
		day, KindAnswer, mode, correct, points, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to append daily action: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit aggregate tx: %v", err)
	}
	return nil
}

// RecordSpend folds a point spend into today's aggregate. Both the primary
// pointsUsed counter and the legacy usedPoints alias move together; older
// report consumers still read the alias.
func (a *Aggregator) RecordSpend(points int, now time.Time) error {
	return a.recordUsage(KindSpend, points, now)
}

// RecordRefund reverses part of a spend in today's usage counters.
func (a *Aggregator) RecordRefund(points int, now time.Time) error {
	return a.recordUsage(KindRefund, -points, now)
}

func (a *Aggregator) recordUsage(kind string, points int, now time.Time) error {
	day := scheduling.DayKey(now)

	tx, err := a.store.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin aggregate tx: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(a.store.Rebind(`
		INSERT INTO daily_aggregates (day, points_used, used_points)
		VALUES (?, ?, ?)
		ON CONFLICT (day) DO UPDATE SET
			points_used = daily_aggregates.points_used + excluded.points_used,
			used_points = daily_aggregates.used_points + excluded.used_points`),
		day, points, points)
	if err != nil {
		return fmt.Errorf("failed to increment usage counters: %v", err)
	}

	_, err = tx.Exec(a.store.Rebind(`
		INSERT INTO daily_actions (day, kind, delta, at_sec) VALUES (?, ?, ?, ?)`),
		day, kind, points, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to append daily action: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit aggregate tx: %v", err)
	}
	return nil
}

// Day returns the aggregate document for a day key, or ErrNotFound when the
// day has no activity.
func (a *Aggregator) Day(day string) (*models.DailyAggregate, error) {
	var agg models.DailyAggregate
	err := a.store.DB.Get(&agg, a.store.Rebind(
		"SELECT day, points, points_used, used_points, study_count, correct_count FROM daily_aggregates WHERE day = ?"), day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read daily aggregate: %v", err)
	}

	if err := a.store.DB.Select(&agg.ModesStudied, a.store.Rebind(
		"SELECT mode FROM daily_modes WHERE day = ? ORDER BY mode"), day); err != nil {
		return nil, fmt.Errorf("failed to read studied modes: %v", err)
	}
	if err := a.store.DB.Select(&agg.GradesStudied, a.store.Rebind(
		"SELECT grade FROM daily_grades WHERE day = ? ORDER BY grade"), day); err != nil {
		return nil, fmt.Errorf("failed to read studied grades: %v", err)
	}
	return &agg, nil
}

// Actions returns the append-only action log for a day.
func (a *Aggregator) Actions(day string) ([]models.DailyAction, error) {
	var actions []models.DailyAction
	err := a.store.DB.Select(&actions, a.store.Rebind(
		"SELECT * FROM daily_actions WHERE day = ? ORDER BY id"), day)
	if err != nil {
		return nil, fmt.Errorf("failed to read daily actions: %v", err)
	}
	return actions, nil
}

// ModeReports builds the per-mode report payloads for a day.
func (a *Aggregator) ModeReports(day string) ([]models.DailyReport, error) {
	var reports []models.DailyReport
	err := a.store.DB.Select(&reports, a.store.Rebind(`
		SELECT mode,
		       COUNT(*) AS answer_count,
		       SUM(CASE WHEN correct THEN 1 ELSE 0 END) AS correct_count,
		       SUM(delta) AS points_change
		FROM daily_actions
		WHERE day = ? AND kind = ?
		GROUP BY mode
		ORDER BY mode`), day, KindAnswer)
	if err != nil {
		return nil, fmt.Errorf("failed to build mode reports: %v", err)
	}
	return reports, nil
}
