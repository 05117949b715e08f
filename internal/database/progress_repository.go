package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/studylock/pkg/models"
)

// ProgressRepository handles database operations for mastery progress.
// The learning flow is the only writer; keying by (item_id, mode) keeps one
// record per pair.
type ProgressRepository struct {
	store *Store
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(store *Store) *ProgressRepository {
	return &ProgressRepository{store: store}
}

// Get returns the record for an (item, mode) pair, or ErrNotFound.
func (r *ProgressRepository) Get(itemID int64, mode models.Mode) (*models.ProgressRecord, error) {
	var rec models.ProgressRecord
	err := r.store.DB.Get(&rec, r.store.Rebind(
		"SELECT * FROM progress WHERE item_id = ? AND mode = ?"), itemID, mode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %v", err)
	}
	return &rec, nil
}

// ForMode returns the records for the given items in one mode, keyed by item
// id. Items without a record are simply absent from the map.
func (r *ProgressRepository) ForMode(mode models.Mode, itemIDs []int64) (map[int64]models.ProgressRecord, error) {
	result := make(map[int64]models.ProgressRecord, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(
		"SELECT * FROM progress WHERE mode = ? AND item_id IN (?)", mode, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build progress query: %v", err)
	}

	var recs []models.ProgressRecord
	if err := r.store.DB.Select(&recs, r.store.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list progress: %v", err)
	}
	for _, rec := range recs {
		result[rec.ItemID] = rec
	}
	return result, nil
}

// Upsert creates or replaces the record for its (item, mode) pair.
func (r *ProgressRepository) Upsert(rec *models.ProgressRecord) error {
	_, err := r.store.DB.Exec(r.store.Rebind(`
		INSERT INTO progress (item_id, mode, level, next_due_at_sec, last_answered_at_ms, study_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (item_id, mode) DO UPDATE SET
			level = excluded.level,
			next_due_at_sec = excluded.next_due_at_sec,
			last_answered_at_ms = excluded.last_answered_at_ms,
			study_count = excluded.study_count`),
		rec.ItemID, rec.Mode, rec.Level, rec.NextDueAtSec, rec.LastAnsweredAtMS, rec.StudyCount)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %v", err)
	}
	return nil
}

// CountDue returns how many items are due for review in a mode at nowSec.
func (r *ProgressRepository) CountDue(mode models.Mode, nowSec int64) (int, error) {
	var count int
	err := r.store.DB.Get(&count, r.store.Rebind(
		"SELECT COUNT(*) FROM progress WHERE mode = ? AND next_due_at_sec <= ?"), mode, nowSec)
	if err != nil {
		return 0, fmt.Errorf("failed to count due progress: %v", err)
	}
	return count, nil
}
