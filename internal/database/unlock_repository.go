package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studylock/pkg/models"
)

// UnlockRepository handles database operations for temporary-unlock grants
// and the append-only unlock history. Grants are written by the ledger's
// spend path (inside its transaction) and read concurrently by both
// enforcement triggers; each write is a full-row replace, so interleavings
// for the same package resolve to whichever write the store serializes last.
type UnlockRepository struct {
	store *Store
}

// NewUnlockRepository creates a new repository instance
func NewUnlockRepository(store *Store) *UnlockRepository {
	return &UnlockRepository{store: store}
}

// Grant returns the grant for a package, or ErrNotFound.
func (r *UnlockRepository) Grant(packageID string) (*models.UnlockGrant, error) {
	var grant models.UnlockGrant
	err := r.store.DB.Get(&grant, r.store.Rebind(
		"SELECT * FROM unlock_grants WHERE package_id = ?"), packageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unlock grant: %v", err)
	}
	return &grant, nil
}

// HasActiveGrant reports whether the package holds a grant covering nowSec.
func (r *UnlockRepository) HasActiveGrant(packageID string, nowSec int64) (bool, error) {
	var count int
	err := r.store.DB.Get(&count, r.store.Rebind(
		"SELECT COUNT(*) FROM unlock_grants WHERE package_id = ? AND unlocked_until_sec > ?"),
		packageID, nowSec)
	if err != nil {
		return false, fmt.Errorf("failed to check unlock grant: %v", err)
	}
	return count > 0, nil
}

// PurgeExpired deletes every grant whose deadline has passed. Safe to call
// repeatedly; purging an already-purged set is a no-op.
func (r *UnlockRepository) PurgeExpired(nowSec int64) error {
	_, err := r.store.DB.Exec(r.store.Rebind(
		"DELETE FROM unlock_grants WHERE unlocked_until_sec <= ?"), nowSec)
	if err != nil {
		return fmt.Errorf("failed to purge expired grants: %v", err)
	}
	return nil
}

// ActiveGrants returns grants still covering nowSec.
func (r *UnlockRepository) ActiveGrants(nowSec int64) ([]models.UnlockGrant, error) {
	var grants []models.UnlockGrant
	err := r.store.DB.Select(&grants, r.store.Rebind(
		"SELECT * FROM unlock_grants WHERE unlocked_until_sec > ? ORDER BY package_id"), nowSec)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlock grants: %v", err)
	}
	return grants, nil
}

// History returns the most recent unlock purchases, newest first.
func (r *UnlockRepository) History(limit int) ([]models.UnlockHistory, error) {
	var rows []models.UnlockHistory
	err := r.store.DB.Select(&rows, r.store.Rebind(
		"SELECT * FROM unlock_history ORDER BY id DESC LIMIT ?"), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlock history: %v", err)
	}
	return rows, nil
}
