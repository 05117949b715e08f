package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studylock/pkg/models"
)

// LockRegistryRepository handles database operations for the lock registry.
// The registry is written from the admin side and read by the enforcement
// loop on every check.
type LockRegistryRepository struct {
	store *Store
}

// NewLockRegistryRepository creates a new repository instance
func NewLockRegistryRepository(store *Store) *LockRegistryRepository {
	return &LockRegistryRepository{store: store}
}

// IsLocked reports whether the package is registered and toggled locked.
// Unknown packages are not locked.
func (r *LockRegistryRepository) IsLocked(packageID string) (bool, error) {
	var locked bool
	err := r.store.DB.Get(&locked, r.store.Rebind(
		"SELECT is_locked FROM locked_apps WHERE package_id = ?"), packageID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read lock registry: %v", err)
	}
	return locked, nil
}

// SetLocked registers or updates an app and its locked flag.
func (r *LockRegistryRepository) SetLocked(packageID, label string, locked bool) error {
	_, err := r.store.DB.Exec(r.store.Rebind(`
		INSERT INTO locked_apps (package_id, label, is_locked) VALUES (?, ?, ?)
		ON CONFLICT (package_id) DO UPDATE SET
			label = excluded.label,
			is_locked = excluded.is_locked`),
		packageID, label, locked)
	if err != nil {
		return fmt.Errorf("failed to update lock registry: %v", err)
	}
	return nil
}

// All returns every registered app ordered by label.
func (r *LockRegistryRepository) All() ([]models.LockedApp, error) {
	var apps []models.LockedApp
	err := r.store.DB.Select(&apps, "SELECT * FROM locked_apps ORDER BY label")
	if err != nil {
		return nil, fmt.Errorf("failed to list lock registry: %v", err)
	}
	return apps, nil
}
