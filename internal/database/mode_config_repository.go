package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/studylock/pkg/models"
)

// Base-point bounds and per-mode-family defaults. The parent can tune each
// mode within [MinBasePoint, MaxBasePoint].
const (
	MinBasePoint = 4
	MaxBasePoint = 32

	basePointLow  = 4
	basePointMid  = 8
	basePointHigh = 12
)

// defaultBasePoints assigns each mode its family default: recognition modes
// low, production/fill modes mid, sentence-sort and conversation modes high.
var defaultBasePoints = map[models.Mode]int{
	models.ModeMeaning:     basePointLow,
	models.ModeListening:   basePointLow,
	models.ModeListeningJP: basePointLow,
	models.ModeJaToEn:      basePointMid,
	models.ModeEnEn1:       basePointMid,
	models.ModeEnEn2:       basePointMid,
	models.ModeFillBlank:   basePointMid,
	models.ModeSort:        basePointHigh,
	models.ModeListenQ1:    basePointHigh,
	models.ModeListenQ2:    basePointHigh,
}

// ModeConfigRepository handles the admin-configurable per-mode base points.
type ModeConfigRepository struct {
	store *Store
}

// NewModeConfigRepository creates a new repository instance
func NewModeConfigRepository(store *Store) *ModeConfigRepository {
	return &ModeConfigRepository{store: store}
}

// SeedDefaults inserts the family defaults for modes without a row yet.
func (r *ModeConfigRepository) SeedDefaults() error {
	for _, mode := range models.AllModes {
		_, err := r.store.DB.Exec(r.store.Rebind(`
			INSERT INTO mode_configs (mode, base_point) VALUES (?, ?)
			ON CONFLICT (mode) DO NOTHING`),
			mode, defaultBasePoints[mode])
		if err != nil {
			return fmt.Errorf("failed to seed mode config: %v", err)
		}
	}
	return nil
}

// BasePoint returns the configured base point for a mode, falling back to
// the family default when the mode was never seeded.
func (r *ModeConfigRepository) BasePoint(mode models.Mode) (int, error) {
	var point int
	err := r.store.DB.Get(&point, r.store.Rebind(
		"SELECT base_point FROM mode_configs WHERE mode = ?"), mode)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultBasePoints[mode], nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get mode config: %v", err)
	}
	return point, nil
}

// SetBasePoint stores an admin override, clamped to the allowed range.
func (r *ModeConfigRepository) SetBasePoint(mode models.Mode, point int) error {
	if point < MinBasePoint {
		point = MinBasePoint
	}
	if point > MaxBasePoint {
		point = MaxBasePoint
	}
	_, err := r.store.DB.Exec(r.store.Rebind(`
		INSERT INTO mode_configs (mode, base_point) VALUES (?, ?)
		ON CONFLICT (mode) DO UPDATE SET base_point = excluded.base_point`),
		mode, point)
	if err != nil {
		return fmt.Errorf("failed to set mode config: %v", err)
	}
	return nil
}
