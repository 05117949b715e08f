package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studylock/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestProgressRepository_GetAndUpsert(t *testing.T) {
	repo := NewProgressRepository(openTestStore(t))

	_, err := repo.Get(1, models.ModeMeaning)
	assert.ErrorIs(t, err, ErrNotFound)

	rec := &models.ProgressRecord{
		ItemID: 1, Mode: models.ModeMeaning, Level: 2,
		NextDueAtSec: 1000, LastAnsweredAtMS: 999000, StudyCount: 3,
	}
	require.NoError(t, repo.Upsert(rec))

	got, err := repo.Get(1, models.ModeMeaning)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// Upserting the same pair replaces, it does not duplicate.
	rec.Level = 3
	rec.StudyCount = 4
	require.NoError(t, repo.Upsert(rec))

	got, err = repo.Get(1, models.ModeMeaning)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Level)
	assert.Equal(t, 4, got.StudyCount)
}

func TestProgressRepository_PairsAreIndependentPerMode(t *testing.T) {
	repo := NewProgressRepository(openTestStore(t))

	require.NoError(t, repo.Upsert(&models.ProgressRecord{ItemID: 1, Mode: models.ModeMeaning, Level: 5}))
	require.NoError(t, repo.Upsert(&models.ProgressRecord{ItemID: 1, Mode: models.ModeSort, Level: 1}))

	meaning, err := repo.Get(1, models.ModeMeaning)
	require.NoError(t, err)
	sorting, err := repo.Get(1, models.ModeSort)
	require.NoError(t, err)
	assert.Equal(t, 5, meaning.Level)
	assert.Equal(t, 1, sorting.Level)
}

func TestProgressRepository_ForModeOmitsUnknownItems(t *testing.T) {
	repo := NewProgressRepository(openTestStore(t))

	require.NoError(t, repo.Upsert(&models.ProgressRecord{ItemID: 1, Mode: models.ModeMeaning, Level: 2}))
	require.NoError(t, repo.Upsert(&models.ProgressRecord{ItemID: 3, Mode: models.ModeMeaning, Level: 4}))
	require.NoError(t, repo.Upsert(&models.ProgressRecord{ItemID: 1, Mode: models.ModeSort, Level: 7}))

	recs, err := repo.ForMode(models.ModeMeaning, []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[1].Level)
	assert.Equal(t, 4, recs[3].Level)

	empty, err := repo.ForMode(models.ModeMeaning, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProgressRepository_CountDue(t *testing.T) {
	repo := NewProgressRepository(openTestStore(t))

	require.NoError(t, repo.Upsert(&models.ProgressRecord{ItemID: 1, Mode: models.ModeMeaning, NextDueAtSec: 100}))
	require.NoError(t, repo.Upsert(&models.ProgressRecord{ItemID: 2, Mode: models.ModeMeaning, NextDueAtSec: 200}))
	require.NoError(t, repo.Upsert(&models.ProgressRecord{ItemID: 3, Mode: models.ModeSort, NextDueAtSec: 100}))

	count, err := repo.CountDue(models.ModeMeaning, 150)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.CountDue(models.ModeMeaning, 200)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUnlockRepository_PurgeExpiredIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	repo := NewUnlockRepository(store)

	insert := func(pkg string, until int64) {
		_, err := store.DB.Exec(store.Rebind(
			"INSERT INTO unlock_grants (package_id, unlocked_until_sec) VALUES (?, ?)"), pkg, until)
		require.NoError(t, err)
	}
	insert("expired", 100)
	insert("live", 10000)

	require.NoError(t, repo.PurgeExpired(5000))
	first, err := repo.ActiveGrants(5000)
	require.NoError(t, err)

	// A second purge with no intervening writes yields the same grant set.
	require.NoError(t, repo.PurgeExpired(5000))
	second, err := repo.ActiveGrants(5000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, second, 1)
	assert.Equal(t, "live", second[0].PackageID)
}

func TestUnlockRepository_HasActiveGrantRespectsDeadline(t *testing.T) {
	store := openTestStore(t)
	repo := NewUnlockRepository(store)

	_, err := store.DB.Exec(store.Rebind(
		"INSERT INTO unlock_grants (package_id, unlocked_until_sec) VALUES (?, ?)"), "game", int64(1000))
	require.NoError(t, err)

	active, err := repo.HasActiveGrant("game", 999)
	require.NoError(t, err)
	assert.True(t, active)

	// The deadline second itself is already expired.
	active, err = repo.HasActiveGrant("game", 1000)
	require.NoError(t, err)
	assert.False(t, active)

	active, err = repo.HasActiveGrant("unknown", 0)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestLockRegistryRepository_ToggleAndList(t *testing.T) {
	repo := NewLockRegistryRepository(openTestStore(t))

	locked, err := repo.IsLocked("unknown")
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, repo.SetLocked("com.example.game", "Game", true))
	require.NoError(t, repo.SetLocked("com.example.browser", "Browser", false))

	locked, err = repo.IsLocked("com.example.game")
	require.NoError(t, err)
	assert.True(t, locked)

	require.NoError(t, repo.SetLocked("com.example.game", "Game", false))
	locked, err = repo.IsLocked("com.example.game")
	require.NoError(t, err)
	assert.False(t, locked)

	apps, err := repo.All()
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "Browser", apps[0].Label)
	assert.Equal(t, "Game", apps[1].Label)
}

func TestModeConfigRepository_DefaultsAndClamping(t *testing.T) {
	repo := NewModeConfigRepository(openTestStore(t))

	// Unseeded modes fall back to their family default.
	point, err := repo.BasePoint(models.ModeMeaning)
	require.NoError(t, err)
	assert.Equal(t, 4, point)

	point, err = repo.BasePoint(models.ModeSort)
	require.NoError(t, err)
	assert.Equal(t, 12, point)

	require.NoError(t, repo.SeedDefaults())
	point, err = repo.BasePoint(models.ModeFillBlank)
	require.NoError(t, err)
	assert.Equal(t, 8, point)

	// Overrides persist and clamp to [MinBasePoint, MaxBasePoint].
	require.NoError(t, repo.SetBasePoint(models.ModeMeaning, 20))
	point, err = repo.BasePoint(models.ModeMeaning)
	require.NoError(t, err)
	assert.Equal(t, 20, point)

	require.NoError(t, repo.SetBasePoint(models.ModeMeaning, 1))
	point, err = repo.BasePoint(models.ModeMeaning)
	require.NoError(t, err)
	assert.Equal(t, MinBasePoint, point)

	require.NoError(t, repo.SetBasePoint(models.ModeMeaning, 100))
	point, err = repo.BasePoint(models.ModeMeaning)
	require.NoError(t, err)
	assert.Equal(t, MaxBasePoint, point)
}
