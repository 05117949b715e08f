package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/studylock/internal/database"
	"github.com/example/studylock/internal/scheduling"
	"github.com/example/studylock/pkg/models"
)

// History tags for point movements that don't come from answering.
const (
	TagUnlock = "unlock"
	TagRefund = "refund"
)

var (
	// ErrInsufficientBalance is returned by Spend when the balance cannot
	// cover the cost. Nothing is mutated.
	ErrInsufficientBalance = errors.New("insufficient point balance")

	// ErrNotFound is returned by CancelAndRefund for an unknown or
	// already-cancelled unlock record. Nothing is mutated.
	ErrNotFound = errors.New("unlock record not found")
)

// Ledger tracks the single running point balance and its day-bucketed
// history. The balance is the authoritative value for spend checks; history
// exists for reporting. Both always move inside one transaction, and the
// debit is guarded in SQL so two concurrent spends cannot overdraw.
type Ledger struct {
	store *database.Store
}

// New creates a ledger on the given store.
func New(store *database.Store) *Ledger {
	return &Ledger{store: store}
}

// Balance returns the current point total.
func (l *Ledger) Balance() (int, error) {
	var balance int
	err := l.store.DB.Get(&balance, "SELECT balance FROM point_balance WHERE id = 1")
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %v", err)
	}
	return balance, nil
}

// Add moves the balance by delta and appends a history entry tagged with
// tag under today's bucket. A zero delta is a no-op.
func (l *Ledger) Add(tag string, delta int, now time.Time) error {
	if delta == 0 {
		return nil
	}
	tx, err := l.store.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin ledger tx: %v", err)
	}
	defer tx.Rollback()

	if err := l.move(tx, tag, delta, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger tx: %v", err)
	}
	return nil
}

// move updates balance and history together inside tx.
func (l *Ledger) move(tx *sqlx.Tx, tag string, delta int, now time.Time) error {
	_, err := tx.Exec(l.store.Rebind(
		"UPDATE point_balance SET balance = balance + ? WHERE id = 1"), delta)
	if err != nil {
		return fmt.Errorf("failed to update balance: %v", err)
	}
	_, err = tx.Exec(l.store.Rebind(
		"INSERT INTO point_history (mode, epoch_day, delta) VALUES (?, ?, ?)"),
		tag, scheduling.EpochDay(now), delta)
	if err != nil {
		return fmt.Errorf("failed to append history: %v", err)
	}
	return nil
}

// Spend buys temporary access to a package: debits cost, writes the unlock
// grant and appends the unlock history row, all in one transaction. A
// reader never observes the debit without the grant or the grant without
// the debit.
func (l *Ledger) Spend(cost int, duration time.Duration, packageID string, now time.Time) (*models.UnlockHistory, error) {
	if cost <= 0 {
		return nil, fmt.Errorf("spend cost must be positive, got %d", cost)
	}

	tx, err := l.store.DB.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin spend tx: %v", err)
	}
	defer tx.Rollback()

	// Guarded debit: the WHERE clause rejects overdraw atomically.
	res, err := tx.Exec(l.store.Rebind(
		"UPDATE point_balance SET balance = balance - ? WHERE id = 1 AND balance >= ?"),
		cost, cost)
	if err != nil {
		return nil, fmt.Errorf("failed to debit balance: %v", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check debit: %v", err)
	}
	if affected == 0 {
		return nil, ErrInsufficientBalance
	}

	_, err = tx.Exec(l.store.Rebind(
		"INSERT INTO point_history (mode, epoch_day, delta) VALUES (?, ?, ?)"),
		TagUnlock, scheduling.EpochDay(now), -cost)
	if err != nil {
		return nil, fmt.Errorf("failed to append history: %v", err)
	}

	record := &models.UnlockHistory{
		PackageID:         packageID,
		PointsSpent:       cost,
		UnlockDurationSec: int64(duration / time.Second),
		UnlockedAtSec:     now.Unix(),
	}

	_, err = tx.Exec(l.store.Rebind(`
		INSERT INTO unlock_grants (package_id, unlocked_until_sec) VALUES (?, ?)
		ON CONFLICT (package_id) DO UPDATE SET unlocked_until_sec = excluded.unlocked_until_sec`),
		packageID, record.UnlockedAtSec+record.UnlockDurationSec)
	if err != nil {
		return nil, fmt.Errorf("failed to write unlock grant: %v", err)
	}

	if l.store.Postgres() {
		err = tx.QueryRow(l.store.Rebind(`
			INSERT INTO unlock_history (package_id, points_spent, unlock_duration_sec, unlocked_at_sec)
			VALUES (?, ?, ?, ?) RETURNING id`),
			record.PackageID, record.PointsSpent, record.UnlockDurationSec, record.UnlockedAtSec,
		).Scan(&record.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to append unlock history: %v", err)
		}
	} else {
		res, err = tx.Exec(l.store.Rebind(`
			INSERT INTO unlock_history (package_id, points_spent, unlock_duration_sec, unlocked_at_sec)
			VALUES (?, ?, ?, ?)`),
			record.PackageID, record.PointsSpent, record.UnlockDurationSec, record.UnlockedAtSec)
		if err != nil {
			return nil, fmt.Errorf("failed to append unlock history: %v", err)
		}
		record.ID, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read unlock history id: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit spend tx: %v", err)
	}
	return record, nil
}

// CancelAndRefund ends an unlock early: the grant is cleared (re-imposing
// the lock) and the unspent share of the cost comes back, pro-rated by the
// remaining time and rounded down. A record whose window already expired
// refunds zero but is still marked cancelled.
func (l *Ledger) CancelAndRefund(historyID int64, now time.Time) (int, error) {
	tx, err := l.store.DB.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin refund tx: %v", err)
	}
	defer tx.Rollback()

	var record models.UnlockHistory
	err = tx.Get(&record, l.store.Rebind(
		"SELECT * FROM unlock_history WHERE id = ? AND cancelled = FALSE"), historyID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load unlock record: %v", err)
	}

	refund := 0
	if remaining := record.ExpiresAtSec() - now.Unix(); remaining > 0 && record.UnlockDurationSec > 0 {
		refund = int(int64(record.PointsSpent) * remaining / record.UnlockDurationSec)
	}

	_, err = tx.Exec(l.store.Rebind(
		"UPDATE unlock_history SET cancelled = TRUE WHERE id = ?"), historyID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel unlock record: %v", err)
	}
	_, err = tx.Exec(l.store.Rebind(
		"DELETE FROM unlock_grants WHERE package_id = ?"), record.PackageID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear unlock grant: %v", err)
	}

	if refund > 0 {
		if err := l.move(tx, TagRefund, refund, now); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit refund tx: %v", err)
	}
	return refund, nil
}

// DailyTotals sums point movements per (day, mode) from sinceDay onward,
// for charts and the daily report.
func (l *Ledger) DailyTotals(sinceDay int64) ([]models.DayTotal, error) {
	var totals []models.DayTotal
	err := l.store.DB.Select(&totals, l.store.Rebind(`
		SELECT epoch_day, mode, SUM(delta) AS total
		FROM point_history
		WHERE epoch_day >= ?
		GROUP BY epoch_day, mode
		ORDER BY epoch_day, mode`), sinceDay)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate point history: %v", err)
	}
	return totals, nil
}
