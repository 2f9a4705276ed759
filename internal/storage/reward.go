package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// RewardStorage хранит дату последней ежедневной награды.
type RewardStorage interface {
	// LastClaimDate возвращает false, если пользователь ни разу не получал награду.
	LastClaimDate(ctx context.Context, userID int64) (time.Time, bool, error)
	LockLastClaimDateTx(ctx context.Context, tx *sql.Tx, userID int64) (time.Time, bool, error)
	SaveClaimTx(ctx context.Context, tx *sql.Tx, userID int64, day time.Time) error
	AddBalanceTx(ctx context.Context, tx *sql.Tx, userID int64, amount int) (int, error)
}

type rewardRepository struct {
	db *sql.DB
}

func NewRewardRepository(db *sql.DB) RewardStorage {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) LastClaimDate(ctx context.Context, userID int64) (time.Time, bool, error) {
	row := r.db.QueryRowContext(ctx, "SELECT last_claim_date FROM daily_rewards WHERE user_id = $1", userID)
	return scanClaimDate(row)
}

func (r *rewardRepository) LockLastClaimDateTx(ctx context.Context, tx *sql.Tx, userID int64) (time.Time, bool, error) {
	row := tx.QueryRowContext(ctx, "SELECT last_claim_date FROM daily_rewards WHERE user_id = $1 FOR UPDATE", userID)
	return scanClaimDate(row)
}

func scanClaimDate(row *sql.Row) (time.Time, bool, error) {
	var day time.Time
	if err := row.Scan(&day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return day, true, nil
}

func (r *rewardRepository) SaveClaimTx(ctx context.Context, tx *sql.Tx, userID int64, day time.Time) error {
	query := `
		INSERT INTO daily_rewards (user_id, last_claim_date) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_claim_date = EXCLUDED.last_claim_date`
	_, err := tx.ExecContext(ctx, query, userID, day)
	return err
}

// AddBalanceTx начисляет награду и возвращает новый баланс
func (r *rewardRepository) AddBalanceTx(ctx context.Context, tx *sql.Tx, userID int64, amount int) (int, error) {
	var balance int
	err := tx.QueryRowContext(ctx,
		"UPDATE users SET balance = balance + $1 WHERE id = $2 RETURNING balance",
		amount, userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}
