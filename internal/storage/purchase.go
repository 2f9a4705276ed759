package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// PurchaseStorage описывает купленные пользователями подарки.
type PurchaseStorage interface {
	HasPurchaseTx(ctx context.Context, tx *sql.Tx, userID, giftID int64) (bool, error)
	CreatePurchaseTx(ctx context.Context, tx *sql.Tx, userID, giftID int64) error
}

type purchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) PurchaseStorage {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) HasPurchaseTx(ctx context.Context, tx *sql.Tx, userID, giftID int64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM user_gifts WHERE user_id = $1 AND gift_id = $2)",
		userID, giftID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *purchaseRepository) CreatePurchaseTx(ctx context.Context, tx *sql.Tx, userID, giftID int64) error {
	query := `INSERT INTO user_gifts (user_id, gift_id, purchased_at) VALUES ($1, $2, NOW())`
	if _, err := tx.ExecContext(ctx, query, userID, giftID); err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}
