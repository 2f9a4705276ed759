package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/subculture/internal/domain/models"
)

var ErrGiftNotFound = errors.New("gift not found")

// GiftStorage описывает методы для работы с каталогом подарков.
type GiftStorage interface {
	// ListGifts возвращает каталог; при userID > 0 отмечает купленные этим пользователем.
	ListGifts(ctx context.Context, userID int64) ([]models.Gift, error)
	GetGiftByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Gift, error)
	CreateGift(ctx context.Context, gift *models.Gift) (int64, error)
}

type giftRepository struct {
	db *sql.DB
}

func NewGiftRepository(db *sql.DB) GiftStorage {
	return &giftRepository{db: db}
}

func (r *giftRepository) ListGifts(ctx context.Context, userID int64) ([]models.Gift, error) {
	query := `
		SELECT g.id, g.name, g.description, g.price, g.icon, g.category, ug.id IS NOT NULL
		FROM gifts g
		LEFT JOIN user_gifts ug ON g.id = ug.gift_id AND ug.user_id = $1
		ORDER BY g.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gifts := make([]models.Gift, 0)
	for rows.Next() {
		var g models.Gift
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Price, &g.Icon, &g.Category, &g.Purchased); err != nil {
			return nil, err
		}
		gifts = append(gifts, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return gifts, nil
}

func (r *giftRepository) GetGiftByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Gift, error) {
	g := &models.Gift{}
	row := tx.QueryRowContext(ctx, "SELECT id, name, description, price, icon, category FROM gifts WHERE id = $1", id)
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Price, &g.Icon, &g.Category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGiftNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *giftRepository) CreateGift(ctx context.Context, gift *models.Gift) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO gifts (name, description, price, icon, category) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		gift.Name, gift.Description, gift.Price, gift.Icon, gift.Category,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
