package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/linemk/subculture/internal/domain/models"
)

type wireGift struct {
	ID          int64  `json:"id" validate:"gt=0"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       int    `json:"price" validate:"gte=0"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Purchased   bool   `json:"purchased"`
}

type catalogResponse struct {
	Gifts []wireGift `json:"gifts" validate:"dive"`
}

type purchaseRequest struct {
	UserID int64 `json:"user_id"`
	GiftID int64 `json:"gift_id"`
}

type purchaseResponse struct {
	Success    bool   `json:"success"`
	NewBalance *int   `json:"new_balance"`
	Error      string `json:"error"`
}

// NewGift — данные для добавления подарка в каталог
type NewGift struct {
	Name        string
	Description string
	Price       int
	Icon        string
	Category    string
}

type addGiftRequest struct {
	Action        string `json:"action"`
	AdminUsername string `json:"admin_username"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int    `json:"price"`
	Icon          string `json:"icon"`
	Category      string `json:"category"`
}

type addGiftResponse struct {
	Success bool   `json:"success"`
	GiftID  int64  `json:"gift_id"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// GiftClient — клиент шлюза магазина подарков
type GiftClient struct {
	client
}

func NewGiftClient(log *slog.Logger, httpClient *http.Client, url string) *GiftClient {
	return &GiftClient{client: newClient(log, httpClient, url)}
}

// List возвращает каталог с отметками о покупках пользователя
func (g *GiftClient) List(ctx context.Context, userID int64) ([]models.Gift, error) {
	const op = "remote.GiftClient.List"

	var resp catalogResponse
	query := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	if _, err := g.get(ctx, query, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkPayload(&resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	gifts := make([]models.Gift, 0, len(resp.Gifts))
	for _, wg := range resp.Gifts {
		gifts = append(gifts, models.Gift(wg))
	}
	return gifts, nil
}

// Purchase покупает подарок и возвращает новый баланс, посчитанный шлюзом
func (g *GiftClient) Purchase(ctx context.Context, userID, giftID int64) (int, error) {
	const op = "remote.GiftClient.Purchase"

	var resp purchaseResponse
	status, err := g.post(ctx, purchaseRequest{UserID: userID, GiftID: giftID}, &resp)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !resp.Success {
		return 0, fmt.Errorf("%s: %w", op, rejected(status, resp.Error))
	}
	if resp.NewBalance == nil || *resp.NewBalance < 0 {
		return 0, fmt.Errorf("%s: %w: new_balance is missing or negative", op, ErrBadResponse)
	}
	return *resp.NewBalance, nil
}

// AddGift добавляет подарок в каталог от имени администратора
func (g *GiftClient) AddGift(ctx context.Context, adminUsername string, gift NewGift) (string, error) {
	const op = "remote.GiftClient.AddGift"

	req := addGiftRequest{
		Action:        "add_gift",
		AdminUsername: adminUsername,
		Name:          gift.Name,
		Description:   gift.Description,
		Price:         gift.Price,
		Icon:          gift.Icon,
		Category:      gift.Category,
	}
	var resp addGiftResponse
	status, err := g.post(ctx, req, &resp)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !resp.Success {
		return "", fmt.Errorf("%s: %w", op, rejected(status, resp.Error))
	}
	return resp.Message, nil
}
