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

type rewardStatusResponse struct {
	CanClaim     bool `json:"can_claim"`
	RewardAmount int  `json:"reward_amount" validate:"gte=0"`
}

type claimRequest struct {
	UserID int64 `json:"user_id"`
}

type claimResponse struct {
	Success      bool   `json:"success"`
	RewardAmount int    `json:"reward_amount"`
	NewBalance   *int   `json:"new_balance"`
	Error        string `json:"error"`
}

// RewardClient — клиент шлюза ежедневной награды
type RewardClient struct {
	client
}

func NewRewardClient(log *slog.Logger, httpClient *http.Client, url string) *RewardClient {
	return &RewardClient{client: newClient(log, httpClient, url)}
}

// Status сообщает, можно ли сегодня забрать награду
func (c *RewardClient) Status(ctx context.Context, userID int64) (*models.RewardStatus, error) {
	const op = "remote.RewardClient.Status"

	var resp rewardStatusResponse
	if _, err := c.get(ctx, url.Values{"user_id": {strconv.FormatInt(userID, 10)}}, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkPayload(&resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.RewardStatus{CanClaim: resp.CanClaim, RewardAmount: resp.RewardAmount}, nil
}

// Claim забирает награду; возвращает размер награды и новый баланс от шлюза
func (c *RewardClient) Claim(ctx context.Context, userID int64) (int, int, error) {
	const op = "remote.RewardClient.Claim"

	var resp claimResponse
	status, err := c.post(ctx, claimRequest{UserID: userID}, &resp)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	if !resp.Success {
		return 0, 0, fmt.Errorf("%s: %w", op, rejected(status, resp.Error))
	}
	if resp.NewBalance == nil || *resp.NewBalance < 0 {
		return 0, 0, fmt.Errorf("%s: %w: new_balance is missing or negative", op, ErrBadResponse)
	}
	return resp.RewardAmount, *resp.NewBalance, nil
}
