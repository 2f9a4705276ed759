package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/linemk/subculture/internal/service"
)

type RewardStatusResponse struct {
	CanClaim     bool `json:"can_claim"`
	RewardAmount int  `json:"reward_amount"`
}

type ClaimRequest struct {
	UserID int64 `json:"user_id" validate:"gt=0"`
}

type ClaimResponse struct {
	Success      bool `json:"success"`
	RewardAmount int  `json:"reward_amount"`
	NewBalance   int  `json:"new_balance"`
}

// RewardStatusHandler обрабатывает GET /daily-reward?user_id=
func RewardStatusHandler(log *slog.Logger, rewardService service.RewardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RewardStatusHandler"
		logger := log.With(slog.String("op", op))

		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil || userID <= 0 {
			writeError(w, logger, http.StatusBadRequest, "user_id required")
			return
		}

		status, err := rewardService.Status(r.Context(), userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, RewardStatusResponse{
			CanClaim:     status.CanClaim,
			RewardAmount: status.RewardAmount,
		})
	}
}

// ClaimRewardHandler обрабатывает POST /daily-reward
func ClaimRewardHandler(log *slog.Logger, rewardService service.RewardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ClaimRewardHandler"
		logger := log.With(slog.String("op", op))

		var req ClaimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, logger, http.StatusBadRequest, "user_id required")
			return
		}

		reward, newBalance, err := rewardService.Claim(r.Context(), req.UserID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, ClaimResponse{
			Success:      true,
			RewardAmount: reward,
			NewBalance:   newBalance,
		})
	}
}
