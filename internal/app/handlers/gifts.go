package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/service"
)

// GiftPayload — подарок в каталоге; purchased есть только при запросе с user_id
type GiftPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Purchased   *bool  `json:"purchased,omitempty"`
}

type GiftsResponse struct {
	Gifts []GiftPayload `json:"gifts"`
}

// GiftsRequest объединяет покупку и добавление подарка, различаются по action
type GiftsRequest struct {
	Action        string `json:"action"`
	UserID        int64  `json:"user_id"`
	GiftID        int64  `json:"gift_id"`
	AdminUsername string `json:"admin_username"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int    `json:"price"`
	Icon          string `json:"icon"`
	Category      string `json:"category"`
}

type purchaseParams struct {
	UserID int64 `validate:"gt=0"`
	GiftID int64 `validate:"gt=0"`
}

type newGiftParams struct {
	Name  string `validate:"required"`
	Price int    `validate:"gt=0"`
}

type PurchaseResponse struct {
	Success    bool `json:"success"`
	NewBalance int  `json:"new_balance"`
}

type AddGiftResponse struct {
	Success bool   `json:"success"`
	GiftID  int64  `json:"gift_id"`
	Message string `json:"message"`
}

// ListGiftsHandler обрабатывает GET /gifts?user_id=
func ListGiftsHandler(log *slog.Logger, giftService service.GiftService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListGiftsHandler"
		logger := log.With(slog.String("op", op))

		var userID int64
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				logger.Warn("invalid user_id", slog.String("user_id", raw))
				writeError(w, logger, http.StatusBadRequest, "Invalid user_id")
				return
			}
			userID = id
		}

		gifts, err := giftService.List(r.Context(), userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		resp := GiftsResponse{Gifts: make([]GiftPayload, 0, len(gifts))}
		for _, g := range gifts {
			p := GiftPayload{
				ID:          g.ID,
				Name:        g.Name,
				Description: g.Description,
				Price:       g.Price,
				Icon:        g.Icon,
				Category:    g.Category,
			}
			if userID > 0 {
				purchased := g.Purchased
				p.Purchased = &purchased
			}
			resp.Gifts = append(resp.Gifts, p)
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}

// GiftsCommandHandler обрабатывает POST /gifts: покупку и add_gift
func GiftsCommandHandler(log *slog.Logger, giftService service.GiftService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GiftsCommandHandler"
		logger := log.With(slog.String("op", op))

		var req GiftsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "Invalid request body")
			return
		}

		switch req.Action {
		case "", "purchase":
			purchase(w, r, logger, giftService, req)
		case "add_gift":
			addGift(w, r, logger, giftService, req)
		default:
			writeError(w, logger, http.StatusBadRequest, "Invalid action")
		}
	}
}

func purchase(w http.ResponseWriter, r *http.Request, logger *slog.Logger, giftService service.GiftService, req GiftsRequest) {
	if err := validate.Struct(purchaseParams{UserID: req.UserID, GiftID: req.GiftID}); err != nil {
		logger.Warn("invalid purchase request", slog.Any("error", err))
		writeError(w, logger, http.StatusBadRequest, "user_id and gift_id required")
		return
	}

	newBalance, err := giftService.Purchase(r.Context(), req.UserID, req.GiftID)
	if err != nil {
		writeServiceError(w, logger, err)
		return
	}
	writeJSON(w, logger, http.StatusOK, PurchaseResponse{Success: true, NewBalance: newBalance})
}

func addGift(w http.ResponseWriter, r *http.Request, logger *slog.Logger, giftService service.GiftService, req GiftsRequest) {
	if req.AdminUsername == "" {
		writeError(w, logger, http.StatusForbidden, "Admin access required")
		return
	}
	if err := validate.Struct(newGiftParams{Name: req.Name, Price: req.Price}); err != nil {
		logger.Warn("invalid gift", slog.Any("error", err))
		writeError(w, logger, http.StatusBadRequest, "Invalid parameters")
		return
	}

	gift := models.Gift{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Icon:        req.Icon,
		Category:    req.Category,
	}
	if gift.Icon == "" {
		gift.Icon = "Gift"
	}
	if gift.Category == "" {
		gift.Category = "general"
	}

	id, err := giftService.AddGift(r.Context(), req.AdminUsername, gift)
	if err != nil {
		writeServiceError(w, logger, err)
		return
	}
	writeJSON(w, logger, http.StatusOK, AddGiftResponse{Success: true, GiftID: id, Message: "Gift added successfully"})
}
