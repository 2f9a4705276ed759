package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/service"
)

// AuthRequest — вход или регистрация
type AuthRequest struct {
	Action   string `json:"action"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserPayload — публичная часть профиля без хэша пароля
type UserPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Balance  int    `json:"balance"`
	IsAdmin  bool   `json:"is_admin"`
}

type AuthResponse struct {
	Success bool        `json:"success"`
	User    UserPayload `json:"user"`
}

// AuthHandler обрабатывает POST /auth
func AuthHandler(log *slog.Logger, authService service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AuthHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Username = strings.TrimSpace(req.Username)

		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "Username and password required")
			return
		}

		var (
			user *models.User
			err  error
		)
		switch req.Action {
		case "register":
			user, err = authService.Register(r.Context(), req.Username, req.Password)
		case "login":
			user, err = authService.Login(r.Context(), req.Username, req.Password)
		default:
			writeError(w, logger, http.StatusBadRequest, "Invalid action")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, AuthResponse{
			Success: true,
			User: UserPayload{
				ID:       user.ID,
				Username: user.Username,
				Balance:  user.Balance,
				IsAdmin:  user.IsAdmin,
			},
		})
	}
}
