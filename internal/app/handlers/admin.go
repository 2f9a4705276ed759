package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/subculture/internal/service"
)

// createdAtLayout совпадает с текстовым видом timestamp в Postgres
const createdAtLayout = "2006-01-02 15:04:05.999999"

type AdminUserPayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Balance   int    `json:"balance"`
	IsAdmin   bool   `json:"is_admin"`
	IsBanned  bool   `json:"is_banned"`
	CreatedAt string `json:"created_at"`
}

type UsersResponse struct {
	Users []AdminUserPayload `json:"users"`
}

// AdminRequest — команда админки; coins/ban/grant зависят от action
type AdminRequest struct {
	Action         string `json:"action"`
	AdminUsername  string `json:"admin_username"`
	TargetUsername string `json:"target_username"`
	Coins          *int   `json:"coins"`
	Ban            *bool  `json:"ban"`
	Grant          *bool  `json:"grant"`
}

type CommandResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListUsersHandler обрабатывает GET /admin?admin_username=
func ListUsersHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUsersHandler"
		logger := log.With(slog.String("op", op))

		adminUsername := r.URL.Query().Get("admin_username")
		if adminUsername == "" {
			writeError(w, logger, http.StatusBadRequest, "Admin username required")
			return
		}

		users, err := adminService.ListUsers(r.Context(), adminUsername)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		resp := UsersResponse{Users: make([]AdminUserPayload, 0, len(users))}
		for _, u := range users {
			resp.Users = append(resp.Users, AdminUserPayload{
				ID:        u.ID,
				Username:  u.Username,
				Password:  u.PasswordHash,
				Balance:   u.Balance,
				IsAdmin:   u.IsAdmin,
				IsBanned:  u.IsBanned,
				CreatedAt: u.CreatedAt.UTC().Format(createdAtLayout),
			})
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}

// AdminCommandHandler обрабатывает POST /admin
func AdminCommandHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminCommandHandler"
		logger := log.With(slog.String("op", op))

		var req AdminRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.AdminUsername == "" {
			writeError(w, logger, http.StatusBadRequest, "Admin username required")
			return
		}

		var (
			msg string
			err error
		)
		switch req.Action {
		case "add_coins":
			if req.TargetUsername == "" || req.Coins == nil {
				writeError(w, logger, http.StatusBadRequest, "Invalid parameters")
				return
			}
			msg, err = adminService.AddCoins(r.Context(), req.AdminUsername, req.TargetUsername, *req.Coins)
		case "ban_user":
			if req.TargetUsername == "" {
				writeError(w, logger, http.StatusBadRequest, "Target username required")
				return
			}
			msg, err = adminService.SetBanStatus(r.Context(), req.AdminUsername, req.TargetUsername, flagOrTrue(req.Ban))
		case "grant_admin":
			if req.TargetUsername == "" {
				writeError(w, logger, http.StatusBadRequest, "Target username required")
				return
			}
			msg, err = adminService.SetAdminStatus(r.Context(), req.AdminUsername, req.TargetUsername, flagOrTrue(req.Grant))
		default:
			writeError(w, logger, http.StatusBadRequest, "Invalid action")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, CommandResponse{Success: true, Message: msg})
	}
}

// без явного значения флаг считается включенным
func flagOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
