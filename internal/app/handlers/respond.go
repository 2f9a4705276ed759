package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/subculture/internal/service"
	"github.com/linemk/subculture/internal/storage"
)

var validate = validator.New()

// ErrorResponse — тело любого отказа шлюза
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, ErrorResponse{Error: msg})
}

// writeServiceError переводит ошибку сервиса в статус и текст для клиента
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrUserBanned):
		status, msg = http.StatusForbidden, "User is banned"
	case errors.Is(err, service.ErrUsernameTaken):
		status, msg = http.StatusConflict, "Username already exists"
	case errors.Is(err, service.ErrAccessDenied):
		status, msg = http.StatusForbidden, "Access denied"
	case errors.Is(err, service.ErrInsufficientBalance):
		status, msg = http.StatusBadRequest, "Insufficient balance"
	case errors.Is(err, service.ErrAlreadyPurchased):
		status, msg = http.StatusBadRequest, "Gift already purchased"
	case errors.Is(err, service.ErrAlreadyClaimed):
		status, msg = http.StatusBadRequest, "Already claimed today"
	case errors.Is(err, storage.ErrUserNotFound):
		status, msg = http.StatusNotFound, "User not found"
	case errors.Is(err, storage.ErrGiftNotFound):
		status, msg = http.StatusNotFound, "Gift not found"
	}

	if status == http.StatusInternalServerError {
		log.Error("request failed", slog.Any("error", err))
	} else {
		log.Warn("request rejected", slog.Any("error", err))
	}
	writeError(w, log, status, msg)
}

// MethodNotAllowed отвечает JSON вместо текстовой ошибки chi
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Method not allowed"})
}
