package models

import "time"

// User представляет профиль пользователя так, как его отдают шлюзы
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password,omitempty"` // хэш пароля, приходит только из админского шлюза
	Balance      int       `json:"balance"`
	IsAdmin      bool      `json:"is_admin"`
	IsBanned     bool      `json:"is_banned"`
	CreatedAt    time.Time `json:"created_at"`
}
