package models

// Session — закэшированная на клиенте часть профиля пользователя.
// Баланс в сессии меняется только значением из ответа шлюза.
type Session struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Balance  int    `json:"balance"`
	IsAdmin  bool   `json:"is_admin"`
}

// SessionFromUser собирает сессию из профиля
func SessionFromUser(u *User) *Session {
	return &Session{
		ID:       u.ID,
		Username: u.Username,
		Balance:  u.Balance,
		IsAdmin:  u.IsAdmin,
	}
}
