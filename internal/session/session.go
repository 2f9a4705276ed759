package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/subculture/internal/config"
	"github.com/linemk/subculture/internal/domain/models"
)

type contextKey string

const sessionKey contextKey = "session"

// claims — содержимое cookie с сессией
type claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Balance  int    `json:"balance"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Controller — единственный владелец сессии клиента.
// Сессия хранится в cookie в виде подписанного JWT.
type Controller struct {
	cookieName string
	secret     []byte
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewController(cfg config.SessionConfig) *Controller {
	return &Controller{
		cookieName: cfg.CookieName,
		secret:     []byte(cfg.Secret),
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// Current читает сессию из запроса. Отсутствующая, просроченная или
// испорченная cookie считается отсутствием сессии.
func (c *Controller) Current(r *http.Request) (*models.Session, bool) {
	// Middleware уже разобрал cookie
	if sess, ok := FromContext(r.Context()); ok {
		return sess, true
	}
	cookie, err := r.Cookie(c.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	sess, err := c.decode(cookie.Value)
	if err != nil {
		return nil, false
	}
	return sess, true
}

// Set перезаписывает сессию целиком
func (c *Controller) Set(w http.ResponseWriter, sess *models.Session) error {
	const op = "session.Set"

	if sess == nil {
		return fmt.Errorf("%s: nil session", op)
	}
	token, err := c.encode(sess)
	if err != nil {
		return fmt.Errorf("%s: failed to sign session: %w", op, err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  c.now().Add(c.ttl),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear удаляет сессию
func (c *Controller) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware кладет сессию (если она есть) в контекст запроса
func (c *Controller) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := c.Current(r); ok {
			r = r.WithContext(WithSession(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext извлекает сессию из контекста.
func FromContext(ctx context.Context) (*models.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*models.Session)
	return sess, ok && sess != nil
}

func WithSession(ctx context.Context, sess *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func (c *Controller) encode(sess *models.Session) (string, error) {
	now := c.now()
	cl := claims{
		UserID:   sess.ID,
		Username: sess.Username,
		Balance:  sess.Balance,
		IsAdmin:  sess.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", sess.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	return token.SignedString(c.secret)
}

func (c *Controller) decode(value string) (*models.Session, error) {
	var cl claims
	token, err := jwt.ParseWithClaims(value, &cl, func(t *jwt.Token) (interface{}, error) {
		// Проверка алгоритма
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}

	return &models.Session{
		ID:       cl.UserID,
		Username: cl.Username,
		Balance:  cl.Balance,
		IsAdmin:  cl.IsAdmin,
	}, nil
}
