// Package remote содержит клиенты удаленных шлюзов auth, gifts, admin и daily reward.
// Все ответы декодируются в типизированные структуры и проверяются сразу на границе.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	// ErrUnreachable — запрос не удалось выполнить (сеть, таймаут)
	ErrUnreachable = errors.New("gateway unreachable")
	// ErrBadResponse — шлюз ответил, но ответ не соответствует контракту
	ErrBadResponse = errors.New("unexpected gateway response")
)

// Error — бизнес-ошибка, которую вернул шлюз. Message показывается пользователю как есть.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway error (status %d)", e.Status)
	}
	return fmt.Sprintf("gateway error (status %d): %s", e.Status, e.Message)
}

// AsError достает бизнес-ошибку шлюза из цепочки
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

const maxBodySize = 1 << 20

var validate = validator.New()

// errorEnvelope — общее для всех шлюзов поле ошибки
type errorEnvelope struct {
	Error string `json:"error"`
}

type client struct {
	log     *slog.Logger
	http    *http.Client
	baseURL string
}

func newClient(log *slog.Logger, httpClient *http.Client, baseURL string) client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return client{log: log, http: httpClient, baseURL: baseURL}
}

// NewHTTPClient — http клиент с таймаутом для всех шлюзов
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (c client) get(ctx context.Context, query url.Values, out any) (int, error) {
	target := c.baseURL
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c client) post(ctx context.Context, body any, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do выполняет запрос и раскладывает ответ по таксономии ошибок:
// транспорт -> ErrUnreachable, не-2xx или поле error -> *Error,
// неразбираемый 2xx -> ErrBadResponse.
func (c client) do(req *http.Request, out any) (int, error) {
	reqID := middleware.GetReqID(req.Context())
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set("X-Request-Id", reqID)
	req.Header.Set("Accept", "application/json")

	logger := c.log.With(
		slog.String("method", req.Method),
		slog.String("url", req.URL.Redacted()),
		slog.String("request_id", reqID),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("gateway request failed", slog.Any("error", err))
		return 0, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		logger.Error("failed to read gateway response", slog.Any("error", err))
		return resp.StatusCode, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	logger.Debug("gateway responded", slog.Int("status", resp.StatusCode))

	var env errorEnvelope
	envErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ""
		if envErr == nil {
			msg = env.Error
		}
		return resp.StatusCode, &Error{Status: resp.StatusCode, Message: msg}
	}
	if envErr == nil && env.Error != "" {
		return resp.StatusCode, &Error{Status: resp.StatusCode, Message: env.Error}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		logger.Warn("gateway response does not decode", slog.Any("error", err))
		return resp.StatusCode, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return resp.StatusCode, nil
}

// checkPayload проверяет полезную нагрузку успешного ответа по тегам validate
func checkPayload(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

// rejected превращает {"success": false} в бизнес-ошибку
func rejected(status int, message string) error {
	return &Error{Status: status, Message: message}
}

// timestamp принимает как RFC3339, так и формат "2006-01-02 15:04:05.999999"
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", s)
}
