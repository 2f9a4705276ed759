package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linemk/subculture/internal/app/handlers"
	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/lib/logger"
	"github.com/linemk/subculture/internal/service"
	"github.com/linemk/subculture/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthService — фиктивная реализация для тестирования.
type fakeAuthService struct {
	user   *models.User
	err    error
	action string
}

func (f *fakeAuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	f.action = "register"
	return f.user, f.err
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	f.action = "login"
	return f.user, f.err
}

type fakeGiftService struct {
	gifts      []models.Gift
	listUserID int64
	newBalance int
	err        error
	added      *models.Gift
}

func (f *fakeGiftService) List(ctx context.Context, userID int64) ([]models.Gift, error) {
	f.listUserID = userID
	return f.gifts, f.err
}

func (f *fakeGiftService) Purchase(ctx context.Context, userID, giftID int64) (int, error) {
	return f.newBalance, f.err
}

func (f *fakeGiftService) AddGift(ctx context.Context, adminUsername string, gift models.Gift) (int64, error) {
	f.added = &gift
	return 12, f.err
}

type fakeAdminService struct {
	users []models.User
	err   error
	flag  *bool
	coins int
}

func (f *fakeAdminService) ListUsers(ctx context.Context, adminUsername string) ([]models.User, error) {
	return f.users, f.err
}

func (f *fakeAdminService) AddCoins(ctx context.Context, adminUsername, target string, coins int) (string, error) {
	f.coins = coins
	return fmt.Sprintf("Added %d coins to %s", coins, target), f.err
}

func (f *fakeAdminService) SetBanStatus(ctx context.Context, adminUsername, target string, banned bool) (string, error) {
	f.flag = &banned
	return "ok", f.err
}

func (f *fakeAdminService) SetAdminStatus(ctx context.Context, adminUsername, target string, isAdmin bool) (string, error) {
	f.flag = &isAdmin
	return "ok", f.err
}

type fakeRewardService struct {
	status     *models.RewardStatus
	newBalance int
	err        error
}

func (f *fakeRewardService) Status(ctx context.Context, userID int64) (*models.RewardStatus, error) {
	return f.status, f.err
}

func (f *fakeRewardService) Claim(ctx context.Context, userID int64) (int, int, error) {
	return 100, f.newBalance, f.err
}

type fixture struct {
	auth    *fakeAuthService
	gifts   *fakeGiftService
	admin   *fakeAdminService
	rewards *fakeRewardService
	router  http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		auth:    &fakeAuthService{},
		gifts:   &fakeGiftService{},
		admin:   &fakeAdminService{},
		rewards: &fakeRewardService{status: &models.RewardStatus{CanClaim: true, RewardAmount: 100}},
	}
	f.router = handlers.NewRouter(logger.NewDiscard(), handlers.Services{
		Auth:    f.auth,
		Gifts:   f.gifts,
		Admin:   f.admin,
		Rewards: f.rewards,
	})
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Error
}

func TestAuthHandler_Success(t *testing.T) {
	f := newFixture()
	f.auth.user = &models.User{ID: 4, Username: "raven", Balance: 1000, PasswordHash: "secret-hash"}

	rr := f.do(http.MethodPost, "/auth", `{"action":"register","username":" raven ","password":"pw"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "register", f.auth.action)
	assert.NotContains(t, rr.Body.String(), "secret-hash")

	var resp handlers.AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, handlers.UserPayload{ID: 4, Username: "raven", Balance: 1000}, resp.User)
}

func TestAuthHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		svcErr  error
		status  int
		message string
	}{
		{name: "invalid json", body: `{"action":`, status: http.StatusBadRequest, message: "Invalid request body"},
		{name: "missing password", body: `{"action":"login","username":"raven"}`, status: http.StatusBadRequest, message: "Username and password required"},
		{name: "unknown action", body: `{"action":"reset","username":"raven","password":"pw"}`, status: http.StatusBadRequest, message: "Invalid action"},
		{name: "bad credentials", body: `{"action":"login","username":"raven","password":"pw"}`, svcErr: service.ErrInvalidCredentials, status: http.StatusUnauthorized, message: "Invalid credentials"},
		{name: "banned", body: `{"action":"login","username":"raven","password":"pw"}`, svcErr: service.ErrUserBanned, status: http.StatusForbidden, message: "User is banned"},
		{name: "duplicate", body: `{"action":"register","username":"raven","password":"pw"}`, svcErr: service.ErrUsernameTaken, status: http.StatusConflict, message: "Username already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.auth.err = tt.svcErr

			rr := f.do(http.MethodPost, "/auth", tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, errorOf(t, rr))
		})
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodGet, "/auth", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "Method not allowed", errorOf(t, rr))
}

func TestListGiftsHandler_PurchasedOnlyWithUser(t *testing.T) {
	f := newFixture()
	f.gifts.gifts = []models.Gift{{ID: 1, Name: "Роза", Price: 200, Purchased: true}}

	rr := f.do(http.MethodGet, "/gifts?user_id=3", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(3), f.gifts.listUserID)
	assert.Contains(t, rr.Body.String(), `"purchased":true`)

	rr = f.do(http.MethodGet, "/gifts", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "purchased")

	rr = f.do(http.MethodGet, "/gifts?user_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGiftsCommandHandler_Purchase(t *testing.T) {
	f := newFixture()
	f.gifts.newBalance = 100

	rr := f.do(http.MethodPost, "/gifts", `{"user_id":3,"gift_id":5}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"new_balance":100}`, rr.Body.String())

	rr = f.do(http.MethodPost, "/gifts", `{"user_id":3}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "user_id and gift_id required", errorOf(t, rr))
}

func TestGiftsCommandHandler_PurchaseErrors(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{err: service.ErrInsufficientBalance, status: http.StatusBadRequest, message: "Insufficient balance"},
		{err: service.ErrAlreadyPurchased, status: http.StatusBadRequest, message: "Gift already purchased"},
		{err: storage.ErrUserNotFound, status: http.StatusNotFound, message: "User not found"},
		{err: storage.ErrGiftNotFound, status: http.StatusNotFound, message: "Gift not found"},
		{err: assert.AnError, status: http.StatusInternalServerError, message: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			f := newFixture()
			f.gifts.err = fmt.Errorf("service.GiftService.Purchase: %w", tt.err)

			rr := f.do(http.MethodPost, "/gifts", `{"user_id":3,"gift_id":5}`)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, errorOf(t, rr))
		})
	}
}

func TestGiftsCommandHandler_AddGift(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodPost, "/gifts", `{"action":"add_gift","name":"Роза","price":10}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Admin access required", errorOf(t, rr))

	rr = f.do(http.MethodPost, "/gifts", `{"action":"add_gift","admin_username":"admin","name":"Роза","price":10}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"gift_id":12,"message":"Gift added successfully"}`, rr.Body.String())
	require.NotNil(t, f.gifts.added)
	assert.Equal(t, "Gift", f.gifts.added.Icon)
	assert.Equal(t, "general", f.gifts.added.Category)

	rr = f.do(http.MethodPost, "/gifts", `{"action":"add_gift","admin_username":"admin","price":10}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListUsersHandler(t *testing.T) {
	f := newFixture()
	f.admin.users = []models.User{{
		ID: 1, Username: "admin", PasswordHash: "h", Balance: 5000, IsAdmin: true,
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 500000000, time.UTC),
	}}

	rr := f.do(http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Admin username required", errorOf(t, rr))

	rr = f.do(http.MethodGet, "/admin?admin_username=admin", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"created_at":"2024-03-01 10:00:00.5"`)
	assert.Contains(t, rr.Body.String(), `"password":"h"`)

	f.admin.err = service.ErrAccessDenied
	rr = f.do(http.MethodGet, "/admin?admin_username=raven", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Access denied", errorOf(t, rr))
}

func TestAdminCommandHandler(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodPost, "/admin", `{"action":"add_coins","admin_username":"admin","target_username":"raven","coins":50}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Added 50 coins to raven"}`, rr.Body.String())

	rr = f.do(http.MethodPost, "/admin", `{"action":"add_coins","admin_username":"admin","target_username":"raven","coins":1.5}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/admin", `{"action":"ban_user","admin_username":"admin","target_username":"raven","ban":false}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, f.admin.flag)
	assert.False(t, *f.admin.flag)

	rr = f.do(http.MethodPost, "/admin", `{"action":"grant_admin","admin_username":"admin","target_username":"raven"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, *f.admin.flag, "grant defaults to true")

	rr = f.do(http.MethodPost, "/admin", `{"action":"ban_user","admin_username":"admin"}`)
	assert.Equal(t, "Target username required", errorOf(t, rr))

	rr = f.do(http.MethodPost, "/admin", `{"action":"ban_user","target_username":"raven"}`)
	assert.Equal(t, "Admin username required", errorOf(t, rr))

	rr = f.do(http.MethodPost, "/admin", `{"action":"nuke","admin_username":"admin"}`)
	assert.Equal(t, "Invalid action", errorOf(t, rr))
}

func TestRewardHandlers(t *testing.T) {
	f := newFixture()
	f.rewards.newBalance = 400

	rr := f.do(http.MethodGet, "/daily-reward?user_id=3", "")
	assert.JSONEq(t, `{"can_claim":true,"reward_amount":100}`, rr.Body.String())

	rr = f.do(http.MethodGet, "/daily-reward", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/daily-reward", `{"user_id":3}`)
	assert.JSONEq(t, `{"success":true,"reward_amount":100,"new_balance":400}`, rr.Body.String())

	f.rewards.err = service.ErrAlreadyClaimed
	rr = f.do(http.MethodPost, "/daily-reward", `{"user_id":3}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Already claimed today", errorOf(t, rr))
}
