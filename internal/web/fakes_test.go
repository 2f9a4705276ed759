package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linemk/subculture/internal/config"
	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/lib/logger"
	"github.com/linemk/subculture/internal/remote"
	"github.com/linemk/subculture/internal/session"
	"github.com/linemk/subculture/internal/web"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	mu        sync.Mutex
	user      *models.User
	err       error
	calls     []string
	lastLogin string
}

func (f *fakeAuth) Login(_ context.Context, username, _ string) (*models.User, error) {
	return f.call(remote.ActionLogin, username)
}

func (f *fakeAuth) Register(_ context.Context, username, _ string) (*models.User, error) {
	return f.call(remote.ActionRegister, username)
}

func (f *fakeAuth) call(action, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, action)
	f.lastLogin = username
	return f.user, f.err
}

type fakeGifts struct {
	mu            sync.Mutex
	gifts         []models.Gift
	listErr       error
	purchaseCalls int
	lastGiftID    int64
	newBalance    int
	purchaseErr   error
	// started/unblock позволяют задержать покупку в тестах на параллельные запросы
	started chan struct{}
	unblock chan struct{}
	added   []remote.NewGift
	addMsg  string
	addErr  error
}

func (f *fakeGifts) List(_ context.Context, _ int64) ([]models.Gift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gifts, f.listErr
}

func (f *fakeGifts) Purchase(_ context.Context, _ int64, giftID int64) (int, error) {
	f.mu.Lock()
	f.purchaseCalls++
	f.lastGiftID = giftID
	started, unblock := f.started, f.unblock
	f.mu.Unlock()

	if started != nil {
		close(started)
		<-unblock
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.purchaseErr == nil {
		for i := range f.gifts {
			if f.gifts[i].ID == giftID {
				f.gifts[i].Purchased = true
			}
		}
	}
	return f.newBalance, f.purchaseErr
}

func (f *fakeGifts) AddGift(_ context.Context, _ string, gift remote.NewGift) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, gift)
	return f.addMsg, f.addErr
}

func (f *fakeGifts) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purchaseCalls
}

type coinsCall struct {
	admin, target string
	coins         int
}

type flagCall struct {
	admin, target string
	value         bool
}

type fakeAdmin struct {
	mu       sync.Mutex
	users    []models.User
	listErr  error
	listedBy []string
	coins    []coinsCall
	bans     []flagCall
	roles    []flagCall
	message  string
	cmdErr   error
}

func (f *fakeAdmin) ListUsers(_ context.Context, admin string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listedBy = append(f.listedBy, admin)
	return f.users, f.listErr
}

func (f *fakeAdmin) AddCoins(_ context.Context, admin, target string, coins int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coins = append(f.coins, coinsCall{admin: admin, target: target, coins: coins})
	return f.message, f.cmdErr
}

func (f *fakeAdmin) SetBanStatus(_ context.Context, admin, target string, banned bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bans = append(f.bans, flagCall{admin: admin, target: target, value: banned})
	if f.cmdErr == nil {
		for i := range f.users {
			if f.users[i].Username == target {
				f.users[i].IsBanned = banned
			}
		}
	}
	return f.message, f.cmdErr
}

func (f *fakeAdmin) SetAdminStatus(_ context.Context, admin, target string, isAdmin bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles = append(f.roles, flagCall{admin: admin, target: target, value: isAdmin})
	return f.message, f.cmdErr
}

type fakeRewards struct {
	status     *models.RewardStatus
	statusErr  error
	reward     int
	newBalance int
	claimErr   error
	claims     int
}

func (f *fakeRewards) Status(_ context.Context, _ int64) (*models.RewardStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeRewards) Claim(_ context.Context, _ int64) (int, int, error) {
	f.claims++
	return f.reward, f.newBalance, f.claimErr
}

type testEnv struct {
	ctrl    *session.Controller
	auth    *fakeAuth
	gifts   *fakeGifts
	admin   *fakeAdmin
	rewards *fakeRewards
	deps    web.Deps
}

func newTestEnv() *testEnv {
	e := &testEnv{
		ctrl: session.NewController(config.SessionConfig{
			CookieName: "sess",
			TTL:        time.Hour,
			Secret:     "web-test-secret",
		}),
		auth:    &fakeAuth{},
		gifts:   &fakeGifts{},
		admin:   &fakeAdmin{},
		rewards: &fakeRewards{status: &models.RewardStatus{CanClaim: true, RewardAmount: 100}},
	}
	e.deps = web.Deps{
		Log:      logger.NewDiscard(),
		Sessions: e.ctrl,
		Auth:     e.auth,
		Gifts:    e.gifts,
		Admin:    e.admin,
		Rewards:  e.rewards,
	}
	return e
}

func (e *testEnv) views(t *testing.T) *web.Views {
	t.Helper()
	views, err := web.NewViews(e.deps)
	require.NoError(t, err)
	return views
}

// request собирает запрос с формой и, если sess не nil, с cookie сессии
func (e *testEnv) request(t *testing.T, method, target string, form url.Values, sess *models.Session) *http.Request {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	if sess != nil {
		rec := httptest.NewRecorder()
		require.NoError(t, e.ctrl.Set(rec, sess))
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	return req
}

// next переносит cookie ответа в новый GET-запрос, как браузер после редиректа
func next(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(c)
	}
	return req
}

func flashOf(rec *httptest.ResponseRecorder) *session.Notice {
	n, _ := session.PopFlash(httptest.NewRecorder(), next(rec))
	return n
}

func (e *testEnv) sessionOf(rec *httptest.ResponseRecorder) (*models.Session, bool) {
	return e.ctrl.Current(next(rec))
}
