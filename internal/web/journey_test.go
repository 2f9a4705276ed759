package web_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchaseForm(giftID, price string) url.Values {
	return url.Values{"gift_id": {giftID}, "price": {price}}
}

func TestJourneyView_ShowWithoutSessionRedirects(t *testing.T) {
	e := newTestEnv()
	views := e.views(t)

	rec := httptest.NewRecorder()
	views.Journey.Show(rec, e.request(t, http.MethodGet, "/journey", nil, nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
}

func TestJourneyView_ShowRendersCatalog(t *testing.T) {
	e := newTestEnv()
	e.gifts.gifts = []models.Gift{
		{ID: 1, Name: "Черная роза", Price: 200, Category: "gotovs"},
		{ID: 2, Name: "Значок", Price: 50, Category: "emovsk", Purchased: true},
	}
	views := e.views(t)
	sess := &models.Session{ID: 3, Username: "raven", Balance: 300}

	rec := httptest.NewRecorder()
	views.Journey.Show(rec, e.request(t, http.MethodGet, "/journey", nil, sess))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "Черная роза")
	assert.Contains(t, body, "Куплено")
	assert.Contains(t, body, "300 ₡")
	assert.Contains(t, body, "Забрать 100 ₡")
}

func TestJourneyView_CatalogFailureRendersEmpty(t *testing.T) {
	e := newTestEnv()
	e.gifts.listErr = remote.ErrUnreachable
	e.deps.Rewards = nil
	views := e.views(t)

	rec := httptest.NewRecorder()
	views.Journey.Show(rec, e.request(t, http.MethodGet, "/journey", nil, &models.Session{ID: 3, Username: "raven"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Подарков пока нет.")
	assert.NotContains(t, rec.Body.String(), "Ежедневная награда")
}

func TestJourneyView_PurchaseInsufficientBalance(t *testing.T) {
	e := newTestEnv()
	views := e.views(t)
	sess := &models.Session{ID: 3, Username: "raven", Balance: 300}

	rec := httptest.NewRecorder()
	views.Journey.Purchase(rec, e.request(t, http.MethodPost, "/journey/purchase", purchaseForm("1", "500"), sess))

	assert.Equal(t, "/journey", rec.Header().Get("Location"))
	assert.Zero(t, e.gifts.calls(), "no request when balance is too low")

	n := flashOf(rec)
	require.NotNil(t, n)
	assert.Equal(t, "Недостаточно средств", n.Title)
	assert.Equal(t, "Нужно 500 субкоинов, у вас 300", n.Message)
}

func TestJourneyView_PurchaseUpdatesBalanceFromGateway(t *testing.T) {
	e := newTestEnv()
	e.gifts.newBalance = 100
	views := e.views(t)
	sess := &models.Session{ID: 3, Username: "raven", Balance: 300}

	rec := httptest.NewRecorder()
	views.Journey.Purchase(rec, e.request(t, http.MethodPost, "/journey/purchase", purchaseForm("5", "200"), sess))

	assert.Equal(t, 1, e.gifts.calls())
	assert.Equal(t, int64(5), e.gifts.lastGiftID)

	got, ok := e.sessionOf(rec)
	require.True(t, ok)
	assert.Equal(t, 100, got.Balance)

	n := flashOf(rec)
	require.NotNil(t, n)
	assert.Equal(t, "Подарок куплен!", n.Title)
	assert.Equal(t, "Остаток: 100 ₡", n.Message)
}

func TestJourneyView_PurchaseGatewayErrorKeepsSession(t *testing.T) {
	e := newTestEnv()
	e.gifts.purchaseErr = &remote.Error{Status: http.StatusBadRequest, Message: "Gift already purchased"}
	views := e.views(t)
	sess := &models.Session{ID: 3, Username: "raven", Balance: 300}

	rec := httptest.NewRecorder()
	views.Journey.Purchase(rec, e.request(t, http.MethodPost, "/journey/purchase", purchaseForm("5", "200"), sess))

	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, "sess", c.Name, "session must not be rewritten on failure")
	}
	n := flashOf(rec)
	require.NotNil(t, n)
	assert.Equal(t, "Gift already purchased", n.Message)
}

func TestJourneyView_PurchaseWithoutSession(t *testing.T) {
	e := newTestEnv()
	views := e.views(t)

	rec := httptest.NewRecorder()
	views.Journey.Purchase(rec, e.request(t, http.MethodPost, "/journey/purchase", purchaseForm("5", "200"), nil))

	assert.Equal(t, "/auth", rec.Header().Get("Location"))
	assert.Zero(t, e.gifts.calls())
	n := flashOf(rec)
	require.NotNil(t, n)
	assert.Equal(t, "Требуется вход", n.Title)
}

func TestJourneyView_PurchaseInvalidForm(t *testing.T) {
	e := newTestEnv()
	views := e.views(t)
	sess := &models.Session{ID: 3, Username: "raven", Balance: 300}

	for _, form := range []url.Values{purchaseForm("abc", "10"), purchaseForm("0", "10"), purchaseForm("1", "-5")} {
		rec := httptest.NewRecorder()
		views.Journey.Purchase(rec, e.request(t, http.MethodPost, "/journey/purchase", form, sess))
		assert.Equal(t, "/journey", rec.Header().Get("Location"))
	}
	assert.Zero(t, e.gifts.calls())
}

func TestJourneyView_SecondPurchaseWhileFirstInFlight(t *testing.T) {
	e := newTestEnv()
	e.gifts.newBalance = 100
	e.gifts.started = make(chan struct{})
	e.gifts.unblock = make(chan struct{})
	views := e.views(t)
	sess := &models.Session{ID: 3, Username: "raven", Balance: 300}

	first := httptest.NewRecorder()
	firstReq := e.request(t, http.MethodPost, "/journey/purchase", purchaseForm("5", "200"), sess)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		views.Journey.Purchase(first, firstReq)
	}()
	<-e.gifts.started

	second := httptest.NewRecorder()
	views.Journey.Purchase(second, e.request(t, http.MethodPost, "/journey/purchase", purchaseForm("6", "200"), sess))

	close(e.gifts.unblock)
	wg.Wait()

	assert.Equal(t, 1, e.gifts.calls(), "second purchase must not reach the gateway")
	n := flashOf(second)
	require.NotNil(t, n)
	assert.Equal(t, "Предыдущий запрос еще выполняется", n.Message)

	n = flashOf(first)
	require.NotNil(t, n)
	assert.Equal(t, "Подарок куплен!", n.Title)
}

func TestJourneyView_ClaimReward(t *testing.T) {
	e := newTestEnv()
	e.rewards.reward = 100
	e.rewards.newBalance = 400
	views := e.views(t)
	sess := &models.Session{ID: 3, Username: "raven", Balance: 300}

	rec := httptest.NewRecorder()
	views.Journey.ClaimReward(rec, e.request(t, http.MethodPost, "/journey/reward", url.Values{}, sess))

	assert.Equal(t, 1, e.rewards.claims)
	got, ok := e.sessionOf(rec)
	require.True(t, ok)
	assert.Equal(t, 400, got.Balance)

	n := flashOf(rec)
	require.NotNil(t, n)
	assert.Equal(t, "+100 ₡, баланс: 400 ₡", n.Message)
}

func TestJourneyView_ClaimRewardAlreadyClaimed(t *testing.T) {
	e := newTestEnv()
	e.rewards.claimErr = &remote.Error{Status: http.StatusBadRequest, Message: "Already claimed today"}
	views := e.views(t)

	rec := httptest.NewRecorder()
	views.Journey.ClaimReward(rec, e.request(t, http.MethodPost, "/journey/reward", url.Values{}, &models.Session{ID: 3, Username: "raven"}))

	n := flashOf(rec)
	require.NotNil(t, n)
	assert.Equal(t, "Already claimed today", n.Message)
}

func TestJourneyView_LogoutThenPagesRedirectToAuth(t *testing.T) {
	e := newTestEnv()
	views := e.views(t)
	sess := &models.Session{ID: 3, Username: "raven", Balance: 300}

	rec := httptest.NewRecorder()
	views.Journey.Logout(rec, e.request(t, http.MethodPost, "/logout", url.Values{}, sess))
	assert.Equal(t, "/auth", rec.Header().Get("Location"))

	_, ok := e.sessionOf(rec)
	assert.False(t, ok)

	journey := httptest.NewRecorder()
	views.Journey.Show(journey, next(rec))
	assert.Equal(t, "/auth", journey.Header().Get("Location"))

	admin := httptest.NewRecorder()
	views.Admin.Show(admin, next(rec))
	assert.Equal(t, "/auth", admin.Header().Get("Location"))
	assert.Empty(t, e.admin.listedBy)
}
