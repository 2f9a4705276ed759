package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/lib/inflight"
	"github.com/linemk/subculture/internal/lib/logger"
	"github.com/linemk/subculture/internal/session"
)

type purchaseForm struct {
	GiftID int64 `validate:"gt=0"`
	Price  int   `validate:"gte=0"`
}

type journeyContent struct {
	*Content
	Gifts  []models.Gift
	Reward *models.RewardStatus
}

// JourneyView — хаб путешествия: города, подарки, ежедневная награда
type JourneyView struct {
	log      *slog.Logger
	sessions *session.Controller
	rd       *renderer
	content  *Content
	gifts    GiftGateway
	rewards  RewardGateway
	guard    *inflight.Guard
}

func NewJourneyView(
	log *slog.Logger,
	sessions *session.Controller,
	rd *renderer,
	content *Content,
	gifts GiftGateway,
	rewards RewardGateway,
	guard *inflight.Guard,
) *JourneyView {
	return &JourneyView{
		log:      log,
		sessions: sessions,
		rd:       rd,
		content:  content,
		gifts:    gifts,
		rewards:  rewards,
		guard:    guard,
	}
}

// Show обрабатывает GET /journey
func (v *JourneyView) Show(w http.ResponseWriter, r *http.Request) {
	const op = "web.JourneyView.Show"
	log := v.log.With(slog.String("op", op))

	sess, ok := v.sessions.Current(r)
	if !ok {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	data := journeyContent{Content: v.content}

	// каталог не критичен: при ошибке показываем пустой список
	gifts, err := v.gifts.List(r.Context(), sess.ID)
	if err != nil {
		log.Error("failed to load gifts", slog.Int64("user_id", sess.ID), logger.Err(err))
	} else {
		data.Gifts = gifts
	}

	if v.rewards != nil {
		status, err := v.rewards.Status(r.Context(), sess.ID)
		if err != nil {
			log.Error("failed to load reward status", slog.Int64("user_id", sess.ID), logger.Err(err))
		} else {
			data.Reward = status
		}
	}

	page := newPage(w, r, "Путешествие", sess, data)
	v.rd.render(w, v.log, "journey", page)
}

// Purchase обрабатывает POST /journey/purchase
func (v *JourneyView) Purchase(w http.ResponseWriter, r *http.Request) {
	const op = "web.JourneyView.Purchase"
	log := v.log.With(slog.String("op", op))

	sess, ok := v.sessions.Current(r)
	if !ok {
		redirectWithNotice(w, r, "/auth", session.Failure("Требуется вход", "Войдите в аккаунт для покупки подарков"))
		return
	}

	form, err := parsePurchaseForm(r)
	if err != nil {
		log.Warn("invalid purchase form", logger.Err(err))
		redirectWithNotice(w, r, "/journey", session.Failure(titleError, "Некорректный подарок"))
		return
	}

	// баланс проверяем до запроса, сервер все равно проверит еще раз
	if sess.Balance < form.Price {
		redirectWithNotice(w, r, "/journey", session.Failure(
			"Недостаточно средств",
			fmt.Sprintf("Нужно %d субкоинов, у вас %d", form.Price, sess.Balance),
		))
		return
	}

	release, ok := v.guard.TryAcquire(inflight.Key("journey", sess.ID))
	if !ok {
		redirectWithNotice(w, r, "/journey", busyNotice())
		return
	}
	defer release()

	newBalance, err := v.gifts.Purchase(r.Context(), sess.ID, form.GiftID)
	if err != nil {
		redirectWithNotice(w, r, "/journey", failureNotice(log, err, "Не удалось купить подарок", "Не удалось купить подарок"))
		return
	}

	sess.Balance = newBalance
	if err := v.sessions.Set(w, sess); err != nil {
		log.Error("failed to save session", logger.Err(err))
	}

	log.Info("gift purchased",
		slog.Int64("user_id", sess.ID),
		slog.Int64("gift_id", form.GiftID),
		slog.Int("new_balance", newBalance),
	)
	redirectWithNotice(w, r, "/journey", session.Success("Подарок куплен!", fmt.Sprintf("Остаток: %d ₡", newBalance)))
}

// ClaimReward обрабатывает POST /journey/reward
func (v *JourneyView) ClaimReward(w http.ResponseWriter, r *http.Request) {
	const op = "web.JourneyView.ClaimReward"
	log := v.log.With(slog.String("op", op))

	sess, ok := v.sessions.Current(r)
	if !ok {
		redirectWithNotice(w, r, "/auth", session.Failure("Требуется вход", "Войдите в аккаунт, чтобы получить награду"))
		return
	}
	if v.rewards == nil {
		redirectWithNotice(w, r, "/journey", session.Failure(titleError, "Ежедневная награда недоступна"))
		return
	}

	release, ok := v.guard.TryAcquire(inflight.Key("journey", sess.ID))
	if !ok {
		redirectWithNotice(w, r, "/journey", busyNotice())
		return
	}
	defer release()

	reward, newBalance, err := v.rewards.Claim(r.Context(), sess.ID)
	if err != nil {
		redirectWithNotice(w, r, "/journey", failureNotice(log, err, "Не удалось получить награду", msgUnreachable))
		return
	}

	sess.Balance = newBalance
	if err := v.sessions.Set(w, sess); err != nil {
		log.Error("failed to save session", logger.Err(err))
	}

	redirectWithNotice(w, r, "/journey", session.Success(
		"Награда получена!",
		fmt.Sprintf("+%d ₡, баланс: %d ₡", reward, newBalance),
	))
}

// Logout обрабатывает POST /logout
func (v *JourneyView) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := v.sessions.Current(r); ok {
		v.log.Info("user logged out", slog.String("username", sess.Username))
	}
	v.sessions.Clear(w)
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

func parsePurchaseForm(r *http.Request) (purchaseForm, error) {
	if err := r.ParseForm(); err != nil {
		return purchaseForm{}, err
	}
	giftID, err := strconv.ParseInt(r.PostForm.Get("gift_id"), 10, 64)
	if err != nil {
		return purchaseForm{}, fmt.Errorf("gift_id: %w", err)
	}
	price, err := strconv.Atoi(r.PostForm.Get("price"))
	if err != nil {
		return purchaseForm{}, fmt.Errorf("price: %w", err)
	}
	form := purchaseForm{GiftID: giftID, Price: price}
	if err := validate.Struct(form); err != nil {
		return purchaseForm{}, err
	}
	return form, nil
}
