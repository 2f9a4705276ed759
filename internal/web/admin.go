package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/lib/inflight"
	"github.com/linemk/subculture/internal/lib/logger"
	"github.com/linemk/subculture/internal/remote"
	"github.com/linemk/subculture/internal/session"
)

const redactedHash = "••••••"

type coinsForm struct {
	Target string `validate:"required"`
	Coins  int    `validate:"gt=0"`
}

type targetForm struct {
	Target string `validate:"required"`
	Value  bool
}

type giftForm struct {
	Name        string `validate:"required"`
	Description string
	Price       int    `validate:"gt=0"`
	Icon        string `validate:"required"`
	Category    string `validate:"required"`
}

// AdminRow — строка таблицы пользователей
type AdminRow struct {
	ID           int64
	Username     string
	PasswordHash string
	Balance      int
	IsAdmin      bool
	IsBanned     bool
	CreatedAt    time.Time
}

type AdminStats struct {
	Total  int
	Admins int
	Banned int
}

type adminContent struct {
	Users      []AdminRow
	Stats      AdminStats
	ShowHashes bool
}

// AdminView — управление пользователями
type AdminView struct {
	log        *slog.Logger
	sessions   *session.Controller
	rd         *renderer
	admin      AdminGateway
	gifts      GiftGateway
	guard      *inflight.Guard
	showHashes bool
}

func NewAdminView(
	log *slog.Logger,
	sessions *session.Controller,
	rd *renderer,
	admin AdminGateway,
	gifts GiftGateway,
	guard *inflight.Guard,
	showHashes bool,
) *AdminView {
	return &AdminView{
		log:        log,
		sessions:   sessions,
		rd:         rd,
		admin:      admin,
		gifts:      gifts,
		guard:      guard,
		showHashes: showHashes,
	}
}

// Show обрабатывает GET /admin. Права проверяет только шлюз.
func (v *AdminView) Show(w http.ResponseWriter, r *http.Request) {
	const op = "web.AdminView.Show"
	log := v.log.With(slog.String("op", op))

	sess, ok := v.sessions.Current(r)
	if !ok {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	users, err := v.admin.ListUsers(r.Context(), sess.Username)
	if err != nil {
		if _, denied := remote.AsError(err); denied {
			log.Warn("admin access denied", slog.String("username", sess.Username), logger.Err(err))
			redirectWithNotice(w, r, "/journey", session.Failure("Доступ запрещен", "У вас нет прав администратора"))
			return
		}
		log.Error("failed to verify admin access", logger.Err(err))
		redirectWithNotice(w, r, "/journey", session.Failure(titleError, "Не удалось проверить права доступа"))
		return
	}

	page := newPage(w, r, "Админ-панель", sess, v.buildContent(users))
	v.rd.render(w, v.log, "admin", page)
}

func (v *AdminView) buildContent(users []models.User) adminContent {
	data := adminContent{
		Users:      make([]AdminRow, 0, len(users)),
		Stats:      AdminStats{Total: len(users)},
		ShowHashes: v.showHashes,
	}
	for _, u := range users {
		row := AdminRow{
			ID:        u.ID,
			Username:  u.Username,
			Balance:   u.Balance,
			IsAdmin:   u.IsAdmin,
			IsBanned:  u.IsBanned,
			CreatedAt: u.CreatedAt,
		}
		if v.showHashes {
			row.PasswordHash = u.PasswordHash
		} else {
			row.PasswordHash = redactedHash
		}
		if u.IsAdmin {
			data.Stats.Admins++
		}
		if u.IsBanned {
			data.Stats.Banned++
		}
		data.Users = append(data.Users, row)
	}
	return data
}

// AddCoins обрабатывает POST /admin/coins
func (v *AdminView) AddCoins(w http.ResponseWriter, r *http.Request) {
	const op = "web.AdminView.AddCoins"
	log := v.log.With(slog.String("op", op))

	sess, ok := v.sessions.Current(r)
	if !ok {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	form, err := parseCoinsForm(r)
	if err != nil {
		log.Warn("invalid coins form", logger.Err(err))
		redirectWithNotice(w, r, "/admin", session.Failure(titleError, "Введите корректное количество монет"))
		return
	}

	v.command(w, r, log, sess, "Не удалось добавить монеты", "Произошла ошибка при добавлении монет",
		func() (string, error) {
			return v.admin.AddCoins(r.Context(), sess.Username, form.Target, form.Coins)
		})
}

// SetBanStatus обрабатывает POST /admin/ban
func (v *AdminView) SetBanStatus(w http.ResponseWriter, r *http.Request) {
	const op = "web.AdminView.SetBanStatus"
	log := v.log.With(slog.String("op", op))

	sess, ok := v.sessions.Current(r)
	if !ok {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	form, err := parseTargetForm(r, "ban")
	if err != nil {
		log.Warn("invalid ban form", logger.Err(err))
		redirectWithNotice(w, r, "/admin", session.Failure(titleError, "Не удалось изменить статус"))
		return
	}

	v.command(w, r, log, sess, "Не удалось изменить статус", "Произошла ошибка при изменении статуса",
		func() (string, error) {
			return v.admin.SetBanStatus(r.Context(), sess.Username, form.Target, form.Value)
		})
}

// SetAdminStatus обрабатывает POST /admin/role
func (v *AdminView) SetAdminStatus(w http.ResponseWriter, r *http.Request) {
	const op = "web.AdminView.SetAdminStatus"
	log := v.log.With(slog.String("op", op))

	sess, ok := v.sessions.Current(r)
	if !ok {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	form, err := parseTargetForm(r, "grant")
	if err != nil {
		log.Warn("invalid role form", logger.Err(err))
		redirectWithNotice(w, r, "/admin", session.Failure(titleError, "Не удалось изменить права"))
		return
	}

	v.command(w, r, log, sess, "Не удалось изменить права", "Произошла ошибка при изменении прав",
		func() (string, error) {
			return v.admin.SetAdminStatus(r.Context(), sess.Username, form.Target, form.Value)
		})
}

// AddGift обрабатывает POST /admin/gifts
func (v *AdminView) AddGift(w http.ResponseWriter, r *http.Request) {
	const op = "web.AdminView.AddGift"
	log := v.log.With(slog.String("op", op))

	sess, ok := v.sessions.Current(r)
	if !ok {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	form, err := parseGiftForm(r)
	if err != nil {
		log.Warn("invalid gift form", logger.Err(err))
		redirectWithNotice(w, r, "/admin", session.Failure(titleError, "Заполните название, цену, иконку и категорию"))
		return
	}

	v.command(w, r, log, sess, "Не удалось добавить подарок", "Произошла ошибка при добавлении подарка",
		func() (string, error) {
			return v.gifts.AddGift(r.Context(), sess.Username, remote.NewGift{
				Name:        form.Name,
				Description: form.Description,
				Price:       form.Price,
				Icon:        form.Icon,
				Category:    form.Category,
			})
		})
}

// command выполняет одну команду админки и возвращает на /admin с результатом
func (v *AdminView) command(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	sess *models.Session,
	fallback, unreachable string,
	call func() (string, error),
) {
	release, ok := v.guard.TryAcquire(inflight.Key("admin", sess.ID))
	if !ok {
		redirectWithNotice(w, r, "/admin", busyNotice())
		return
	}
	defer release()

	msg, err := call()
	if err != nil {
		redirectWithNotice(w, r, "/admin", failureNotice(log, err, fallback, unreachable))
		return
	}

	log.Info("admin command done", slog.String("admin", sess.Username), slog.String("message", msg))
	redirectWithNotice(w, r, "/admin", session.Success("Успешно", msg))
}

func parseCoinsForm(r *http.Request) (coinsForm, error) {
	if err := r.ParseForm(); err != nil {
		return coinsForm{}, err
	}
	coins, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("coins")))
	if err != nil {
		return coinsForm{}, err
	}
	form := coinsForm{Target: r.PostForm.Get("target"), Coins: coins}
	if err := validate.Struct(form); err != nil {
		return coinsForm{}, err
	}
	return form, nil
}

// parseTargetForm читает целевого пользователя и булев флаг field
func parseTargetForm(r *http.Request, field string) (targetForm, error) {
	if err := r.ParseForm(); err != nil {
		return targetForm{}, err
	}
	value, err := strconv.ParseBool(r.PostForm.Get(field))
	if err != nil {
		return targetForm{}, errors.New(field + ": expected true or false")
	}
	form := targetForm{Target: r.PostForm.Get("target"), Value: value}
	if err := validate.Struct(form); err != nil {
		return targetForm{}, err
	}
	return form, nil
}

func parseGiftForm(r *http.Request) (giftForm, error) {
	if err := r.ParseForm(); err != nil {
		return giftForm{}, err
	}
	price, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("price")))
	if err != nil {
		return giftForm{}, err
	}
	form := giftForm{
		Name:        strings.TrimSpace(r.PostForm.Get("name")),
		Description: strings.TrimSpace(r.PostForm.Get("description")),
		Price:       price,
		Icon:        strings.TrimSpace(r.PostForm.Get("icon")),
		Category:    strings.TrimSpace(r.PostForm.Get("category")),
	}
	if err := validate.Struct(form); err != nil {
		return giftForm{}, err
	}
	return form, nil
}
