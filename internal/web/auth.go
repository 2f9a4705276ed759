package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/lib/logger"
	"github.com/linemk/subculture/internal/session"
)

const (
	modeLogin    = "login"
	modeRegister = "register"
)

var validate = validator.New()

type authForm struct {
	Mode     string `validate:"oneof=login register"`
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type authContent struct {
	Mode       string
	IsRegister bool
}

// AuthView — форма входа и регистрации
type AuthView struct {
	log      *slog.Logger
	sessions *session.Controller
	rd       *renderer
	auth     AuthGateway
}

func NewAuthView(log *slog.Logger, sessions *session.Controller, rd *renderer, auth AuthGateway) *AuthView {
	return &AuthView{log: log, sessions: sessions, rd: rd, auth: auth}
}

// Show обрабатывает GET /auth?mode=login|register
func (v *AuthView) Show(w http.ResponseWriter, r *http.Request) {
	mode := normalizeMode(r.URL.Query().Get("mode"))
	sess, _ := v.sessions.Current(r)

	title := "Вход"
	if mode == modeRegister {
		title = "Регистрация"
	}
	page := newPage(w, r, title, sess, authContent{Mode: mode, IsRegister: mode == modeRegister})
	v.rd.render(w, v.log, "auth", page)
}

// Submit обрабатывает POST /auth
func (v *AuthView) Submit(w http.ResponseWriter, r *http.Request) {
	const op = "web.AuthView.Submit"
	log := v.log.With(slog.String("op", op))

	if err := r.ParseForm(); err != nil {
		log.Warn("failed to parse form", logger.Err(err))
		redirectWithNotice(w, r, "/auth", session.Failure(titleError, "Заполните все поля"))
		return
	}

	form := authForm{
		Mode:     normalizeMode(r.PostForm.Get("mode")),
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}
	back := "/auth?" + url.Values{"mode": {form.Mode}}.Encode()

	if err := validate.Struct(form); err != nil {
		log.Warn("invalid auth form", logger.Err(err))
		redirectWithNotice(w, r, back, session.Failure(titleError, "Заполните все поля"))
		return
	}

	var (
		user *models.User
		err  error
	)
	if form.Mode == modeRegister {
		user, err = v.auth.Register(r.Context(), form.Username, form.Password)
	} else {
		user, err = v.auth.Login(r.Context(), form.Username, form.Password)
	}
	if err != nil {
		redirectWithNotice(w, r, back, failureNotice(log, err, "Что-то пошло не так", msgUnreachable))
		return
	}

	if err := v.sessions.Set(w, models.SessionFromUser(user)); err != nil {
		log.Error("failed to save session", logger.Err(err))
		redirectWithNotice(w, r, back, session.Failure(titleError, "Что-то пошло не так"))
		return
	}

	log.Info("user signed in", slog.String("username", user.Username), slog.String("mode", form.Mode))

	title := "Вход выполнен!"
	if form.Mode == modeRegister {
		title = "Регистрация успешна!"
	}
	redirectWithNotice(w, r, "/journey", session.Success(title, fmt.Sprintf("Добро пожаловать, %s!", user.Username)))
}

func normalizeMode(mode string) string {
	if mode == modeRegister {
		return modeRegister
	}
	return modeLogin
}
