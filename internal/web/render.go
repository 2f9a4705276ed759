package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/lib/logger"
	"github.com/linemk/subculture/internal/remote"
	"github.com/linemk/subculture/internal/session"
)

//go:embed templates/*.html content/*.md
var assets embed.FS

// HeaderData отображается в шапке каждой страницы
type HeaderData struct {
	LoggedIn bool
	Username string
	Balance  int
	IsAdmin  bool
}

// Page объединяет общую шапку и содержимое конкретной страницы
type Page[T any] struct {
	Title     string
	Header    HeaderData
	Notice    *session.Notice
	CSRFField template.HTML
	Content   T
}

func newPage[T any](w http.ResponseWriter, r *http.Request, title string, sess *models.Session, content T) Page[T] {
	page := Page[T]{
		Title:     title,
		CSRFField: csrf.TemplateField(r),
		Content:   content,
	}
	if sess != nil {
		page.Header = HeaderData{
			LoggedIn: true,
			Username: sess.Username,
			Balance:  sess.Balance,
			IsAdmin:  sess.IsAdmin,
		}
	}
	if n, ok := session.PopFlash(w, r); ok {
		page.Notice = n
	}
	return page
}

var pageNames = []string{"landing", "auth", "journey", "admin"}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	funcs := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return "—"
			}
			return t.Format("02.01.2006")
		},
	}

	rd := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(assets,
			"templates/layout.html",
			"templates/sections.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		rd.pages[name] = tpl
	}
	return rd, nil
}

// render рисует страницу в буфер, чтобы ошибка шаблона не оставила полстраницы
func (rd *renderer) render(w http.ResponseWriter, log *slog.Logger, name string, data any) {
	tpl, ok := rd.pages[name]
	if !ok {
		log.Error("unknown page", slog.String("page", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		log.Error("failed to render page", slog.String("page", name), logger.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// redirectWithNotice — post/redirect/get с уведомлением на следующей странице
func redirectWithNotice(w http.ResponseWriter, r *http.Request, to string, n session.Notice) {
	session.Flash(w, n)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

const (
	titleError     = "Ошибка"
	msgUnreachable = "Не удалось подключиться к серверу"
	msgRequestBusy = "Предыдущий запрос еще выполняется"
)

// failureNotice превращает ошибку шлюза в уведомление. Бизнес-ошибка шлюза
// показывается дословно, сетевая - общим текстом.
func failureNotice(log *slog.Logger, err error, fallback, unreachable string) session.Notice {
	if gwErr, ok := remote.AsError(err); ok {
		log.Warn("gateway rejected request", logger.Err(err))
		msg := gwErr.Message
		if msg == "" {
			msg = fallback
		}
		return session.Failure(titleError, msg)
	}
	log.Error("gateway call failed", logger.Err(err))
	return session.Failure(titleError, unreachable)
}

func busyNotice() session.Notice {
	return session.Failure("Подождите", msgRequestBusy)
}
