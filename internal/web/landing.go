package web

import (
	"log/slog"
	"net/http"

	"github.com/linemk/subculture/internal/session"
)

// LandingView — статическая главная страница
type LandingView struct {
	log      *slog.Logger
	sessions *session.Controller
	rd       *renderer
	content  *Content
}

func NewLandingView(log *slog.Logger, sessions *session.Controller, rd *renderer, content *Content) *LandingView {
	return &LandingView{log: log, sessions: sessions, rd: rd, content: content}
}

// Show обрабатывает GET /
func (v *LandingView) Show(w http.ResponseWriter, r *http.Request) {
	sess, _ := v.sessions.Current(r)
	page := newPage(w, r, "Субкультурная область", sess, v.content)
	v.rd.render(w, v.log, "landing", page)
}
