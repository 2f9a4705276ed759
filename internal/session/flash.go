package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

const flashCookie = "subculture_flash"

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice — всплывающее уведомление, показывается один раз на следующей странице
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

func Success(title, message string) Notice {
	return Notice{Kind: NoticeSuccess, Title: title, Message: message}
}

func Failure(title, message string) Notice {
	return Notice{Kind: NoticeError, Title: title, Message: message}
}

// Flash запоминает уведомление до следующего рендера
func Flash(w http.ResponseWriter, n Notice) {
	b, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash читает уведомление и сразу его удаляет
func PopFlash(w http.ResponseWriter, r *http.Request) (*Notice, bool) {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, false
	}
	var n Notice
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, false
	}
	return &n, true
}
