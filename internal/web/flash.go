package web

import (
	"net/http"
	"net/url"

	"github.com/vbonduro/venueadmin/internal/service"
)

const flashCookie = "venueadmin_flash"

// setFlash carries a success notice across the redirect that follows sign-in.
func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns and clears the pending flash notice, if any.
func takeFlash(w http.ResponseWriter, r *http.Request) []service.Notice {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil || msg == "" {
		return nil
	}
	return []service.Notice{{Level: service.NoticeSuccess, Message: msg}}
}
