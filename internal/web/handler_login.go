package web

import (
	"net/http"
	"net/url"

	"github.com/vbonduro/venueadmin/internal/service"
)

const msgTooManyAttempts = "Too many login attempts, try again later"

var loginTemplates = []string{"base.html", "pages/login.html", "partials/notices.html"}

type loginPage struct {
	Username     string
	ShowPassword bool
	Notices      []service.Notice
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, http.StatusOK, loginPage{}, loginTemplates...); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	res := s.sessions.SubmitLogin(r.Context(), username, password)
	if !res.OK {
		page := loginPage{
			Username:     username,
			ShowPassword: r.PostFormValue("show_password") != "",
			Notices:      []service.Notice{res.Notice},
		}
		if err := s.renderPage(w, http.StatusOK, page, loginTemplates...); err != nil {
			s.logger.Error("render page failed", "error", err)
		}
		return
	}

	setFlash(w, res.Notice.Message)
	target := "/admin-dashboard/" + url.PathEscape(res.Identity.ID)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
