package web

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vbonduro/venueadmin/internal/chart"
	"github.com/vbonduro/venueadmin/internal/domain"
	"github.com/vbonduro/venueadmin/internal/pricing"
	"github.com/vbonduro/venueadmin/internal/service"
)

// JournalReader is the subset of store.JournalStore the settings page needs.
type JournalReader interface {
	ListByVenue(ctx context.Context, venueID string, limit int) ([]*domain.SaveRecord, error)
}

const (
	historyLimit    = 5
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	sessions  *service.SessionService
	editors   *service.Editors
	history   JournalReader
	chart     *chart.BarChart
	limiter   *LoginLimiter
	templates fs.FS
	router    chi.Router
	tmplFuncs template.FuncMap
	logger    *slog.Logger
}

// NewServer wires the two screens. history and limiter may be nil.
func NewServer(
	sessions *service.SessionService,
	editors *service.Editors,
	history JournalReader,
	barChart *chart.BarChart,
	limiter *LoginLimiter,
	tmpl fs.FS,
	logger *slog.Logger,
) *Server {
	s := &Server{
		sessions:  sessions,
		editors:   editors,
		history:   history,
		chart:     barChart,
		limiter:   limiter,
		templates: tmpl,
		logger:    logger,
		tmplFuncs: template.FuncMap{
			"inc":          func(i int) int { return i + 1 },
			"amount":       pricing.FormatAmount,
			"outcomeLabel": outcomeLabel,
			"when":         func(t time.Time) string { return t.Local().Format("02 Jan 15:04") },
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(securityHeaders)

	r.Get("/", s.handleLoginPage)
	r.With(s.loginRateLimit).Post("/login", s.handleLogin)
	r.Get("/admin-dashboard/{id}", s.handleSettings)
	r.Post("/admin-dashboard/{id}", s.handleSaveSettings)
	r.Post("/admin-dashboard/{id}/preview", s.handlePreviewSettings)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains open requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, status int, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return tmpl.ExecuteTemplate(w, "base", data)
}

// renderPartial parses and executes a single named partial template.
// The file must contain exactly one {{define "name"}}...{{end}} block.
func (s *Server) renderPartial(w http.ResponseWriter, file string, data any) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, file)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	basename := file
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		basename = file[idx+1:]
	}
	for _, t := range tmpl.Templates() {
		if n := t.Name(); n != "" && n != basename {
			return t.Execute(w, data)
		}
	}
	return tmpl.ExecuteTemplate(w, basename, data)
}

func outcomeLabel(outcome string) string {
	switch outcome {
	case service.StateSaveCommitted.String():
		return "Saved"
	case service.StateSaveRejected.String():
		return "Rejected"
	case service.StateSaveFailed.String():
		return "Failed"
	default:
		return outcome
	}
}
