package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/venueadmin/internal/domain"
	"github.com/vbonduro/venueadmin/internal/pricing"
	"github.com/vbonduro/venueadmin/internal/service"
)

var settingsTemplates = []string{"base.html", "pages/settings.html", "partials/settings_form.html", "partials/notices.html"}

type settingsPage struct {
	VenueID  string
	State    string
	Loaded   bool
	Record   domain.VenuePricing
	Draft    pricing.Draft
	Editable bool
	CanSave  bool
	Chart    template.HTML
	Notices  []service.Notice
	History  []*domain.SaveRecord
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "id")
	notices := takeFlash(w, r)

	ed := s.editors.New()
	ed.Load(r.Context(), venueID)

	s.renderSettings(w, r, venueID, ed.View(), notices)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "id")
	ed, ok := s.restoreEditor(w, r, venueID)
	if !ok {
		return
	}

	if r.PostFormValue("action") != "preview" {
		_, err := ed.Save(r.Context())
		switch {
		case errors.Is(err, service.ErrSaveDisabled):
			s.logger.Debug("save ignored while not charging", "venue_id", venueID)
		case err != nil:
			s.logger.Info("save not attempted", "venue_id", venueID, "error", err)
		}
	}

	s.renderSettings(w, r, venueID, ed.View(), nil)
}

// handlePreviewSettings re-renders the form and chart for the posted draft.
func (s *Server) handlePreviewSettings(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "id")
	ed, ok := s.restoreEditor(w, r, venueID)
	if !ok {
		return
	}

	page := s.settingsView(r, venueID, ed.View(), nil, false)
	if err := s.renderPartial(w, "partials/settings_form.html", page); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

func (s *Server) restoreEditor(w http.ResponseWriter, r *http.Request, venueID string) (*service.Editor, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return nil, false
	}
	record := domain.VenuePricing{
		ID:       venueID,
		Name:     r.PostFormValue("name"),
		Location: r.PostFormValue("location"),
	}
	draft := pricing.Draft{
		ChargeCustomers: r.PostFormValue("charge_customers") == "yes",
		Custom:          r.PostFormValue("custom"),
	}
	for i := range draft.Regular {
		draft.Regular[i] = r.PostFormValue("regular_" + strconv.Itoa(i))
	}
	record.ChargeCustomers = draft.ChargeCustomers
	record.Amount = draft.Tiers()

	ed := s.editors.New()
	if r.PostFormValue("loaded") == "1" {
		ed.Restore(record, draft)
	} else {
		ed.RestoreFailed(draft)
	}
	return ed, true
}

func (s *Server) renderSettings(w http.ResponseWriter, r *http.Request, venueID string, view service.EditorView, extra []service.Notice) {
	page := s.settingsView(r, venueID, view, extra, true)
	if err := s.renderPage(w, http.StatusOK, page, settingsTemplates...); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) settingsView(r *http.Request, venueID string, view service.EditorView, extra []service.Notice, withHistory bool) settingsPage {
	page := settingsPage{
		VenueID:  venueID,
		State:    view.State.String(),
		Loaded:   view.State == service.StateLoaded,
		Record:   view.Record,
		Draft:    view.Draft,
		Editable: view.Draft.Editable(),
		Notices:  append(extra, view.Notices...),
	}

	// A failed load leaves nothing to save against, even when charging.
	page.CanSave = page.Editable && page.Loaded

	if page.Editable && s.chart != nil {
		svg, err := s.chart.Render(view.Draft.Tiers())
		if err != nil {
			s.logger.Error("render chart failed", "venue_id", venueID, "error", err)
		} else {
			page.Chart = svg
		}
	}

	if withHistory && s.history != nil {
		records, err := s.history.ListByVenue(r.Context(), venueID, historyLimit)
		if err != nil {
			s.logger.Warn("failed to read save journal", "venue_id", venueID, "error", err)
		} else {
			page.History = records
		}
	}
	return page
}
