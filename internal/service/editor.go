package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vbonduro/venueadmin/internal/adminapi"
	"github.com/vbonduro/venueadmin/internal/domain"
	"github.com/vbonduro/venueadmin/internal/pricing"
)

// pricingAPI is the subset of adminapi.Client that Editor requires.
type pricingAPI interface {
	GetVenue(ctx context.Context, id string) (*domain.VenuePricing, error)
	UpdateAmounts(ctx context.Context, id string, tiers domain.Tiers) error
}

// SaveJournal is the subset of store.JournalStore that Editor requires.
type SaveJournal interface {
	Record(ctx context.Context, rec domain.SaveRecord) error
}

type State int

const (
	StateLoading State = iota
	StateLoaded
	StateLoadFailed
	StateSaving
	StateSaveRejected
	StateSaveFailed
	StateSaveCommitted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateLoadFailed:
		return "load_failed"
	case StateSaving:
		return "saving"
	case StateSaveRejected:
		return "save_rejected"
	case StateSaveFailed:
		return "save_failed"
	case StateSaveCommitted:
		return "save_committed"
	default:
		return "unknown"
	}
}

var (
	ErrNotLoaded    = errors.New("no pricing record loaded")
	ErrSaveDisabled = errors.New("saving is disabled while customers are not charged")
	ErrSaveInFlight = errors.New("a save is already in progress")
)

// Editor is one pricing-settings screen: it owns the draft of a single
// venue's pricing from load until the screen goes away.
type Editor struct {
	api     pricingAPI
	journal SaveJournal
	guard   *SaveGuard
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	state   State
	record  domain.VenuePricing
	draft   pricing.Draft
	notices []Notice
}

// Editors builds editors that share one API client, journal and SaveGuard,
// so that two screens for the same venue cannot save at once.
type Editors struct {
	api     pricingAPI
	journal SaveJournal
	guard   *SaveGuard
	logger  *slog.Logger
}

func NewEditors(api pricingAPI, journal SaveJournal, logger *slog.Logger) *Editors {
	return &Editors{api: api, journal: journal, guard: NewSaveGuard(), logger: logger}
}

func (f *Editors) New() *Editor {
	return NewEditor(f.api, f.journal, f.guard, f.logger)
}

// NewEditor returns an editor in the Loading state. journal may be nil. A nil
// guard gives the editor a private one.
func NewEditor(api pricingAPI, journal SaveJournal, guard *SaveGuard, logger *slog.Logger) *Editor {
	if guard == nil {
		guard = NewSaveGuard()
	}
	return &Editor{
		api:     api,
		journal: journal,
		guard:   guard,
		logger:  logger,
		now:     time.Now,
		state:   StateLoading,
		draft:   pricing.DefaultDraft(),
	}
}

// Load fetches the venue's record and initialises the draft from it. A failed
// fetch is logged only; the draft keeps its defaults.
func (e *Editor) Load(ctx context.Context, venueID string) State {
	e.mu.Lock()
	e.state = StateLoading
	e.mu.Unlock()

	venue, err := e.api.GetVenue(ctx, venueID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.logger.Error("failed to load venue pricing", "venue_id", venueID, "error", err)
		e.state = StateLoadFailed
		e.record = domain.VenuePricing{}
		e.draft = pricing.DefaultDraft()
		return e.state
	}
	e.record = *venue
	e.draft = pricing.DraftFrom(*venue)
	e.state = StateLoaded
	return e.state
}

// Restore puts the editor in the Loaded state with a draft carried over from
// an earlier rendering of the same screen.
func (e *Editor) Restore(record domain.VenuePricing, draft pricing.Draft) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record = record
	e.draft = draft
	e.state = StateLoaded
}

// RestoreFailed rebuilds a screen whose initial load failed. The draft stays
// editable locally but cannot be saved.
func (e *Editor) RestoreFailed(draft pricing.Draft) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record = domain.VenuePricing{}
	e.draft = draft
	e.state = StateLoadFailed
}

// SetChargeCustomers toggles charging. Amounts are kept as they are.
func (e *Editor) SetChargeCustomers(charge bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.ChargeCustomers = charge
}

// SetAmounts replaces the draft's amounts. It is ignored while the amount
// inputs are disabled.
func (e *Editor) SetAmounts(custom string, regular [4]string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.draft.Editable() {
		return false
	}
	e.draft.Custom = custom
	e.draft.Regular = regular
	return true
}

// Save validates the draft and, if it passes, writes the amounts and reloads
// the record to confirm them. The returned state is the save outcome; the
// editor itself is back in Loaded when Save returns. An error means the save
// action was not available and nothing was attempted.
func (e *Editor) Save(ctx context.Context) (State, error) {
	e.mu.Lock()
	switch {
	case e.state == StateSaving:
		e.notices = append(e.notices, errorNotice(MsgSaveInFlight))
		e.mu.Unlock()
		return StateSaving, ErrSaveInFlight
	case e.state != StateLoaded:
		state := e.state
		e.mu.Unlock()
		return state, ErrNotLoaded
	case !e.draft.Editable():
		e.mu.Unlock()
		return StateLoaded, ErrSaveDisabled
	}

	id := e.record.ID
	draft := e.draft
	if err := pricing.Validate(draft); err != nil {
		e.notices = append(e.notices, errorNotice(MsgSaveError))
		e.mu.Unlock()
		e.logger.Info("save rejected by validation", "venue_id", id, "error", err)
		e.journalOutcome(ctx, id, StateSaveRejected, draft.Tiers())
		return StateSaveRejected, nil
	}
	if !e.guard.TryBegin(id) {
		e.notices = append(e.notices, errorNotice(MsgSaveInFlight))
		e.mu.Unlock()
		return StateSaving, ErrSaveInFlight
	}
	e.state = StateSaving
	e.mu.Unlock()

	tiers := draft.Tiers()
	outcome, confirmed, notice := e.persist(ctx, id, tiers)
	e.guard.End(id)

	e.mu.Lock()
	if confirmed != nil {
		e.record = *confirmed
		e.draft = pricing.DraftFrom(*confirmed)
	}
	e.notices = append(e.notices, notice)
	e.state = StateLoaded
	e.mu.Unlock()

	e.journalOutcome(ctx, id, outcome, tiers)
	return outcome, nil
}

func (e *Editor) persist(ctx context.Context, id string, tiers domain.Tiers) (State, *domain.VenuePricing, Notice) {
	if err := e.api.UpdateAmounts(ctx, id, tiers); err != nil {
		if adminapi.IsTransport(err) {
			e.logger.Error("error during save", "venue_id", id, "error", err)
			return StateSaveFailed, nil, errorNotice(MsgSaveTransportError)
		}
		e.logger.Error("save failed", "venue_id", id, "error", err)
		return StateSaveFailed, nil, errorNotice(MsgSaveError)
	}

	confirmed, err := e.api.GetVenue(ctx, id)
	if err != nil {
		if adminapi.IsTransport(err) {
			e.logger.Error("error during save confirmation", "venue_id", id, "error", err)
			return StateSaveFailed, nil, errorNotice(MsgSaveTransportError)
		}
		e.logger.Error("failed to fetch updated data after save", "venue_id", id, "error", err)
		return StateSaveFailed, nil, errorNotice(MsgConfirmFetchFailed)
	}

	e.logger.Info("pricing saved", "venue_id", id)
	return StateSaveCommitted, confirmed, successNotice(MsgSaved)
}

func (e *Editor) journalOutcome(ctx context.Context, id string, outcome State, tiers domain.Tiers) {
	if e.journal == nil {
		return
	}
	rec := domain.SaveRecord{
		VenueID:   id,
		Outcome:   outcome.String(),
		Amount:    tiers,
		CreatedAt: e.now().UTC(),
	}
	if err := e.journal.Record(ctx, rec); err != nil {
		e.logger.Warn("failed to record save in journal", "venue_id", id, "error", err)
	}
}

// EditorView is a snapshot of the screen's state for rendering.
type EditorView struct {
	State   State
	Record  domain.VenuePricing
	Draft   pricing.Draft
	Notices []Notice
}

func (e *Editor) View() EditorView {
	e.mu.Lock()
	defer e.mu.Unlock()
	notices := make([]Notice, len(e.notices))
	copy(notices, e.notices)
	return EditorView{
		State:   e.state,
		Record:  e.record,
		Draft:   e.draft,
		Notices: notices,
	}
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
