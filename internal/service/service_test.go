package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/venueadmin/internal/adminapi"
	"github.com/vbonduro/venueadmin/internal/domain"
	"github.com/vbonduro/venueadmin/internal/pricing"
)

// stubSessionAPI returns a fixed identity or error.
type stubSessionAPI struct {
	identity *domain.Identity
	err      error
	got      domain.Credentials
}

func (s *stubSessionAPI) Login(_ context.Context, creds domain.Credentials) (*domain.Identity, error) {
	s.got = creds
	return s.identity, s.err
}

// stubPricingAPI serves a sequence of GetVenue results and records updates.
type stubPricingAPI struct {
	mu        sync.Mutex
	gets      []getResult
	getCalls  int
	updateErr error
	updates   []domain.Tiers
	// block, if set, is waited on inside UpdateAmounts.
	block   chan struct{}
	entered chan struct{}
}

type getResult struct {
	venue *domain.VenuePricing
	err   error
}

func (s *stubPricingAPI) GetVenue(_ context.Context, _ string) (*domain.VenuePricing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.getCalls
	s.getCalls++
	if i >= len(s.gets) {
		i = len(s.gets) - 1
	}
	r := s.gets[i]
	if r.venue == nil {
		return nil, r.err
	}
	v := *r.venue
	return &v, r.err
}

func (s *stubPricingAPI) UpdateAmounts(_ context.Context, _ string, tiers domain.Tiers) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, tiers)
	return s.updateErr
}

func (s *stubPricingAPI) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

type memJournal struct {
	mu      sync.Mutex
	records []domain.SaveRecord
	err     error
}

func (j *memJournal) Record(_ context.Context, rec domain.SaveRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return j.err
}

var (
	transportErr = &adminapi.TransportError{Op: "test", Err: errors.New("connection refused")}
	rejectedErr  = errors.Join(errors.New("response \"Failed\""), adminapi.ErrRejected)
)

func venue(charge bool, custom float64, regular ...float64) *domain.VenuePricing {
	v := &domain.VenuePricing{
		ID:              "v1",
		Name:            "Social",
		Location:        "Hebbal, Bangalore",
		ChargeCustomers: charge,
		Amount:          domain.Tiers{Custom: custom},
	}
	copy(v.Amount.Regular[:], regular)
	return v
}

func loadedEditor(t *testing.T, api *stubPricingAPI, journal *memJournal) *Editor {
	t.Helper()
	var j SaveJournal
	if journal != nil {
		j = journal
	}
	ed := NewEditor(api, j, nil, slog.Default())
	require.Equal(t, StateLoaded, ed.Load(context.Background(), "v1"))
	return ed
}

func TestSubmitLogin(t *testing.T) {
	tests := []struct {
		name      string
		identity  *domain.Identity
		err       error
		wantOK    bool
		wantLevel NoticeLevel
		wantMsg   string
	}{
		{"success", &domain.Identity{ID: "v1"}, nil, true, NoticeSuccess, MsgSignedIn},
		{"missing id", nil, adminapi.ErrInvalidResponse, false, NoticeError, MsgInvalidResponse},
		{"rejected", nil, rejectedErr, false, NoticeError, MsgSignInFailed},
		{"bad status", nil, &adminapi.StatusError{Op: "login", StatusCode: 401}, false, NoticeError, MsgSignInFailed},
		{"transport", nil, transportErr, false, NoticeError, MsgLoginError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubSessionAPI{identity: tt.identity, err: tt.err}
			svc := NewSessionService(api, slog.Default())

			res := svc.SubmitLogin(context.Background(), " DJ@4 ", "secret")

			assert.Equal(t, tt.wantOK, res.OK)
			assert.Equal(t, Notice{Level: tt.wantLevel, Message: tt.wantMsg}, res.Notice)
			assert.Equal(t, domain.Credentials{Username: " DJ@4 ", Password: "secret"}, api.got)
			if tt.wantOK {
				assert.Equal(t, "v1", res.Identity.ID)
			} else {
				assert.Nil(t, res.Identity)
			}
		})
	}
}

func TestEditorLoad(t *testing.T) {
	api := &stubPricingAPI{gets: []getResult{{venue: venue(true, 199, 149, 99, 79, 49)}}}
	ed := loadedEditor(t, api, nil)

	view := ed.View()
	assert.Equal(t, StateLoaded, view.State)
	assert.Equal(t, "Social", view.Record.Name)
	assert.Equal(t, pricing.Draft{ChargeCustomers: true, Custom: "199", Regular: [4]string{"149", "99", "79", "49"}}, view.Draft)
	assert.Empty(t, view.Notices)
}

func TestEditorLoadFailedIsSilent(t *testing.T) {
	for name, err := range map[string]error{"transport": transportErr, "rejected": rejectedErr} {
		t.Run(name, func(t *testing.T) {
			api := &stubPricingAPI{gets: []getResult{{err: err}}}
			ed := NewEditor(api, nil, nil, slog.Default())

			assert.Equal(t, StateLoadFailed, ed.Load(context.Background(), "v1"))

			view := ed.View()
			assert.Equal(t, pricing.DefaultDraft(), view.Draft)
			assert.Empty(t, view.Notices)

			_, saveErr := ed.Save(context.Background())
			assert.ErrorIs(t, saveErr, ErrNotLoaded)
			assert.Zero(t, api.updateCount())
		})
	}
}

func TestEditorNewIsLoading(t *testing.T) {
	ed := NewEditor(&stubPricingAPI{}, nil, nil, slog.Default())
	assert.Equal(t, StateLoading, ed.State())
}

func TestEditorToggleKeepsAmounts(t *testing.T) {
	api := &stubPricingAPI{gets: []getResult{{venue: venue(true, 199, 149, 99, 79, 49)}}}
	ed := loadedEditor(t, api, nil)

	ed.SetChargeCustomers(false)
	assert.False(t, ed.SetAmounts("1", [4]string{"1", "1", "1", "1"}), "amounts are disabled")

	ed.SetChargeCustomers(true)
	view := ed.View()
	assert.Equal(t, "199", view.Draft.Custom)
	assert.Equal(t, [4]string{"149", "99", "79", "49"}, view.Draft.Regular)
}

func TestEditorSaveDisabledWhenNotCharging(t *testing.T) {
	api := &stubPricingAPI{gets: []getResult{{venue: venue(false, 0, 0, 0, 0, 0)}}}
	ed := loadedEditor(t, api, nil)

	state, err := ed.Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveDisabled)
	assert.Equal(t, StateLoaded, state)
	assert.Zero(t, api.updateCount())
}

// Scenario C: below-minimum custom amount never reaches the network.
func TestEditorSaveRejectedByValidation(t *testing.T) {
	api := &stubPricingAPI{gets: []getResult{{venue: venue(true, 199, 149, 99, 79, 49)}}}
	journal := &memJournal{}
	ed := loadedEditor(t, api, journal)
	require.True(t, ed.SetAmounts("50", [4]string{"149", "99", "79", "49"}))

	state, err := ed.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaveRejected, state)
	assert.Equal(t, StateLoaded, ed.State())
	assert.Zero(t, api.updateCount())
	assert.Equal(t, 1, api.getCalls)
	assert.Equal(t, []Notice{errorNotice(MsgSaveError)}, ed.View().Notices)
	assert.Equal(t, "50", ed.View().Draft.Custom)

	require.Len(t, journal.records, 1)
	assert.Equal(t, "save_rejected", journal.records[0].Outcome)
}

// Scenario D plus round-trip: the draft takes the server's values, not the
// submitted ones.
func TestEditorSaveCommitted(t *testing.T) {
	api := &stubPricingAPI{gets: []getResult{
		{venue: venue(true, 199, 149, 99, 79, 49)},
		{venue: venue(true, 300, 200, 100, 80, 60)},
	}}
	journal := &memJournal{}
	ed := loadedEditor(t, api, journal)
	require.True(t, ed.SetAmounts("299.6", [4]string{"199.6", "99.6", "79.6", "59.6"}))

	state, err := ed.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaveCommitted, state)

	require.Len(t, api.updates, 1)
	assert.Equal(t, domain.Tiers{Custom: 299.6, Regular: [4]float64{199.6, 99.6, 79.6, 59.6}}, api.updates[0])

	view := ed.View()
	assert.Equal(t, StateLoaded, view.State)
	assert.Equal(t, pricing.DraftFrom(*venue(true, 300, 200, 100, 80, 60)), view.Draft)
	assert.Equal(t, 300.0, view.Record.Amount.Custom)
	assert.Equal(t, []Notice{successNotice(MsgSaved)}, view.Notices)

	require.Len(t, journal.records, 1)
	assert.Equal(t, "v1", journal.records[0].VenueID)
	assert.Equal(t, "save_committed", journal.records[0].Outcome)
	assert.False(t, journal.records[0].CreatedAt.IsZero())
}

// Scenario E: confirmation fetch fails and the draft keeps its pre-save values.
func TestEditorSaveConfirmFetchFails(t *testing.T) {
	api := &stubPricingAPI{gets: []getResult{
		{venue: venue(true, 199, 149, 99, 79, 49)},
		{err: rejectedErr},
	}}
	ed := loadedEditor(t, api, nil)
	before := ed.View().Draft

	state, err := ed.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaveFailed, state)
	assert.Equal(t, 1, api.updateCount())

	view := ed.View()
	assert.Equal(t, before, view.Draft)
	assert.Equal(t, []Notice{errorNotice(MsgConfirmFetchFailed)}, view.Notices)
}

func TestEditorSaveUpdateRejected(t *testing.T) {
	api := &stubPricingAPI{
		gets:      []getResult{{venue: venue(true, 199, 149, 99, 79, 49)}},
		updateErr: rejectedErr,
	}
	ed := loadedEditor(t, api, nil)

	state, err := ed.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaveFailed, state)
	assert.Equal(t, 1, api.getCalls, "no confirmation fetch after a failed update")
	assert.Equal(t, []Notice{errorNotice(MsgSaveError)}, ed.View().Notices)
}

func TestEditorSaveTransportError(t *testing.T) {
	api := &stubPricingAPI{
		gets:      []getResult{{venue: venue(true, 199, 149, 99, 79, 49)}},
		updateErr: transportErr,
	}
	ed := loadedEditor(t, api, nil)
	require.True(t, ed.SetAmounts("150", [4]string{"149", "99", "79", "49"}))

	state, err := ed.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaveFailed, state)
	assert.Equal(t, []Notice{errorNotice(MsgSaveTransportError)}, ed.View().Notices)
	assert.Equal(t, "150", ed.View().Draft.Custom)
}

func TestEditorSaveTransportErrorOnConfirm(t *testing.T) {
	api := &stubPricingAPI{gets: []getResult{
		{venue: venue(true, 199, 149, 99, 79, 49)},
		{err: transportErr},
	}}
	ed := loadedEditor(t, api, nil)

	state, err := ed.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaveFailed, state)
	assert.Equal(t, []Notice{errorNotice(MsgSaveTransportError)}, ed.View().Notices)
}

func TestEditorSaveIdempotent(t *testing.T) {
	api := &stubPricingAPI{gets: []getResult{{venue: venue(true, 199, 149, 99, 79, 49)}}}
	ed := loadedEditor(t, api, nil)

	first, err := ed.Save(context.Background())
	require.NoError(t, err)
	afterFirst := ed.View()

	second, err := ed.Save(context.Background())
	require.NoError(t, err)
	afterSecond := ed.View()

	assert.Equal(t, StateSaveCommitted, first)
	assert.Equal(t, StateSaveCommitted, second)
	assert.Equal(t, afterFirst.Draft, afterSecond.Draft)
	assert.Equal(t, afterFirst.Record, afterSecond.Record)
	assert.Equal(t, 2, api.updateCount())
	assert.Equal(t, api.updates[0], api.updates[1])
}

func TestEditorJournalErrorDoesNotFailSave(t *testing.T) {
	api := &stubPricingAPI{gets: []getResult{{venue: venue(true, 199, 149, 99, 79, 49)}}}
	ed := loadedEditor(t, api, &memJournal{err: errors.New("disk full")})

	state, err := ed.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaveCommitted, state)
}

func TestEditorSuppressesDuplicateSave(t *testing.T) {
	api := &stubPricingAPI{
		gets:    []getResult{{venue: venue(true, 199, 149, 99, 79, 49)}},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	ed := loadedEditor(t, api, nil)

	done := make(chan State, 1)
	go func() {
		state, _ := ed.Save(context.Background())
		done <- state
	}()
	<-api.entered
	assert.Equal(t, StateSaving, ed.State())

	state, err := ed.Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveInFlight)
	assert.Equal(t, StateSaving, state)

	close(api.block)
	assert.Equal(t, StateSaveCommitted, <-done)
	assert.Equal(t, 1, api.updateCount())
	assert.Contains(t, ed.View().Notices, errorNotice(MsgSaveInFlight))
}

func TestEditorSharedGuardAcrossScreens(t *testing.T) {
	guard := NewSaveGuard()
	require.True(t, guard.TryBegin("v1"))

	api := &stubPricingAPI{gets: []getResult{{venue: venue(true, 199, 149, 99, 79, 49)}}}
	ed := NewEditor(api, nil, guard, slog.Default())
	ed.Load(context.Background(), "v1")

	_, err := ed.Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveInFlight)
	assert.Zero(t, api.updateCount())
	assert.Equal(t, StateLoaded, ed.State())

	guard.End("v1")
	state, err := ed.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaveCommitted, state)
	assert.False(t, guard.InFlight("v1"))
}

func TestEditorRestore(t *testing.T) {
	ed := NewEditor(&stubPricingAPI{gets: []getResult{{venue: venue(true, 99, 79, 59, 39, 19)}}}, nil, nil, slog.Default())
	draft := pricing.Draft{ChargeCustomers: true, Custom: "120", Regular: [4]string{"80", "60", "40", "20"}}
	ed.Restore(*venue(true, 99, 79, 59, 39, 19), draft)

	assert.Equal(t, StateLoaded, ed.State())
	assert.Equal(t, draft, ed.View().Draft)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "save_committed", StateSaveCommitted.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestEditorsShareGuard(t *testing.T) {
	api := &stubPricingAPI{
		gets:    []getResult{{venue: venue(true, 199, 149, 99, 79, 49)}},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	editors := NewEditors(api, nil, slog.Default())
	first, second := editors.New(), editors.New()
	first.Load(context.Background(), "v1")
	second.Load(context.Background(), "v1")

	done := make(chan State, 1)
	go func() {
		state, _ := first.Save(context.Background())
		done <- state
	}()
	<-api.entered

	_, err := second.Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveInFlight)

	close(api.block)
	assert.Equal(t, StateSaveCommitted, <-done)
	assert.Equal(t, 1, api.updateCount())
}

func TestEditorRestoreFailedCannotSave(t *testing.T) {
	api := &stubPricingAPI{}
	ed := NewEditor(api, nil, nil, slog.Default())
	ed.RestoreFailed(pricing.Draft{ChargeCustomers: true, Custom: "120", Regular: [4]string{"80", "60", "40", "20"}})

	state, err := ed.Save(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Equal(t, StateLoadFailed, state)
	assert.Zero(t, api.updateCount())
}
