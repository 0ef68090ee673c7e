package service

import "sync"

// SaveGuard tracks venues with a save in flight so that a second save for
// the same venue is refused until the first one finishes.
type SaveGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewSaveGuard() *SaveGuard {
	return &SaveGuard{inflight: make(map[string]struct{})}
}

// TryBegin marks venueID as saving. It returns false if a save is already in
// flight for it.
func (g *SaveGuard) TryBegin(venueID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[venueID]; busy {
		return false
	}
	g.inflight[venueID] = struct{}{}
	return true
}

func (g *SaveGuard) End(venueID string) {
	g.mu.Lock()
	delete(g.inflight, venueID)
	g.mu.Unlock()
}

func (g *SaveGuard) InFlight(venueID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inflight[venueID]
	return busy
}
