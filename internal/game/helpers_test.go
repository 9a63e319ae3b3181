package game

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/er1ck02/blobbet-server/internal/config"
	"github.com/er1ck02/blobbet-server/internal/protocol"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type sentMsg struct {
	to  string
	msg any
}

// fakeOutbox records every unicast.
type fakeOutbox struct {
	mu   sync.Mutex
	sent []sentMsg
}

func (f *fakeOutbox) Unicast(sessionID string, msg any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMsg{to: sessionID, msg: msg})
}

func (f *fakeOutbox) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

func (f *fakeOutbox) to(sessionID string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []any
	for _, s := range f.sent {
		if s.to == sessionID {
			out = append(out, s.msg)
		}
	}
	return out
}

// lastOf returns the most recent message of type T sent to sessionID.
func lastOf[T any](f *fakeOutbox, sessionID string) (T, bool) {
	msgs := f.to(sessionID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if m, ok := msgs[i].(T); ok {
			return m, true
		}
	}
	var zero T
	return zero, false
}

func countOf[T any](f *fakeOutbox, sessionID string) int {
	n := 0
	for _, m := range f.to(sessionID) {
		if _, ok := m.(T); ok {
			n++
		}
	}
	return n
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Pellets.Count = 30
	return cfg
}

func newTestRoom(t *testing.T, mode string) (*Room, *fakeOutbox) {
	t.Helper()
	return newRoom("test-"+mode, mode, "seed-"+t.Name(), testConfig(), zap.NewNop(), t0), &fakeOutbox{}
}

// place adds a session directly, bypassing the random spawn.
func place(r *Room, id string, x, y, mass float64) *Session {
	s := newSession(id, id, Point{X: x, Y: y}, mass, t0)
	r.Players[id] = s
	return s
}

// clearPellets empties the field and sets its target to zero so ticks don't
// refill it.
func clearPellets(r *Room) {
	r.pellets.items = nil
	r.pellets.target = 0
}

func newTestRegistry(cfg *config.Config) (*Registry, *fakeOutbox) {
	out := &fakeOutbox{}
	g := NewRegistry(cfg, out, zap.NewNop())
	return g, out
}

func joinReq(name, mode string) protocol.JoinRequest {
	return protocol.JoinRequest{Name: name, Mode: mode}
}
