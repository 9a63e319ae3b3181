package game

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/er1ck02/blobbet-server/internal/config"
	"github.com/er1ck02/blobbet-server/internal/protocol"
)

const casualRoomID = "casual"

// Registry owns every room for the lifetime of the process and keeps a
// non-owning session → room index for routing transport events.
type Registry struct {
	mu     sync.RWMutex
	rooms  []*Room
	casual *Room
	index  map[string]*Room
	nextBR int

	cfg     *config.Config
	out     Outbox
	log     *zap.Logger
	newSeed func() string
}

// NewRegistry creates an empty registry. Rooms are created on demand.
func NewRegistry(cfg *config.Config, out Outbox, log *zap.Logger) *Registry {
	return &Registry{
		index:   make(map[string]*Room),
		cfg:     cfg,
		out:     out,
		log:     log,
		newSeed: uuid.NewString,
	}
}

// assign returns the room a new player of the given mode should join. It
// must be called with g.mu held.
func (g *Registry) assign(mode string, now time.Time) *Room {
	if mode != protocol.ModeBattleRoyale {
		if g.casual == nil {
			g.casual = g.create(casualRoomID, protocol.ModeCasual, now)
		}
		return g.casual
	}
	for _, r := range g.rooms {
		if r.Mode == protocol.ModeBattleRoyale && r.Waiting() {
			return r
		}
	}
	g.nextBR++
	return g.create(fmt.Sprintf("br-%d", g.nextBR), protocol.ModeBattleRoyale, now)
}

func (g *Registry) create(id, mode string, now time.Time) *Room {
	seed := g.newSeed()
	r := newRoom(id, mode, seed, g.cfg, g.log, now)
	g.rooms = append(g.rooms, r)
	g.log.Info("room created",
		zap.String("room", id),
		zap.String("mode", mode),
		zap.String("seed", seed))
	return r
}

// Join attaches the session to a room of the requested mode. A session that
// is already in a room leaves it first.
func (g *Registry) Join(sessionID string, req protocol.JoinRequest, now time.Time) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.index[sessionID]; ok {
		old.leave(sessionID)
		delete(g.index, sessionID)
	}

	r := g.assign(protocol.ParseMode(req.Mode), now)
	s := r.join(sessionID, req.Name, now)
	g.index[sessionID] = r

	g.out.Unicast(sessionID, protocol.Joined{Type: protocol.TypeJoined, RoomID: r.ID, Mode: r.Mode})
	g.log.Info("player joined",
		zap.String("session", sessionID),
		zap.String("name", s.Name),
		zap.String("room", r.ID))
	return r
}

// Input routes a movement intent. Sessions without a room are ignored.
func (g *Registry) Input(sessionID string, req protocol.InputRequest, now time.Time) {
	r, ok := g.RoomOf(sessionID)
	if !ok {
		return
	}
	r.input(sessionID, req, now, g.out)
}

// Disconnect removes the session from its room, if it has one
func (g *Registry) Disconnect(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.index[sessionID]
	if !ok {
		return
	}
	r.leave(sessionID)
	delete(g.index, sessionID)
	g.log.Info("player left", zap.String("session", sessionID), zap.String("room", r.ID))
}

// RoomOf returns the room the session is attached to
func (g *Registry) RoomOf(sessionID string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.index[sessionID]
	return r, ok
}

// Rooms returns a snapshot of all rooms in creation order
func (g *Registry) Rooms() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.rooms)
}

type removal struct {
	sessionID string
	room      *Room
}

// Tick runs one simulation pass over every room, then drops index entries for
// sessions the rooms removed. Rooms are locked one at a time and never while
// the registry lock is held by this goroutine.
func (g *Registry) Tick(now time.Time) {
	var removed []removal
	for _, r := range g.Rooms() {
		for _, id := range r.Tick(now, g.out) {
			removed = append(removed, removal{sessionID: id, room: r})
		}
	}
	if len(removed) == 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, rm := range removed {
		// The session may have rejoined between the room tick and now
		if g.index[rm.sessionID] == rm.room && !rm.room.Has(rm.sessionID) {
			delete(g.index, rm.sessionID)
		}
		g.log.Debug("player removed", zap.String("session", rm.sessionID), zap.String("room", rm.room.ID))
	}
}

// Stats is a point-in-time summary used for status logging
type Stats struct {
	Rooms    int
	Sessions int
	ByMode   map[string]int
}

func (g *Registry) Stats() Stats {
	rooms := g.Rooms()
	st := Stats{Rooms: len(rooms), ByMode: make(map[string]int)}
	for _, r := range rooms {
		n := r.PlayerCount()
		st.Sessions += n
		st.ByMode[r.Mode] += n
	}
	return st
}
