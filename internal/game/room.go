package game

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/er1ck02/blobbet-server/internal/config"
	"github.com/er1ck02/blobbet-server/internal/protocol"
)

// Outbox is the transport's outbound primitive. Unicast must not block.
type Outbox interface {
	Unicast(sessionID string, msg any)
}

// Room is one independent arena. All fields are guarded by mu; every event
// handler and the tick hold it for their whole body.
type Room struct {
	mu sync.Mutex

	ID    string
	Mode  string // protocol.ModeCasual or protocol.ModeBattleRoyale
	State string // protocol.StateWaiting or protocol.StateActive
	Seed  string

	Players map[string]*Session
	pellets *pelletField
	Zone    SafeZone

	CreatedAt time.Time
	StartedAt time.Time // start of the current or last match
	EndedAt   time.Time // end of the last match

	cfg   *config.Config
	log   *zap.Logger
	rng   *rand.Rand // replenishment and spawn positions
	board []protocol.BoardEntry
}

func newRoom(id, mode, seed string, cfg *config.Config, log *zap.Logger, now time.Time) *Room {
	state := protocol.StateActive
	if mode == protocol.ModeBattleRoyale {
		state = protocol.StateWaiting
	}
	return &Room{
		ID:        id,
		Mode:      mode,
		State:     state,
		Seed:      seed,
		Players:   make(map[string]*Session),
		pellets:   newPelletField(seed, cfg.Pellets.Count, cfg.World),
		Zone:      newSafeZone(cfg),
		CreatedAt: now,
		cfg:       cfg,
		log:       log,
		rng:       rand.New(rand.NewSource(now.UnixNano())),
	}
}

// Waiting reports whether the room is a battle-royale lobby accepting players
func (r *Room) Waiting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.State == protocol.StateWaiting
}

// PlayerCount returns the number of sessions in the room, alive or not
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players)
}

// pelletCount returns the current size of the pellet field
func (r *Room) pelletCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pellets.size()
}

// Has reports whether the session is attached to this room
func (r *Room) Has(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.Players[sessionID]
	return ok
}

// player returns a copy of a session's state
func (r *Room) player(sessionID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Players[sessionID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// join attaches a new session at a random in-bounds position
func (r *Room) join(sessionID, name string, now time.Time) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.cfg.World
	pos := Point{
		X: w.Margin + r.rng.Float64()*(w.Width-2*w.Margin),
		Y: w.Margin + r.rng.Float64()*(w.Height-2*w.Margin),
	}
	s := newSession(sessionID, sanitizeName(name, w.MaxNameLength), pos, w.StartMass, now)
	r.Players[sessionID] = s
	return s
}

// leave removes a session. It reports whether the session was present.
func (r *Room) leave(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Players[sessionID]; !ok {
		return false
	}
	delete(r.Players, sessionID)
	return true
}

// input applies a movement intent and answers the latency ping if one was
// attached. Unknown sessions are ignored.
func (r *Room) input(sessionID string, in protocol.InputRequest, now time.Time, out Outbox) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Players[sessionID]
	if !ok {
		return false
	}
	s.ApplyInput(in.VX, in.VY, r.cfg.World.BaseSpeed, now)
	if in.HasT {
		out.Unicast(sessionID, protocol.Pong{
			Type:       protocol.TypePong,
			T:          in.T,
			ServerTime: now.UnixMilli(),
		})
	}
	return true
}

// Tick runs one full simulation step and returns the ids of sessions removed
// from the room during it.
func (r *Room) Tick(now time.Time, out Outbox) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 1. Match state (battle-royale only)
	r.updateMatch(now, out)

	// 2. Movement
	r.integrate(r.cfg.World.TickInterval.Seconds())

	// 3. Pellets, then refill to target
	r.consumePellets()
	r.pellets.replenish(r.rng)

	// 4. PvP
	var removed []string
	for _, a := range r.resolveAbsorptions() {
		r.log.Debug("absorbed",
			zap.String("room", r.ID),
			zap.String("absorber", a.Absorber),
			zap.String("absorbed", a.Absorbed),
			zap.Float64("gained", a.Gained))
		if r.Mode == protocol.ModeCasual {
			delete(r.Players, a.Absorbed)
			out.Unicast(a.Absorbed, protocol.Kicked{Type: protocol.TypeKicked, Reason: protocol.KickEaten})
			removed = append(removed, a.Absorbed)
		}
	}

	// 5. Idle players
	removed = append(removed, r.checkIdle(now, out)...)

	// 6. Leaderboard and per-player views
	r.board = buildLeaderboard(r.Players, r.cfg.World.LeaderboardLen)
	r.broadcast(now, out)

	return removed
}

func (r *Room) aliveCount() int {
	n := 0
	for _, s := range r.Players {
		if s.Alive {
			n++
		}
	}
	return n
}
