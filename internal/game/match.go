package game

import (
	"math"
	"sort"
	"time"

	"github.com/er1ck02/blobbet-server/internal/config"
	"github.com/er1ck02/blobbet-server/internal/protocol"
)

// spawnRingFactor places the match start ring at this share of the full
// safe-zone radius.
const spawnRingFactor = 0.6

// SafeZone is the battle-royale play area. Players outside it are eliminated.
type SafeZone struct {
	Center     Point
	Radius     float64
	FullRadius float64
	MinRadius  float64
	ShrinkAt   time.Time
	EndsAt     time.Time
}

func newSafeZone(cfg *config.Config) SafeZone {
	full := cfg.FullZoneRadius()
	return SafeZone{
		Center:     Point{X: cfg.World.Width / 2, Y: cfg.World.Height / 2},
		Radius:     full,
		FullRadius: full,
		MinRadius:  cfg.BattleRoyale.MinZoneRadius,
	}
}

// RadiusAt interpolates linearly from the full radius at ShrinkAt down to
// MinRadius at EndsAt. It never goes below the floor.
func (z SafeZone) RadiusAt(now time.Time) float64 {
	if !now.After(z.ShrinkAt) {
		return z.FullRadius
	}
	span := z.EndsAt.Sub(z.ShrinkAt)
	frac := 1.0
	if span > 0 {
		frac = math.Min(float64(now.Sub(z.ShrinkAt))/float64(span), 1)
	}
	return math.Max(z.FullRadius-(z.FullRadius-z.MinRadius)*frac, z.MinRadius)
}

// Contains reports whether p lies inside the current radius.
func (z SafeZone) Contains(p Point) bool {
	return dist2(z.Center, p) <= z.Radius*z.Radius
}

// updateMatch drives the battle-royale state machine. Casual rooms are
// always active and skip it.
func (r *Room) updateMatch(now time.Time, out Outbox) {
	if r.Mode != protocol.ModeBattleRoyale {
		return
	}

	switch r.State {
	case protocol.StateWaiting:
		if len(r.Players) >= r.cfg.BattleRoyale.RequiredPlayers {
			r.startMatch(now, out)
		}

	case protocol.StateActive:
		r.Zone.Radius = r.Zone.RadiusAt(now)
		for _, s := range r.Players {
			if s.Alive && !r.Zone.Contains(s.Pos) {
				s.Alive = false
			}
		}
		if r.aliveCount() <= 1 || !now.Before(r.Zone.EndsAt) {
			r.endMatch(now, out)
		}
	}
}

// startMatch moves waiting → active. Players are spread over a ring around
// the centre, earliest joiner first, with N slots where N is the required
// player count.
func (r *Room) startMatch(now time.Time, out Outbox) {
	br := r.cfg.BattleRoyale
	r.State = protocol.StateActive
	r.StartedAt = now
	r.Zone.Radius = r.Zone.FullRadius
	r.Zone.ShrinkAt = now.Add(br.ShrinkStartAfter)
	r.Zone.EndsAt = now.Add(br.MatchDuration)

	ring := r.Zone.FullRadius * spawnRingFactor
	for i, s := range r.playersByJoin() {
		angle := 2 * math.Pi * float64(i) / float64(br.RequiredPlayers)
		s.Pos = Point{
			X: r.Zone.Center.X + ring*math.Cos(angle),
			Y: r.Zone.Center.Y + ring*math.Sin(angle),
		}
		s.Vel = Point{}
		s.reset(r.cfg.World.StartMass, now)
	}

	msg := protocol.MatchStart{Type: protocol.TypeMatchStart, EndsAt: r.Zone.EndsAt.UnixMilli()}
	for id := range r.Players {
		out.Unicast(id, msg)
	}
}

// endMatch moves active → waiting. Survivors and the fallen alike get their
// mass and alive flag back but keep their last position.
func (r *Room) endMatch(now time.Time, out Outbox) {
	msg := protocol.MatchEnd{Type: protocol.TypeMatchEnd}
	if w := r.winner(); w != nil {
		msg.WinnerID, msg.WinnerName = w.ID, w.Name
	}

	r.State = protocol.StateWaiting
	r.EndedAt = now
	r.Zone.Radius = r.Zone.FullRadius
	for id, s := range r.Players {
		s.reset(r.cfg.World.StartMass, now)
		out.Unicast(id, msg)
	}
}

// winner is the heaviest alive player, or nil if nobody survived.
func (r *Room) winner() *Session {
	var best *Session
	for _, s := range r.playersByJoin() {
		if s.Alive && (best == nil || s.Mass > best.Mass) {
			best = s
		}
	}
	return best
}

func (r *Room) playersByJoin() []*Session {
	list := make([]*Session, 0, len(r.Players))
	for _, s := range r.Players {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].JoinedAt.Equal(list[j].JoinedAt) {
			return list[i].JoinedAt.Before(list[j].JoinedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// timeLeft is the remaining match time in seconds, zero outside a match.
func (r *Room) timeLeft(now time.Time) float64 {
	if r.Mode != protocol.ModeBattleRoyale || r.State != protocol.StateActive {
		return 0
	}
	left := r.Zone.EndsAt.Sub(now).Seconds()
	if left < 0 {
		return 0
	}
	return math.Round(left*10) / 10
}
