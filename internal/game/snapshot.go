package game

import (
	"time"

	"github.com/er1ck02/blobbet-server/internal/protocol"
)

// broadcast sends each session its own view of the room. Payloads differ per
// recipient because of interest filtering, so every send is a unicast.
func (r *Room) broadcast(now time.Time, out Outbox) {
	meta := r.meta(now)
	serverTime := now.UnixMilli()
	radius := r.cfg.World.AOIRadius

	for id, s := range r.Players {
		others := nearbyPlayers(s, r.Players, radius)
		players := make([]protocol.Player, len(others))
		for i, o := range others {
			players[i] = o.toDTO()
		}

		near := nearbyPellets(s.Pos, r.pellets.items, radius)
		pellets := make([]protocol.Pellet, len(near))
		for i, p := range near {
			pellets[i] = p.toDTO()
		}

		out.Unicast(id, protocol.State{
			Type:       protocol.TypeState,
			You:        s.toDTO(),
			Players:    players,
			Pellets:    pellets,
			Board:      r.board,
			Meta:       meta,
			ServerTime: serverTime,
		})
	}
}

func (r *Room) meta(now time.Time) protocol.Meta {
	m := protocol.Meta{
		Mode:  r.Mode,
		State: r.State,
		Alive: r.aliveCount(),
	}
	if r.Mode == protocol.ModeBattleRoyale {
		m.Required = r.cfg.BattleRoyale.RequiredPlayers
		m.TimeLeft = r.timeLeft(now)
		m.Zone = &protocol.Zone{
			X: r.Zone.Center.X,
			Y: r.Zone.Center.Y,
			R: roundTo1(r.Zone.Radius),
		}
	}
	return m
}
