package game

import (
	"math"
	"time"

	"github.com/er1ck02/blobbet-server/internal/protocol"
)

// checkIdle warns alive players that have not sent input for WarnAfter and
// evicts them at EvictAfter. It returns the evicted session ids.
func (r *Room) checkIdle(now time.Time, out Outbox) []string {
	afk := r.cfg.AFK
	var evicted []string
	for id, s := range r.Players {
		if !s.Alive {
			continue
		}
		idle := now.Sub(s.LastInputAt)
		switch {
		case idle >= afk.EvictAfter:
			delete(r.Players, id)
			out.Unicast(id, protocol.Kicked{Type: protocol.TypeKicked, Reason: protocol.KickAFK})
			evicted = append(evicted, id)
		case idle >= afk.WarnAfter:
			out.Unicast(id, protocol.AFKWarn{
				Type:             protocol.TypeAFKWarn,
				SecondsRemaining: secondsUntil(afk.EvictAfter - idle),
			})
		}
	}
	return evicted
}

// secondsUntil rounds a remaining duration up to whole seconds.
func secondsUntil(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
