package game

import "math"

const (
	// A larger blob swallows a smaller one once the centre distance drops
	// below rBig - absorbOverlap*rSmall.
	absorbOverlap = 0.35
	// Share of the absorbed mass the absorber keeps.
	absorbGain = 0.85
)

// Absorption records one PvP elimination.
type Absorption struct {
	Absorber string
	Absorbed string
	Gained   float64
}

// consumePellets lets every alive player eat the pellets under it. A pellet
// is removed as soon as it is eaten, so whichever player's scan reaches it
// first gets it; player order is map order.
func (r *Room) consumePellets() {
	reachMargin := r.cfg.Pellets.PickupMargin
	value := r.cfg.Pellets.Value
	for _, s := range r.Players {
		if !s.Alive {
			continue
		}
		reach := s.Radius() + reachMargin
		reach2 := reach * reach
		items := r.pellets.items
		for i := 0; i < len(items); {
			if dist2(s.Pos, items[i].Pos) < reach2 {
				s.Mass += value
				r.pellets.removeAt(i)
				items = r.pellets.items
				continue
			}
			i++
		}
	}
}

// resolveAbsorptions checks every unordered pair of alive players. Equal
// masses never resolve. The loser is marked not alive here; removing it from
// the room is up to the caller and depends on the mode.
func (r *Room) resolveAbsorptions() []Absorption {
	alive := make([]*Session, 0, len(r.Players))
	for _, s := range r.Players {
		if s.Alive {
			alive = append(alive, s)
		}
	}

	var result []Absorption
	for i := 0; i < len(alive); i++ {
		for j := i + 1; j < len(alive); j++ {
			a, b := alive[i], alive[j]
			if !a.Alive || !b.Alive || a.Mass == b.Mass {
				continue
			}
			big, small := a, b
			if b.Mass > a.Mass {
				big, small = b, a
			}
			d := math.Sqrt(dist2(big.Pos, small.Pos))
			if d >= big.Radius()-absorbOverlap*small.Radius() {
				continue
			}
			gained := small.Mass * absorbGain
			big.Mass += gained
			small.Alive = false
			result = append(result, Absorption{Absorber: big.ID, Absorbed: small.ID, Gained: gained})
		}
	}
	return result
}
