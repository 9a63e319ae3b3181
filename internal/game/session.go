package game

import (
	"math"
	"strings"
	"time"

	"github.com/er1ck02/blobbet-server/internal/protocol"
)

// Point is a 2D coordinate or vector
type Point struct {
	X float64
	Y float64
}

// Session is one connected player's blob. It belongs to exactly one Room.
type Session struct {
	ID          string
	Name        string
	Pos         Point
	Vel         Point
	Mass        float64
	Alive       bool
	LastInputAt time.Time
	JoinedAt    time.Time
}

func newSession(id, name string, pos Point, mass float64, now time.Time) *Session {
	return &Session{
		ID:          id,
		Name:        name,
		Pos:         pos,
		Mass:        mass,
		Alive:       true,
		LastInputAt: now,
		JoinedAt:    now,
	}
}

// Radius is derived from mass: r = sqrt(mass)
func (s *Session) Radius() float64 {
	return math.Sqrt(s.Mass)
}

// ApplyInput sets velocity from a directional input. Vectors longer than unit
// length are scaled down first, so maxSpeed bounds the result. The cap is
// intentional: raw input is not scaled directly.
func (s *Session) ApplyInput(vx, vy, baseSpeed float64, now time.Time) {
	if mag := math.Hypot(vx, vy); mag > 1 {
		vx /= mag
		vy /= mag
	}
	speed := maxSpeed(s.Mass, baseSpeed)
	s.Vel = Point{X: vx * speed, Y: vy * speed}
	s.LastInputAt = now
}

// reset restores a battle-royale participant for the next match. Position is
// left alone. The idle clock restarts so spectators get the full warning
// window once they are alive again.
func (s *Session) reset(mass float64, now time.Time) {
	s.Mass = mass
	s.Alive = true
	s.LastInputAt = now
}

// toDTO converts the session to its wire form, rounding to save bytes
func (s *Session) toDTO() protocol.Player {
	return protocol.Player{
		ID:     s.ID,
		Name:   s.Name,
		X:      roundTo1(s.Pos.X),
		Y:      roundTo1(s.Pos.Y),
		Mass:   roundTo1(s.Mass),
		Radius: roundTo1(s.Radius()),
		Alive:  s.Alive,
	}
}

// maxSpeed shrinks with mass^0.25, normalised so mass 100 moves at baseSpeed
func maxSpeed(mass, baseSpeed float64) float64 {
	return baseSpeed / math.Pow(mass/100, 0.25)
}

// sanitizeName trims the requested display name and caps it at limit runes
func sanitizeName(name string, limit int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	if r := []rune(name); len(r) > limit {
		name = string(r[:limit])
	}
	return name
}

func dist2(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// roundTo1 rounds a float64 to 1 decimal place to save protocol bytes
func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
