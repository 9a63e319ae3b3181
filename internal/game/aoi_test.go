package game

import (
	"fmt"
	"testing"
)

func TestNearbyPlayersBoundaryInclusive(t *testing.T) {
	self := newSession("me", "me", Point{X: 1000, Y: 1000}, 100, t0)
	players := map[string]*Session{
		"me":   self,
		"edge": newSession("edge", "edge", Point{X: 1900, Y: 1000}, 100, t0),
		"out":  newSession("out", "out", Point{X: 1000, Y: 1900.5}, 100, t0),
		"dead": newSession("dead", "dead", Point{X: 1010, Y: 1000}, 100, t0),
	}
	players["dead"].Alive = false

	got := nearbyPlayers(self, players, 900)

	if len(got) != 1 || got[0].ID != "edge" {
		ids := []string{}
		for _, s := range got {
			ids = append(ids, s.ID)
		}
		t.Fatalf("nearby = %v, want [edge]", ids)
	}
}

func TestNearbyPelletsSamplesEverySecond(t *testing.T) {
	var pellets []Pellet
	for i := 0; i < 10; i++ {
		x := 100.0 + float64(i)
		if i == 3 {
			x = 5000 // out of range, so it doesn't count toward the sampling
		}
		pellets = append(pellets, Pellet{ID: fmt.Sprintf("p%d", i), Pos: Point{X: x, Y: 100}})
	}

	got := nearbyPellets(Point{X: 100, Y: 100}, pellets, 50)

	want := []string{"p0", "p2", "p5", "p7", "p9"}
	if len(got) != len(want) {
		t.Fatalf("got %d pellets, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("pellet %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestNearbyPelletsShiftWhenFieldChanges(t *testing.T) {
	var pellets []Pellet
	for i := 0; i < 4; i++ {
		pellets = append(pellets, Pellet{ID: fmt.Sprintf("p%d", i), Pos: Point{X: 100, Y: 100}})
	}
	before := nearbyPellets(Point{X: 100, Y: 100}, pellets, 10)
	after := nearbyPellets(Point{X: 100, Y: 100}, pellets[1:], 10)

	if before[0].ID != "p0" || after[0].ID != "p1" {
		t.Fatalf("before %s after %s", before[0].ID, after[0].ID)
	}
}
