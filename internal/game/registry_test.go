package game

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/er1ck02/blobbet-server/internal/protocol"
)

func TestCasualRoomIsShared(t *testing.T) {
	g, out := newTestRegistry(testConfig())

	a := g.Join("a", joinReq("alice", protocol.ModeCasual), t0)
	b := g.Join("b", joinReq("bob", ""), t0)
	c := g.Join("c", joinReq("carol", "deathmatch"), t0)

	if a != b || b != c || a.ID != casualRoomID {
		t.Fatalf("casual rooms: %s %s %s", a.ID, b.ID, c.ID)
	}
	if n := len(g.Rooms()); n != 1 {
		t.Fatalf("%d rooms, want 1", n)
	}
	j, ok := lastOf[protocol.Joined](out, "b")
	if !ok || j.RoomID != casualRoomID || j.Mode != protocol.ModeCasual {
		t.Fatalf("joined = %+v, %v", j, ok)
	}
}

func TestBattleRoyaleRoomFillsThenSplits(t *testing.T) {
	g, _ := newTestRegistry(testConfig())
	var first *Room
	for _, id := range []string{"a", "b", "c", "d"} {
		r := g.Join(id, joinReq(id, protocol.ModeBattleRoyale), t0)
		if first == nil {
			first = r
		}
		if r != first {
			t.Fatalf("%s joined %s, want %s", id, r.ID, first.ID)
		}
	}
	if first.ID != "br-1" {
		t.Fatalf("first battle-royale room = %s", first.ID)
	}

	g.Tick(t0.Add(50 * time.Millisecond))
	if first.Waiting() {
		t.Fatalf("full room still waiting")
	}

	r := g.Join("e", joinReq("e", protocol.ModeBattleRoyale), t0)
	if r == first || r.ID != "br-2" || !r.Waiting() {
		t.Fatalf("late joiner went to %s (waiting=%v)", r.ID, r.Waiting())
	}
}

func TestInputBeforeJoinIgnored(t *testing.T) {
	g, out := newTestRegistry(testConfig())
	g.Input("ghost", protocol.InputRequest{VX: 1, HasT: true, T: 1}, t0)
	if len(out.to("ghost")) != 0 {
		t.Fatalf("ghost got %v", out.to("ghost"))
	}
	if _, ok := g.RoomOf("ghost"); ok {
		t.Fatalf("ghost has a room")
	}
}

func TestInputReachesRoom(t *testing.T) {
	g, _ := newTestRegistry(testConfig())
	r := g.Join("a", joinReq("a", ""), t0)

	g.Input("a", protocol.InputRequest{VX: 1}, t0.Add(time.Second))

	s, _ := r.player("a")
	if s.Vel.X <= 0 || !s.LastInputAt.Equal(t0.Add(time.Second)) {
		t.Fatalf("input not applied: %+v", s)
	}
}

func TestDisconnect(t *testing.T) {
	g, _ := newTestRegistry(testConfig())
	r := g.Join("a", joinReq("a", ""), t0)

	g.Disconnect("a")
	g.Disconnect("a")

	if r.Has("a") {
		t.Fatalf("session still in room")
	}
	if _, ok := g.RoomOf("a"); ok {
		t.Fatalf("session still indexed")
	}
}

func TestRejoinMovesSession(t *testing.T) {
	g, _ := newTestRegistry(testConfig())
	casual := g.Join("a", joinReq("a", ""), t0)
	br := g.Join("a", joinReq("a", protocol.ModeBattleRoyale), t0)

	if casual.Has("a") {
		t.Fatalf("session left behind in casual room")
	}
	if !br.Has("a") {
		t.Fatalf("session missing from new room")
	}
	if r, _ := g.RoomOf("a"); r != br {
		t.Fatalf("index points at %s", r.ID)
	}
}

func TestTickDropsEvictedFromIndex(t *testing.T) {
	g, out := newTestRegistry(testConfig())
	g.Join("a", joinReq("a", ""), t0)
	g.Join("b", joinReq("b", ""), t0)
	g.Input("b", protocol.InputRequest{}, t0.Add(10*time.Second))

	g.Tick(t0.Add(18 * time.Second))

	if _, ok := g.RoomOf("a"); ok {
		t.Fatalf("idle session still indexed")
	}
	if _, ok := g.RoomOf("b"); !ok {
		t.Fatalf("active session dropped")
	}
	if k, _ := lastOf[protocol.Kicked](out, "a"); k.Reason != protocol.KickAFK {
		t.Fatalf("kicked = %+v", k)
	}

	// a later input from the evicted session goes nowhere
	out.reset()
	g.Input("a", protocol.InputRequest{HasT: true}, t0.Add(19*time.Second))
	if len(out.to("a")) != 0 {
		t.Fatalf("evicted session got %v", out.to("a"))
	}
}

func TestRoomSeedDrivesPelletLayout(t *testing.T) {
	g1, _ := newTestRegistry(testConfig())
	g2, _ := newTestRegistry(testConfig())
	g1.newSeed = func() string { return "fixed" }
	g2.newSeed = func() string { return "fixed" }

	r1 := g1.assign(protocol.ModeCasual, t0)
	r2 := g2.assign(protocol.ModeCasual, t0)

	if r1.Seed != "fixed" {
		t.Fatalf("seed = %q", r1.Seed)
	}
	for i := range r1.pellets.items {
		if r1.pellets.items[i] != r2.pellets.items[i] {
			t.Fatalf("pellet %d differs", i)
		}
	}
}

func TestStats(t *testing.T) {
	g, _ := newTestRegistry(testConfig())
	g.Join("a", joinReq("a", ""), t0)
	g.Join("b", joinReq("b", ""), t0)
	g.Join("c", joinReq("c", protocol.ModeBattleRoyale), t0)

	st := g.Stats()

	if st.Rooms != 2 || st.Sessions != 3 {
		t.Fatalf("stats = %+v", st)
	}
	if st.ByMode[protocol.ModeCasual] != 2 || st.ByMode[protocol.ModeBattleRoyale] != 1 {
		t.Fatalf("by mode = %v", st.ByMode)
	}
}

func TestConcurrentEventsDuringTick(t *testing.T) {
	cfg := testConfig()
	g, _ := newTestRegistry(cfg)

	stop := make(chan struct{})
	ticker := sync.WaitGroup{}
	ticker.Add(1)
	go func() {
		defer ticker.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			g.Tick(t0.Add(time.Duration(i) * 50 * time.Millisecond))
			g.Stats()
		}
	}()

	var clients sync.WaitGroup
	for w := 0; w < 8; w++ {
		w := w
		clients.Add(1)
		go func() {
			defer clients.Done()
			mode := protocol.ModeCasual
			if w%2 == 1 {
				mode = protocol.ModeBattleRoyale
			}
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("w%d-%d", w, i%5)
				now := t0.Add(time.Duration(i) * time.Millisecond)
				switch i % 4 {
				case 0, 1:
					g.Join(id, joinReq(id, mode), now)
				case 2:
					g.Input(id, protocol.InputRequest{VX: 1, VY: -1, HasT: true, T: float64(i)}, now)
				case 3:
					g.Disconnect(id)
				}
			}
		}()
	}
	clients.Wait()
	close(stop)
	ticker.Wait()

	g.Tick(t0.Add(time.Hour))
	for _, r := range g.Rooms() {
		if got := r.pelletCount(); got != cfg.Pellets.Count {
			t.Fatalf("room %s has %d pellets, want %d", r.ID, got, cfg.Pellets.Count)
		}
	}
	// every indexed session must actually be in the room it points at
	for w := 0; w < 8; w++ {
		for i := 0; i < 5; i++ {
			id := fmt.Sprintf("w%d-%d", w, i)
			if r, ok := g.RoomOf(id); ok && !r.Has(id) {
				t.Fatalf("%s indexed to %s but not present", id, r.ID)
			}
		}
	}
}
