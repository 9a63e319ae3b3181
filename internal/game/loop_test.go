package game

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/er1ck02/blobbet-server/internal/protocol"
)

func TestLoopRunsUntilCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.World.TickInterval = 5 * time.Millisecond
	g, out := newTestRegistry(cfg)
	g.Join("a", joinReq("a", ""), time.Now())
	loop := NewLoop(g, cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for countOf[protocol.State](out, "a") < 3 {
		select {
		case <-deadline:
			t.Fatalf("loop produced %d states", countOf[protocol.State](out, "a"))
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("loop did not stop")
	}
}

func TestLoopLogsOverrunAndStatus(t *testing.T) {
	cfg := testConfig()
	cfg.World.StatusLogEvery = time.Minute
	g, _ := newTestRegistry(cfg)
	g.Join("a", joinReq("a", ""), t0)

	core, logs := observer.New(zapcore.DebugLevel)
	loop := NewLoop(g, cfg, zap.New(core))

	// first call is the tick start, second the end
	calls := []time.Time{t0, t0.Add(200 * time.Millisecond), t0.Add(time.Second), t0.Add(time.Second)}
	loop.now = func() time.Time {
		now := calls[0]
		calls = calls[1:]
		return now
	}

	loop.tick()
	loop.tick()

	if n := logs.FilterMessage("tick overran interval").Len(); n != 1 {
		t.Fatalf("overrun warnings = %d, want 1", n)
	}
	status := logs.FilterMessage("status").All()
	if len(status) != 1 {
		t.Fatalf("status lines = %d, want 1", len(status))
	}
	if got := status[0].ContextMap()["sessions"]; got != int64(1) {
		t.Fatalf("sessions field = %v", got)
	}
}
