package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/er1ck02/blobbet-server/internal/config"
	"github.com/er1ck02/blobbet-server/internal/game"
	"github.com/er1ck02/blobbet-server/internal/protocol"
)

// Game is the simulation surface the transport drives. *game.Registry
// implements it.
type Game interface {
	Join(sessionID string, req protocol.JoinRequest, now time.Time) *game.Room
	Input(sessionID string, req protocol.InputRequest, now time.Time)
	Disconnect(sessionID string)
}

// Handler upgrades HTTP requests to game connections
type Handler struct {
	game     Game
	conns    *ConnManager
	limiter  *ipRateLimiter
	upgrader websocket.Upgrader
	server   config.ServerConfig
	world    config.WorldConfig
	log      *zap.Logger
	now      func() time.Time
}

// NewHandler creates the WebSocket endpoint. Outbound game messages reach
// clients through conns, which must be the registry's outbox.
func NewHandler(g Game, conns *ConnManager, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		game:    g,
		conns:   conns,
		limiter: newIPRateLimiter(cfg.Server.IPCooldown),
		upgrader: websocket.Upgrader{
			// Any origin may connect; the client is served from anywhere
			CheckOrigin:       func(r *http.Request) bool { return true },
			ReadBufferSize:    1024,
			WriteBufferSize:   4096,
			EnableCompression: true,
		},
		server: cfg.Server,
		world:  cfg.World,
		log:    log,
		now:    time.Now,
	}
}

// sendErrorAndClose writes an error frame directly and closes the socket
func sendErrorAndClose(ws *websocket.Conn, codec protocol.Codec, msg string) {
	data, err := codec.Encode(protocol.Error{Type: protocol.TypeError, Message: msg})
	if err == nil {
		frame := websocket.TextMessage
		if codec.Binary() {
			frame = websocket.BinaryMessage
		}
		_ = ws.WriteMessage(frame, data)
	}
	ws.Close()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	codec := protocol.CodecByName(r.URL.Query().Get("codec"))

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.String("ip", ip), zap.Error(err))
		return
	}

	// Limits are checked after the upgrade so the client can read the reason
	if h.conns.Count() >= h.server.MaxConnections {
		h.log.Info("rejected: server full", zap.String("ip", ip))
		sendErrorAndClose(ws, codec, "Server full. Please try again later.")
		return
	}
	if !h.limiter.allow(ip, h.now()) {
		h.log.Info("rejected: rate limited", zap.String("ip", ip))
		sendErrorAndClose(ws, codec, "Too many connections. Please wait a moment.")
		return
	}

	ws.EnableWriteCompression(true)

	conn := NewConn(ws, codec, h.server.SendQueueSize, h.server.WriteTimeout, h.server.ReadTimeout, h.log)
	h.conns.Add(conn)
	conn.log.Info("connected", zap.String("ip", ip))

	_ = conn.Send(protocol.Welcome{
		Type:   protocol.TypeWelcome,
		ID:     conn.ID,
		World:  protocol.WorldSize{W: h.world.Width, H: h.world.Height},
		TickMS: h.world.TickInterval.Milliseconds(),
	})

	defer func() {
		h.game.Disconnect(conn.ID)
		h.conns.Remove(conn.ID)
		conn.Close()
		conn.log.Info("disconnected", zap.Uint64("dropped", conn.Dropped()))
	}()

	// Blocking read loop, runs until the client goes away
	conn.ReadLoop(func(in protocol.Inbound) {
		switch in.Type {
		case protocol.TypeJoin:
			h.game.Join(conn.ID, in.Join, h.now())
		case protocol.TypeInput:
			h.game.Input(conn.ID, in.Input, h.now())
		}
	})
}
