package transport

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ConnManager tracks live connections by session id and is the game's
// outbox: Unicast only ever enqueues.
type ConnManager struct {
	mu    sync.RWMutex
	conns map[string]*Conn
	log   *zap.Logger
}

// NewConnManager creates an empty connection manager
func NewConnManager(log *zap.Logger) *ConnManager {
	return &ConnManager{conns: make(map[string]*Conn), log: log}
}

// Add registers a connection
func (m *ConnManager) Add(c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c.ID] = c
}

// Remove unregisters a connection
func (m *ConnManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, id)
}

// Get returns a connection by id
func (m *ConnManager) Get(id string) (*Conn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conns[id]
	return c, ok
}

// Count returns the number of live connections
func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Unicast queues msg for one session. Unknown sessions are ignored and a full
// queue drops the message.
func (m *ConnManager) Unicast(sessionID string, msg any) {
	c, ok := m.Get(sessionID)
	if !ok {
		return
	}
	switch err := c.Send(msg); {
	case err == nil, errors.Is(err, ErrClosed):
	case errors.Is(err, ErrQueueFull):
		m.log.Debug("dropped message", zap.String("session", sessionID), zap.Uint64("dropped", c.Dropped()))
	default:
		m.log.Error("encode failed", zap.String("session", sessionID), zap.Error(err))
	}
}

// CloseAll closes every live connection. Used on shutdown.
func (m *ConnManager) CloseAll() {
	m.mu.RLock()
	list := make([]*Conn, 0, len(m.conns))
	for _, c := range m.conns {
		list = append(list, c)
	}
	m.mu.RUnlock()
	for _, c := range list {
		c.Close()
	}
}
