package system

import (
	"encoding/json"
	"sync"

	"wa-assist/internal/features/action"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// DeliveryHub fans persisted delivery outcomes out to connected dashboard
// sockets, scoped per tenant.
type DeliveryHub struct {
	mu     sync.RWMutex
	conns  map[*websocket.Conn]string // conn -> tenant id
	logger *zap.Logger
}

func NewDeliveryHub(logger *zap.Logger) *DeliveryHub {
	return &DeliveryHub{
		conns:  make(map[*websocket.Conn]string),
		logger: logger,
	}
}

func (h *DeliveryHub) Register(conn *websocket.Conn, tenantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = tenantID
}

func (h *DeliveryHub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Broadcast implements action.DeliveryFeed. A slow or broken socket is
// dropped rather than blocking dispatch bookkeeping.
func (h *DeliveryHub) Broadcast(tenantID string, log action.DeliveryLog) {
	payload, err := json.Marshal(log)
	if err != nil {
		h.logger.Error("failed to marshal delivery for feed", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, tenant := range h.conns {
		if tenant != tenantID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}
