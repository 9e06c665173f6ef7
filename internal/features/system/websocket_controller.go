package system

import (
	"github.com/gofiber/contrib/websocket"
)

type WebSocketController struct {
	hub *DeliveryHub
}

func NewWebSocketController(hub *DeliveryHub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// HandleDeliveryFeed keeps the socket registered for its tenant until the
// client goes away. The read loop only exists to detect disconnects; the
// feed is one-way.
func (h *WebSocketController) HandleDeliveryFeed(c *websocket.Conn) {
	tenantID, _ := c.Locals("tenant_id").(string)
	if tenantID == "" {
		c.Close()
		return
	}

	h.hub.Register(c, tenantID)
	defer h.hub.Unregister(c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
