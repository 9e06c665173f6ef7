package system

import (
	"wa-assist/internal/common/api"
	"wa-assist/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	Controller *WebSocketController
}

func NewWebSocketApi(controller *WebSocketController) api.Route {
	return &WebSocketApi{
		Controller: controller,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	// Browsers cannot set Authorization headers on websocket upgrades, so
	// the token rides in the query string.
	app.Use("/ws/deliveries", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		claims, err := utils.ValidateToken(c.Query("token"))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals("tenant_id", claims.TenantID)
		return c.Next()
	})

	app.Get("/ws/deliveries", websocket.New(h.Controller.HandleDeliveryFeed))
}
