package action

import (
	"wa-assist/internal/common/api"
	"wa-assist/internal/config"
	"wa-assist/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ActionApi struct {
	controller *ActionController
	config     *config.Config
}

func NewActionApi(controller *ActionController, config *config.Config) api.Route {
	return &ActionApi{
		controller: controller,
		config:     config,
	}
}

func (h *ActionApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	actions := app.Group("/api/actions", auth)
	actions.Post("/", h.controller.CreateAction)
	actions.Get("/", h.controller.ListActions)
	actions.Post("/test", h.controller.SendTest)
	actions.Get("/:id", h.controller.GetAction)
	actions.Put("/:id", h.controller.UpdateAction)
	actions.Delete("/:id", h.controller.DeleteAction)
	actions.Get("/:id/deliveries", h.controller.ListActionDeliveries)

	deliveries := app.Group("/api/deliveries", auth)
	deliveries.Get("/", h.controller.ListDeliveries)
	deliveries.Get("/export", h.controller.ExportDeliveries)

	events := app.Group("/api/events", auth)
	events.Post("/publish", h.controller.PublishEvent)
}
