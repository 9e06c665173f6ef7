package settings

import (
	"wa-assist/internal/common/api"
	"wa-assist/internal/config"
	"wa-assist/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SettingsApi struct {
	Controller *SettingsController
	Config     *config.Config
}

func NewSettingsApi(controller *SettingsController, config *config.Config) api.Route {
	return &SettingsApi{
		Controller: controller,
		Config:     config,
	}
}

func (a *SettingsApi) Setup(app *fiber.App) {
	group := app.Group("/api/settings", middleware.AuthMiddleware(a.Config.SkipAuth))

	group.Get("/gateway", a.Controller.GetGatewayConfig)
	group.Put("/gateway", a.Controller.UpdateGatewayConfig)
}
