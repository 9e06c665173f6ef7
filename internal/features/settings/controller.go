package settings

import (
	"errors"

	"wa-assist/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SettingsController struct {
	Service SettingsService
}

func NewSettingsController(service SettingsService) *SettingsController {
	return &SettingsController{
		Service: service,
	}
}

// GetGatewayConfig godoc
// @Summary Get gateway configuration
// @Description Get the workspace's WhatsApp gateway credentials
// @Tags settings
// @Produce json
// @Success 200 {object} GatewayConfig
// @Failure 500 {object} map[string]interface{}
// @Router /api/settings/gateway [get]
func (c *SettingsController) GetGatewayConfig(ctx *fiber.Ctx) error {
	config, err := c.Service.GetGatewayConfig(ctx.UserContext(), middleware.TenantID(ctx))
	if err != nil {
		if errors.Is(err, ErrGatewayNotConfigured) {
			return ctx.JSON(fiber.Map{})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(config)
}

// UpdateGatewayConfig godoc
// @Summary Update gateway configuration
// @Description Update the workspace's WhatsApp gateway credentials
// @Tags settings
// @Accept json
// @Produce json
// @Param config body GatewayConfig true "Gateway Configuration"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/settings/gateway [put]
func (c *SettingsController) UpdateGatewayConfig(ctx *fiber.Ctx) error {
	var config GatewayConfig
	if err := ctx.BodyParser(&config); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateGatewayConfig(ctx.UserContext(), middleware.TenantID(ctx), config); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "Settings updated successfully"})
}
