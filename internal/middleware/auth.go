package middleware

import (
	"context"

	common_models "wa-assist/internal/common/models"
	"wa-assist/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT tokens and injects operator claims plus the
// tenant scope into the request context.
func AuthMiddleware(skipAuth bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			// Inject dummy context for dev
			dummyClaims := &utils.UserClaims{
				UserID:   "dev-admin-id",
				TenantID: "000000000000000000000000",
			}
			return injectClaims(c, dummyClaims)
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// Extract token from "Bearer <token>"
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token := authHeader[7:]
		claims, err := utils.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		return injectClaims(c, claims)
	}
}

func injectClaims(c *fiber.Ctx, claims *utils.UserClaims) error {
	c.Locals(utils.UserClaimsKey, claims)
	c.Locals("tenant_id", claims.TenantID)

	ctx := context.WithValue(c.UserContext(), common_models.TenantIDKey, claims.TenantID)
	c.SetUserContext(ctx)
	return c.Next()
}

// TenantID returns the tenant scope injected by AuthMiddleware.
func TenantID(c *fiber.Ctx) string {
	id, _ := c.Locals("tenant_id").(string)
	return id
}
