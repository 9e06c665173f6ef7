package main

import (
	"context"
	"fmt"
	"log"
	common_api "wa-assist/internal/common/api"
	"wa-assist/internal/config"
	"wa-assist/internal/connectors"
	"wa-assist/internal/database"
	"wa-assist/internal/features/action"
	"wa-assist/internal/features/auth"
	"wa-assist/internal/features/chat"
	"wa-assist/internal/features/settings"
	"wa-assist/internal/features/system"
	"wa-assist/internal/features/user"
	"wa-assist/internal/logger"
	"wa-assist/internal/middleware"
	"wa-assist/pkg/utils"

	_ "wa-assist/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Use custom CORS middleware
	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for i, route := range routes {
		log.Printf("Setting up route %d: %T\n", i+1, route)
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// @title           WA-Assist Dispatch API
// @version         1.0
// @description     Business-event action dispatch engine for the WhatsApp assistant dashboard.

// @contact.name    API Support

// @host            localhost:8000
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			user.NewUserRepository,
			settings.NewSettingsRepository,
			action.NewActionRepository,
			action.NewDeliveryLogRepository,

			// Initialize Service
			auth.NewAuthService,
			settings.NewSettingsService,
			chat.NewClient,
			action.NewMatcher,
			action.NewDispatcher,
			action.NewActionService,

			// Delivery sinks
			system.NewDeliveryHub,
			connectors.NewArchiver,
			func(h *system.DeliveryHub) action.DeliveryFeed { return h },

			// Initialize Controller
			auth.NewAuthController,
			settings.NewSettingsController,
			action.NewActionController,
			system.NewDebugController,
			system.NewWebSocketController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(settings.NewSettingsApi),
			AsRoute(action.NewActionApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewDebugApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) {
				utils.SetSecret(cfg.JWTSecret)
			},

			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			action.RegisterRetentionJob,
		),
	)

	app.Run()
}
