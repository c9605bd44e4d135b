package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/tripbook/internal/config"
	"github.com/example/tripbook/internal/handlers"
	"github.com/example/tripbook/internal/metrics"
	"github.com/example/tripbook/internal/middleware"
	"github.com/example/tripbook/internal/repository"
	"github.com/example/tripbook/internal/services"
	"github.com/example/tripbook/internal/utils"
)

// Deps carries what the HTTP layer is built from. Hasher and SMS are
// optional and default to bcrypt and the logging sender.
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Hasher  services.PasswordHasher
	SMS     services.SMSSender
}

// NewApp builds the fiber application with middleware and routes.
func NewApp(ctx context.Context, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "tripbook",
		ErrorHandler: middleware.ErrorHandler(deps.Log),
	})

	app.Use(recover.New())
	if !deps.Config.IsProduction() {
		app.Use(logger.New())
	}

	Register(ctx, app, deps)
	return app
}

// Register wires up all HTTP routes.
func Register(ctx context.Context, app *fiber.App, deps Deps) {
	cfg := deps.Config
	log := deps.Log

	hasher := deps.Hasher
	if hasher == nil {
		hasher = utils.NewPasswordHasher()
	}
	sms := deps.SMS
	if sms == nil {
		sms = services.NewLogSMSSender(log)
	}

	userRepo := repository.NewUserRepository(deps.DB)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenExpires)
	verification := services.NewVerificationService(repository.NewVerificationRepository(deps.DB), sms, deps.Metrics, log, cfg.VerificationFixedCode)
	userService := services.NewUserService(userRepo, hasher, tokens, log, cfg.AuthLegacyFallback)
	authService := services.NewAuthService(services.AuthDeps{
		Users:         userRepo,
		Registrations: repository.NewRegistrationRepository(deps.DB),
		Tx:            repository.NewTransactor(deps.DB),
		Verification:  verification,
		UserService:   userService,
		Hasher:        hasher,
		Tokens:        tokens,
		Metrics:       deps.Metrics,
		Log:           log,
	})
	orderService := services.NewOrderService(repository.NewOrderRepository(deps.DB), deps.Metrics, log)

	if cfg.AuthLegacyFallback {
		log.Warn("legacy identity fallback enabled: requests without a token resolve to a stored user")
	}

	healthHandler := handlers.NewHealthHandler(deps.DB)
	authHandler := handlers.NewAuthHandler(authService, verification)
	userHandler := handlers.NewUserHandler(authService)
	orderHandler := handlers.NewOrderHandler(orderService)
	airportHandler := handlers.NewAirportHandler(services.NewAirportService())

	app.Get("/health", healthHandler.Health)
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	limiter := middleware.NewIPRateLimiter(ctx, cfg.RateLimitPerWindow, cfg.RateLimitWindow, deps.Metrics, log)
	api := app.Group("/api", limiter.Handler())
	requireUser := middleware.AuthMiddleware(userService, log)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/send-code", authHandler.SendCode)
	auth.Post("/phone-login", authHandler.PhoneLogin)

	// Registration and profile
	user := api.Group("/user")
	user.Post("/register-step1", userHandler.RegisterStep1)
	user.Post("/register-step2", userHandler.RegisterStep2)
	user.Get("/profile", requireUser, userHandler.GetProfile)
	user.Put("/password", requireUser, userHandler.ChangePassword)

	api.Get("/airports/suggest", airportHandler.Suggest)

	// Orders
	orders := api.Group("/orders", requireUser)
	orders.Get("/", orderHandler.ListOrders)
	orders.Post("/", orderHandler.PlaceOrder)
	orders.Get("/:orderId", orderHandler.GetOrder)
	orders.Post("/:orderId/cancel", orderHandler.CancelOrder)
	orders.Get("/:orderId/download", orderHandler.DownloadOrder)
}
