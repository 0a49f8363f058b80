// Package router assembles the gin engine: middleware chain, public
// storefront routes, authenticated customer routes and the back office.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Config carries the transport-level settings for the engine
type Config struct {
	CORS            middleware.CORSConfig
	Tracing         middleware.TracingConfig
	MaxBodyBytes    int64
	ResendPerMinute int
	MetricsEnabled  bool
	MeterProvider   *telemetry.MeterProvider
}

// DefaultConfig returns conservative transport defaults
func DefaultConfig() Config {
	return Config{
		CORS:            middleware.DefaultCORSConfig(),
		Tracing:         middleware.DefaultTracingConfig(),
		MaxBodyBytes:    1 << 20, // 1 MiB
		ResendPerMinute: 3,
	}
}

// Handlers groups every HTTP handler the engine mounts
type Handlers struct {
	System   *handler.SystemHandler
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Payment  *handler.PaymentHandler
}

// Dependencies carries the collaborators the middleware chain needs
type Dependencies struct {
	JWTService *auth.JWTService
	Blacklist  auth.TokenBlacklist
	Logger     *zap.Logger
}

// New builds the fully wired gin engine
func New(cfg Config, deps Dependencies, handlers Handlers) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: cfg.MeterProvider,
		ServiceName:   cfg.Tracing.ServiceName,
		Enabled:       cfg.MetricsEnabled,
	}))
	engine.Use(logger.GinMiddleware(deps.Logger))

	requireAuth := middleware.RequireAuth(deps.JWTService, deps.Blacklist, deps.Logger)
	requireAdmin := middleware.RequireAdmin(deps.JWTService, deps.Blacklist, deps.Logger)

	engine.GET("/health", handlers.System.Health)
	engine.GET("/ping", handlers.System.Ping)

	api := engine.Group("/api/v1")

	registerPublicRoutes(api, cfg, handlers)
	registerUserRoutes(api, requireAuth, handlers)
	registerAdminRoutes(api, requireAdmin, handlers)

	return engine
}

func registerPublicRoutes(api *gin.RouterGroup, cfg Config, h Handlers) {
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/admin/login", h.Auth.AdminLogin)
	authGroup.POST("/verify-otp", h.Auth.VerifyOTP)
	authGroup.GET("/verify-email", h.Auth.VerifyEmailLink)

	// Resends are throttled per client address on top of the OTP
	// attempt counter.
	resendLimiter := middleware.NewRateLimiter(cfg.ResendPerMinute, time.Minute)
	authGroup.POST("/resend-verification",
		middleware.RateLimitByKey(resendLimiter, func(c *gin.Context) string {
			return c.ClientIP()
		}),
		h.Auth.ResendVerification)

	catalogGroup := api.Group("/catalog")
	catalogGroup.GET("/products", h.Product.List)
	catalogGroup.GET("/products/featured", h.Product.Featured)
	catalogGroup.GET("/products/:id", h.Product.Get)
	catalogGroup.GET("/products/:id/image", h.Product.ImageURL)
	catalogGroup.GET("/categories", h.Category.List)
	catalogGroup.GET("/categories/:id", h.Category.Get)

	// No session context; authenticity comes from the vendor signature
	// header over the raw body.
	api.POST("/payments/webhook", h.Payment.Webhook)
}

func registerUserRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, h Handlers) {
	user := api.Group("")
	user.Use(requireAuth)

	user.POST("/auth/logout", h.Auth.Logout)
	user.GET("/profile", h.Auth.GetProfile)
	user.PUT("/profile", h.Auth.UpdateProfile)
	user.POST("/profile/change-password", h.Auth.ChangePassword)

	user.GET("/cart", h.Cart.View)
	user.GET("/cart/count", h.Cart.Count)
	user.POST("/cart/items", h.Cart.Add)
	user.PUT("/cart/items/:id", h.Cart.Update)
	user.DELETE("/cart/items/:id", h.Cart.Remove)
	user.DELETE("/cart", h.Cart.Clear)

	user.GET("/checkout/quote", h.Order.Quote)
	user.POST("/checkout", h.Order.PlaceOrder)
	user.GET("/orders", h.Order.List)
	user.GET("/orders/:id", h.Order.Get)

	user.POST("/orders/:id/payment/initiate", h.Payment.Initiate)
	user.GET("/orders/:id/payment/status", h.Payment.Status)
	user.POST("/payments/verify", h.Payment.Verify)
	user.POST("/payments/failed", h.Payment.MarkFailed)
}

func registerAdminRoutes(api *gin.RouterGroup, requireAdmin gin.HandlerFunc, h Handlers) {
	admin := api.Group("/admin")
	admin.Use(requireAdmin)

	admin.GET("/users", h.Auth.ListUsers)

	admin.GET("/orders", h.Order.AdminList)
	admin.GET("/orders/:id", h.Order.Get)
	admin.PUT("/orders/:id/status", h.Order.UpdateStatus)

	admin.GET("/products", h.Product.AdminList)
	admin.GET("/products/low-stock", h.Product.LowStock)
	admin.POST("/products", h.Product.Create)
	admin.PUT("/products/:id", h.Product.Update)
	admin.PUT("/products/:id/stock", h.Product.SetStock)
	admin.POST("/products/:id/image", h.Product.InitiateImageUpload)
	admin.PUT("/products/:id/image", h.Product.ConfirmImageUpload)
	admin.DELETE("/products/:id/image", h.Product.RemoveImage)
	admin.DELETE("/products/:id", h.Product.Delete)

	admin.POST("/categories", h.Category.Create)
	admin.PUT("/categories/:id", h.Category.Update)
	admin.DELETE("/categories/:id", h.Category.Delete)
}
