package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/freshcart/marketplace/internal/api/handler"
	"github.com/freshcart/marketplace/internal/api/middleware"
	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
)

const metricsSubsystem = "http"

// Services groups everything the HTTP layer calls into.
type Services struct {
	Auth     ports.AuthService
	Trust    ports.TrustService
	Products ports.ProductService
	Carts    ports.CartService
	Orders   ports.OrderService
	Admin    ports.AdminService
}

// RouterConfig carries the non-service inputs of NewRouter.
type RouterConfig struct {
	JWTSecret string
	// Health lists the dependencies pinged by /health/ready, keyed by name.
	Health map[string]handler.Pinger
	// DisableSwagger hides /swagger/* in production.
	DisableSwagger bool
	// Registry receives the HTTP metrics; nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, cfg RouterConfig, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsConfig(cfg.Registry)))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth, svc.Trust)
	trustHandler := handler.NewTrustHandler(svc.Trust)
	productHandler := handler.NewProductHandler(svc.Products)
	cartHandler := handler.NewCartHandler(svc.Carts)
	orderHandler := handler.NewOrderHandler(svc.Orders)
	adminHandler := handler.NewAdminHandler(svc.Admin)
	healthHandler := handler.NewHealthHandler(cfg.Health)

	authenticated := middleware.Auth(cfg.JWTSecret, svc.Auth)
	customerOnly := middleware.Authorize(domain.ActionPlaceOrders)
	reviewer := middleware.Authorize(domain.ActionSubmitReview)
	vendorOnly := middleware.Authorize(domain.ActionManageOwnProducts)
	adminOnly := middleware.Authorize(domain.ActionManageUsers)
	trustAdmin := middleware.Authorize(domain.ActionManageTrust)
	orderManager := middleware.AuthorizeAny(domain.ActionManageOrders, domain.ActionManageOwnProducts)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Public catalog ---
	pub := e.Group("/v1")
	pub.GET("/products", productHandler.List)
	pub.GET("/products/:slug", productHandler.Get)
	pub.GET("/vendors/:id/reviews", trustHandler.VendorReviews)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", authenticated)
	v1.GET("/me", authHandler.Me)
	v1.GET("/accounts/:id/trust", trustHandler.AccountTrust)

	v1.GET("/cart", cartHandler.Get, customerOnly)
	v1.DELETE("/cart", cartHandler.Clear, customerOnly)
	v1.POST("/cart/items", cartHandler.AddItem, customerOnly)
	v1.PUT("/cart/items/:product_id", cartHandler.UpdateItem, customerOnly)
	v1.DELETE("/cart/items/:product_id", cartHandler.RemoveItem, customerOnly)

	v1.GET("/checkout/preview", orderHandler.Preview, customerOnly)
	v1.POST("/checkout", orderHandler.Checkout, customerOnly)

	v1.GET("/orders", orderHandler.List)
	v1.GET("/orders/:id", orderHandler.Get)
	v1.POST("/orders/:id/review", trustHandler.SubmitReview, reviewer)
	v1.PATCH("/orders/:id/status", orderHandler.UpdateStatus, orderManager)

	vendor := v1.Group("/vendor", vendorOnly)
	vendor.GET("/products", productHandler.VendorList)
	vendor.POST("/products", productHandler.Create)
	vendor.GET("/orders", orderHandler.List)

	admin := v1.Group("/admin", adminOnly)
	admin.GET("/vendors", adminHandler.ListVendors)
	admin.POST("/vendors/:id/trust", trustHandler.AdjustVendorTrust, trustAdmin)
	admin.GET("/orders", orderHandler.List)
	admin.GET("/stats", adminHandler.Stats)
	admin.PATCH("/accounts/:id/status", adminHandler.SetAccountStatus)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", metricsHandler(cfg.Registry))
	if !cfg.DisableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

func metricsConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: metricsSubsystem}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/health" || p == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
