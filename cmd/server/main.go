// @title                      FreshCart Marketplace API
// @version                    1.0
// @description                Multi-vendor grocery marketplace with vendor trust scores.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/freshcart/marketplace/docs"
	"github.com/freshcart/marketplace/internal/api"
	"github.com/freshcart/marketplace/internal/api/handler"
	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/core/service"
	"github.com/freshcart/marketplace/internal/infrastructure/config"
	mongodb "github.com/freshcart/marketplace/internal/infrastructure/db/mongo"
	redisdb "github.com/freshcart/marketplace/internal/infrastructure/db/redis"
	"github.com/freshcart/marketplace/internal/infrastructure/events"
	"github.com/freshcart/marketplace/internal/infrastructure/queue"
	"github.com/freshcart/marketplace/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "marketplace"})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "marketplace",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("disconnect mongo")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	accounts := mongodb.NewAccountRepository(db)
	products := mongodb.NewProductRepository(db)
	orders := mongodb.NewOrderRepository(db)
	reviews := mongodb.NewReviewRepository(db)
	securityLog := mongodb.NewSecurityLogRepository(db)

	if err := mongodb.EnsureIndexes(ctx, accounts, products, orders, reviews, securityLog); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	carts := redisdb.NewCartStore(rdb, cfg.Redis.CartTTL)
	throttle := redisdb.NewLoginThrottle(rdb)

	// --- Trust pipeline ---
	serializer := queue.NewVendorSerializer(cfg.Trust.Workers, logger.Component("trust-serializer"))
	serializerCtx, stopSerializer := context.WithCancel(context.Background())
	defer stopSerializer()
	serializer.Start(serializerCtx)

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("close event publisher")
		}
	}()

	// --- Services ---
	trustSvc := service.NewTrustService(service.TrustDeps{
		Accounts:   accounts,
		Reviews:    reviews,
		Orders:     orders,
		Products:   products,
		Audit:      securityLog,
		Publisher:  publisher,
		Serializer: serializer,
	}, cfg.Trust.MaxRetries, logger.Component("trust"))

	authSvc := service.NewAuthService(accounts, securityLog, throttle, service.AuthOptions{
		JWTSecret:        cfg.Auth.JWTSecret,
		TokenTTL:         cfg.Auth.TokenTTL,
		AdminSignupCode:  cfg.Auth.AdminSignupCode,
		MaxLoginFailures: cfg.Auth.MaxLoginFailures,
		FailureWindow:    cfg.Auth.FailureWindow,
	}, logger.Component("auth"))

	e := api.NewRouter(api.Services{
		Auth:     authSvc,
		Trust:    trustSvc,
		Products: service.NewProductService(products, accounts, logger.Component("catalog")),
		Carts:    service.NewCartService(carts, products, logger.Component("cart")),
		Orders:   service.NewOrderService(orders, accounts, carts, logger.Component("orders")),
		Admin:    service.NewAdminService(accounts, orders, securityLog, logger.Component("admin")),
	}, api.RouterConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		Health: map[string]handler.Pinger{
			"mongodb": mongodb.NewPinger(mongoClient),
			"redis":   redisdb.NewPinger(rdb),
		},
		DisableSwagger: cfg.IsProduction(),
	}, logger.Component("http"))

	// --- Serve ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	// In-flight requests are drained, so no trust job can still be queued.
	stopSerializer()
}

type closablePublisher interface {
	ports.EventPublisher
	io.Closer
}

func newPublisher(cfg *config.Config) closablePublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		l := logger.Get()
		l.Info().Msg("no kafka brokers configured, trust events disabled")
		return events.NewNoopPublisher(logger.Component("events"))
	}
	return events.NewKafkaPublisher(events.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, logger.Component("events"))
}
