package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"courier-dispatch/internal/core/auth"
	"courier-dispatch/internal/core/cache"
	"courier-dispatch/internal/core/config"
	"courier-dispatch/internal/core/docstore"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/core/server"
	"courier-dispatch/internal/features/dispatch/adapters"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/handler"
	"courier-dispatch/internal/features/dispatch/ports"
	"courier-dispatch/internal/features/dispatch/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title Courier Dispatch API
// @version 1.0
// @description Shipment pricing, courier dispatch and delivery lifecycle.
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	store, err := docstore.NewRedisStore(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer store.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = store.Ping(pingCtx)
	cancelPing()
	if err != nil {
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	repo := adapters.NewRedisShipmentRepository(store)

	// An unset primary leaves the fallback estimating every route.
	var primary ports.RoutingService
	if cfg.Routing.URL != "" {
		geocodes, err := cache.NewRedisCache(cfg.Redis.URL, "geocode")
		if err != nil {
			l.Fatal("Failed to create geocode cache", zap.Error(err))
		}
		defer geocodes.Close()

		primary = adapters.NewCachedGeocoder(
			adapters.NewHTTPRoutingAdapter(cfg.Routing.URL, cfg.Routing.Timeout()),
			geocodes,
			cfg.Routing.GeocodeCacheTTL(),
		)
	} else {
		l.Warn("ROUTING_URL not set, routes will be estimated")
	}
	routing := adapters.NewFallbackRouter(primary)

	var events ports.EventPublisher = adapters.NopEventPublisher{}
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		events = adapters.NewKafkaEventPublisher(brokers, cfg.Kafka.Topic)
		l.Info("Publishing lifecycle events", zap.Strings("brokers", brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	defer func() {
		if err := events.Close(); err != nil {
			l.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()

	machine := service.NewStateMachine(repo, routing, events, service.Settings{
		Pricing: domain.PricingRules{
			MinPrice:         cfg.Pricing.MinPrice,
			MinDistanceKm:    cfg.Pricing.MinDistanceKm,
			PerKm:            cfg.Pricing.PerKm,
			HeavyKg:          cfg.Pricing.HeavyKg,
			HeavySurcharge:   cfg.Pricing.HeavySurcharge,
			FragileSurcharge: cfg.Pricing.FragileSurcharge,
			Currency:         cfg.Pricing.Currency,
		},
		GeofenceMeters:      cfg.Dispatch.GeofenceMeters,
		EscalationThreshold: cfg.Dispatch.EscalationThreshold,
	})
	negotiator := service.NewNegotiator(repo, events, cfg.Dispatch.OfferTTL())
	windows := service.NewWindowController(machine, cfg.Dispatch.Window())

	throttler := domain.NewThrottler(cfg.Dispatch.MaxNotifications, cfg.Dispatch.NotifyInterval())
	notifications := service.NewNotificationService(repo, repo, adapters.NewRedisNotifier(store), throttler)
	sweeper := service.NewDispatchSweeper(repo, repo, notifications, throttler, cfg.Dispatch.SweepInterval())

	dispatcher := service.NewDispatcher(machine, negotiator, windows, notifications)
	dispatchHdl := handler.NewDispatchHandler(dispatcher)

	srv := server.New(cfg, store)

	// Register Routes
	api := srv.App.Group("/", auth.Middleware(auth.NewTokens(cfg.Auth.JWTSecret, string(domain.RoleClient), string(domain.RoleCourier))))
	dispatchHdl.RegisterRoutes(api)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sweeper.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(srv.Run)

	g.Go(func() error {
		<-gctx.Done()
		l.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		windows.CloseAll(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Error("Server stopped with error", zap.Error(err))
	}
}
