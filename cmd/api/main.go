package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/tillworks/tillpoint-backend/api/routes"
	"github.com/tillworks/tillpoint-backend/internal/auth"
	"github.com/tillworks/tillpoint-backend/internal/catalog"
	"github.com/tillworks/tillpoint-backend/internal/discount"
	"github.com/tillworks/tillpoint-backend/internal/inventory"
	"github.com/tillworks/tillpoint-backend/internal/returns"
	"github.com/tillworks/tillpoint-backend/internal/sale"
	"github.com/tillworks/tillpoint-backend/internal/shift"
	"github.com/tillworks/tillpoint-backend/internal/users"
	"github.com/tillworks/tillpoint-backend/pkg/auth/session"
	"github.com/tillworks/tillpoint-backend/pkg/config"
	"github.com/tillworks/tillpoint-backend/pkg/db"
	"github.com/tillworks/tillpoint-backend/pkg/logger"
	"github.com/tillworks/tillpoint-backend/pkg/metrics"
	"github.com/tillworks/tillpoint-backend/pkg/migrate"
	"github.com/tillworks/tillpoint-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	catalogRepo := catalog.NewRepository(gdb)
	inventoryRepo := inventory.NewRepository(gdb)
	ruleRepo := discount.NewRepository(gdb)
	checkRepo := sale.NewRepository(gdb)
	shiftRepo := shift.NewRepository(gdb)
	movementRepo := shift.NewMovementRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	saleService, err := sale.NewService(dbClient, checkRepo, shiftRepo, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create sale service", err)
		os.Exit(1)
	}

	checkoutService, err := sale.NewCheckoutService(catalogRepo, inventoryRepo, ruleRepo, saleService)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	returnsService, err := returns.NewService(dbClient, checkRepo, shiftRepo, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create returns service", err)
		os.Exit(1)
	}

	shiftService, err := shift.NewService(dbClient, shiftRepo, movementRepo, checkRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create shift service", err)
		os.Exit(1)
	}

	registerMetrics := metrics.NewRegisterMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DBPinger:        dbClient,
			RedisClient:     redisClient,
			SessionManager:  sessionManager,
			Metrics:         registerMetrics,
			AuthService:     authService,
			UserRepo:        userRepo,
			Catalog:         catalogRepo,
			Inventory:       inventoryRepo,
			DiscountRules:   ruleRepo,
			CheckRepo:       checkRepo,
			CheckoutService: checkoutService,
			ReturnsService:  returnsService,
			ShiftService:    shiftService,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(ctx, "error closing clients", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
