package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/farmfresh-in/farmfresh-backend/api/routes"
	"github.com/farmfresh-in/farmfresh-backend/internal/inventory"
	"github.com/farmfresh-in/farmfresh-backend/internal/orders"
	"github.com/farmfresh-in/farmfresh-backend/internal/payments"
	"github.com/farmfresh-in/farmfresh-backend/internal/products"
	"github.com/farmfresh-in/farmfresh-backend/internal/settlement"
	"github.com/farmfresh-in/farmfresh-backend/internal/settlement/unitofwork"
	"github.com/farmfresh-in/farmfresh-backend/internal/users"
	"github.com/farmfresh-in/farmfresh-backend/pkg/config"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db"
	"github.com/farmfresh-in/farmfresh-backend/pkg/logger"
	"github.com/farmfresh-in/farmfresh-backend/pkg/metrics"
	"github.com/farmfresh-in/farmfresh-backend/pkg/migrate"
	"github.com/farmfresh-in/farmfresh-backend/pkg/razorpay"
	"github.com/farmfresh-in/farmfresh-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	exec, err := unitofwork.FromConfig(cfg.DB.Transactions, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to select unit of work executor", err)
		os.Exit(1)
	}

	ledger, err := inventory.NewLedger(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create stock ledger", err)
		os.Exit(1)
	}
	inventoryService, err := inventory.NewService(ledger, inventory.NewLogRepository(dbClient.DB()), exec)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(users.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	productRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productRepo, inventoryService)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	gateway, err := razorpay.NewClient(cfg.Razorpay)
	if err != nil {
		logg.Error(context.Background(), "failed to create razorpay client", err)
		os.Exit(1)
	}
	paymentService, err := payments.NewService(gateway, productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	verifier, err := payments.NewHMACVerifier(cfg.Razorpay.KeySecret)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment verifier", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(exec, orderRepo, inventoryService, ledger, verifier, settlementMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"transactional": exec.Transactional(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Registry:   registry,
			Users:      userService,
			Products:   productService,
			Inventory:  inventoryService,
			Orders:     orderService,
			Payments:   paymentService,
			Settlement: settlementService,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErrs error
	if err := server.Shutdown(shutdownCtx); err != nil {
		closeErrs = multierr.Append(closeErrs, err)
	}
	if err := redisClient.Close(); err != nil {
		closeErrs = multierr.Append(closeErrs, err)
	}
	if err := dbClient.Close(); err != nil {
		closeErrs = multierr.Append(closeErrs, err)
	}
	if closeErrs != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErrs)
		os.Exit(1)
	}
	logg.Info(ctx, "shutdown complete")
}
