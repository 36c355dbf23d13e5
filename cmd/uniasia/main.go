package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/addressbook"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/app"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/billing"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/catalog"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/checkout"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/customers"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/observability"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/orders"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/payments"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/cache"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/db"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/shared"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/jobs"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, "", 0)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	customersRepo := customers.NewRepository(dbpool)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(logger, customersService)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo)
	ordersHandler := orders.NewHandler(logger, ordersService)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	paymentsRepo := payments.NewRepository(dbpool)
	paymentsService := payments.NewService(
		paymentsRepo,
		app.OrderSnapshotAdapter{Orders: ordersService},
		idempotencyStore,
		jobsClient,
		metrics,
		logger,
	)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	checkoutService := checkout.NewService(catalogService, ordersService, customersService)
	checkoutHandler := checkout.NewHandler(logger, checkoutService)

	addressService := addressbook.NewService(addressbook.NewStaticProvider(), redisClient, cfg.AddressCacheTTL, logger)
	addressHandler := addressbook.NewHandler(logger, addressService)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}
	billingService := billing.NewService(ordersService, customersService, pdfClient)
	billingHandler := billing.NewHandler(logger, billingService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		CustomersHandler:   customersHandler,
		CatalogHandler:     catalogHandler,
		OrdersHandler:      ordersHandler,
		PaymentsHandler:    paymentsHandler,
		CheckoutHandler:    checkoutHandler,
		AddressBookHandler: addressHandler,
		BillingHandler:     billingHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
