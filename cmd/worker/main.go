package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/app"
	jobmetrics "github.com/NewWebie01/capstone-uniasia-system-sub001/internal/jobs"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/observability"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/orders"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/payments"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/db"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	runMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	ordersService := orders.NewService(orders.NewRepository(pool))
	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(
		paymentsRepo,
		app.OrderSnapshotAdapter{Orders: ordersService},
		nil,
		nil,
		metrics,
		logger,
	)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOverdueScan, Handler: jobs.NewOverdueScanHandler(paymentsRepo, metrics, runMetrics, logger)},
			{Type: jobs.TaskSnapshotRefresh, Handler: jobs.NewSnapshotRefreshHandler(paymentsService, runMetrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
