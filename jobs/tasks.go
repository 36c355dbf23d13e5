// Package jobs holds the background task definitions and the Asynq worker
// wiring: the hourly overdue-installment scan and the balance snapshot
// refresh enqueued after a payment is received.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/NewWebie01/capstone-uniasia-system-sub001/internal/jobs"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/observability"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan counts unpaid installment terms past their due date.
	TaskOverdueScan = "installments:overdue_scan"
	// TaskSnapshotRefresh recomputes an order's remaining balance after a
	// payment is verified.
	TaskSnapshotRefresh = "orders:snapshot_refresh"
)

// SnapshotRefreshPayload identifies the order whose balance changed.
type SnapshotRefreshPayload struct {
	OrderID int64 `json:"order_id"`
}

// NewSnapshotRefreshTask constructs an Asynq task.
func NewSnapshotRefreshTask(payload SnapshotRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotRefresh, data), nil
}

// NewOverdueScanTask constructs the scan task; it carries no payload.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskOverdueScan, nil)
}

// ScanRepository supplies the counts the overdue scan reports.
type ScanRepository interface {
	CountOverdueTerms(ctx context.Context, asOf time.Time) (int, error)
	CountPendingPayments(ctx context.Context) (int, error)
}

// BalancePort recomputes the remaining balance for an order.
type BalancePort interface {
	RemainingBalance(ctx context.Context, orderID int64) (float64, error)
}

// NewOverdueScanHandler builds the handler for TaskOverdueScan. The counts
// are gathered concurrently; the overdue count feeds the gauge scraped by
// Prometheus and both land in the log for the daily collection run.
func NewOverdueScanHandler(repo ScanRepository, metrics *observability.Metrics, runs *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := runs.Track("overdue_scan")
		var overdue, pending int
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			overdue, err = repo.CountOverdueTerms(gctx, time.Now())
			return err
		})
		g.Go(func() error {
			var err error
			pending, err = repo.CountPendingPayments(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return tracker.End(err)
		}
		metrics.SetOverdueTerms(overdue)
		logger.Info("overdue scan",
			slog.Int("overdue_terms", overdue),
			slog.Int("pending_payments", pending))
		return tracker.End(nil)
	}
}

// NewSnapshotRefreshHandler builds the handler for TaskSnapshotRefresh.
func NewSnapshotRefreshHandler(balances BalancePort, runs *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SnapshotRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := runs.Track("snapshot_refresh")
		balance, err := balances.RemainingBalance(ctx, payload.OrderID)
		if err != nil {
			return tracker.End(err)
		}
		logger.Info("balance snapshot refreshed",
			slog.Int64("order_id", payload.OrderID),
			slog.Float64("remaining_balance", balance))
		return tracker.End(nil)
	}
}
