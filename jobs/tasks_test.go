package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/NewWebie01/capstone-uniasia-system-sub001/internal/jobs"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/observability"
)

type stubScanRepo struct {
	overdue    int
	pending    int
	overdueErr error
}

func (s *stubScanRepo) CountOverdueTerms(_ context.Context, _ time.Time) (int, error) {
	return s.overdue, s.overdueErr
}

func (s *stubScanRepo) CountPendingPayments(_ context.Context) (int, error) {
	return s.pending, nil
}

type stubBalances struct {
	balance float64
	calls   []int64
}

func (s *stubBalances) RemainingBalance(_ context.Context, orderID int64) (float64, error) {
	s.calls = append(s.calls, orderID)
	return s.balance, nil
}

func TestOverdueScanPublishesGauge(t *testing.T) {
	repo := &stubScanRepo{overdue: 4, pending: 2}
	metrics := observability.NewMetrics()
	runs := jobmetrics.NewMetrics(metrics.Registerer())
	handler := NewOverdueScanHandler(repo, metrics, runs, slog.Default())

	err := handler(context.Background(), NewOverdueScanTask())
	require.NoError(t, err)
}

func TestOverdueScanPropagatesRepoError(t *testing.T) {
	repo := &stubScanRepo{overdueErr: errors.New("db down")}
	handler := NewOverdueScanHandler(repo, observability.NewMetrics(), nil, slog.Default())

	err := handler(context.Background(), NewOverdueScanTask())
	require.Error(t, err)
}

func TestSnapshotRefreshResolvesBalance(t *testing.T) {
	balances := &stubBalances{balance: 7872}
	handler := NewSnapshotRefreshHandler(balances, nil, slog.Default())

	task, err := NewSnapshotRefreshTask(SnapshotRefreshPayload{OrderID: 42})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, []int64{42}, balances.calls)
}

func TestSnapshotRefreshSkipsRetryOnBadPayload(t *testing.T) {
	handler := NewSnapshotRefreshHandler(&stubBalances{}, nil, slog.Default())

	err := handler(context.Background(), asynq.NewTask(TaskSnapshotRefresh, []byte("not-json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
