package payments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/installment"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/pricing"
)

type memoryPaymentRepo struct {
	payments  map[int64]*Payment
	schedules map[int64][]installment.Term
	nextID    int64
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{
		payments:  make(map[int64]*Payment),
		schedules: make(map[int64][]installment.Term),
	}
}

func (r *memoryPaymentRepo) CreatePayment(ctx context.Context, p Payment) (*Payment, error) {
	r.nextID++
	p.ID = r.nextID
	r.payments[p.ID] = &p
	return &p, nil
}

func (r *memoryPaymentRepo) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memoryPaymentRepo) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) ListPending(ctx context.Context) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.Status == StatusPending {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) SumByStatus(ctx context.Context, orderID int64) (received, pendingCash float64, err error) {
	for _, p := range r.payments {
		if p.OrderID != orderID {
			continue
		}
		switch {
		case p.Status == StatusReceived:
			received += p.Amount
		case p.Status == StatusPending && p.Method == MethodCash:
			pendingCash += p.Amount
		}
	}
	return received, pendingCash, nil
}

func (r *memoryPaymentRepo) GetSchedule(ctx context.Context, orderID int64) ([]installment.Term, error) {
	terms := make([]installment.Term, len(r.schedules[orderID]))
	copy(terms, r.schedules[orderID])
	return terms, nil
}

func (r *memoryPaymentRepo) ReceivePayment(ctx context.Context, id int64, verifiedBy string, at time.Time,
	apply func(p *Payment, terms []installment.Term) ([]installment.Term, error)) (*Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	if p.Status != StatusPending {
		return nil, fmt.Errorf("%w: payment %s is already %s", httpx.ErrAlreadyProcessed, p.Reference, p.Status)
	}
	terms := r.schedules[p.OrderID]
	updated, err := apply(p, terms)
	if err != nil {
		return nil, err
	}
	p.Status = StatusReceived
	p.VerifiedBy = verifiedBy
	p.VerifiedAt = &at
	r.schedules[p.OrderID] = updated
	copied := *p
	return &copied, nil
}

func (r *memoryPaymentRepo) RejectPayment(ctx context.Context, id int64, reason, rejectedBy string, at time.Time) error {
	p, ok := r.payments[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if p.Status != StatusPending {
		return fmt.Errorf("%w: payment is no longer pending", httpx.ErrAlreadyProcessed)
	}
	p.Status = StatusRejected
	p.RejectedReason = reason
	p.VerifiedBy = rejectedBy
	p.VerifiedAt = &at
	return nil
}

type stubOrders struct {
	snapshots map[int64]OrderSnapshot
}

func (s *stubOrders) PaymentSnapshot(ctx context.Context, orderID int64) (OrderSnapshot, error) {
	snap, ok := s.snapshots[orderID]
	if !ok {
		return OrderSnapshot{}, httpx.ErrNotFound
	}
	return snap, nil
}

// creditFixture sets up the worked 3-term credit order: 10,000 subtotal,
// 1,200 tax, 672 interest, 11,872 grand total split 3957.33/3957.33/3957.34.
func creditFixture(t *testing.T) (*Service, *memoryPaymentRepo, int64) {
	t.Helper()
	repo := newMemoryPaymentRepo()
	firstDue := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	terms, err := installment.Build(11872, 3, firstDue)
	require.NoError(t, err)
	repo.schedules[1] = terms

	orders := &stubOrders{snapshots: map[int64]OrderSnapshot{
		1: {OrderID: 1, GrandTotal: 11872, PaymentType: pricing.PaymentCredit, TermsMonths: 3, PerTermAmount: 3957.33, Completed: true},
	}}
	svc := NewService(repo, orders, nil, nil, nil, nil)
	return svc, repo, 1
}

func cashFixture(t *testing.T, grandTotal float64) (*Service, *memoryPaymentRepo, int64) {
	t.Helper()
	repo := newMemoryPaymentRepo()
	orders := &stubOrders{snapshots: map[int64]OrderSnapshot{
		2: {OrderID: 2, GrandTotal: grandTotal, PaymentType: pricing.PaymentCash, Completed: true},
	}}
	svc := NewService(repo, orders, nil, nil, nil, nil)
	return svc, repo, 2
}

func TestSubmitCreditExactTermAmount(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCheque, ChequeNumber: "0001", BankName: "BDO"})
	require.NoError(t, err)
	require.Equal(t, StatusPending, result.Payment.Status)
	require.Contains(t, result.Payment.Reference, "PAY-")
	require.Empty(t, result.Notice)
}

func TestSubmitCreditRejectsNonMultiple(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 5000, Method: MethodCash})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "multiple")
}

func TestSubmitCreditRejectsMoreTermsThanRemain(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 4 * 3957.33, Method: MethodCash})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "remaining installments")
}

func TestSubmitCreditAcceptsExactRemainingBalance(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	ctx := context.Background()

	// 11,872 is not a multiple of 3,957.33 but settles the order exactly.
	result, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 11872, Method: MethodCash})
	require.NoError(t, err)
	require.Equal(t, 11872.0, result.Payment.Amount)
}

func TestSubmitCashClampsToRemainingBalance(t *testing.T) {
	svc, _, orderID := cashFixture(t, 500)
	ctx := context.Background()

	result, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 50000, Method: MethodCash})
	require.NoError(t, err)
	require.Equal(t, 500.0, result.Payment.Amount)
	require.Contains(t, result.Notice, "500.00")
}

func TestSubmitRejectsNonPositiveAmount(t *testing.T) {
	svc, _, orderID := cashFixture(t, 500)
	_, err := svc.Submit(context.Background(), SubmitPaymentInput{OrderID: orderID, Amount: 0, Method: MethodCash})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSubmitChequeNeedsDetails(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	_, err := svc.Submit(context.Background(), SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCheque})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestPendingChequeDoesNotReduceBalance(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	ctx := context.Background()

	before, err := svc.RemainingBalance(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, 11872.0, before)

	_, err = svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCheque, ChequeNumber: "0001", BankName: "BDO"})
	require.NoError(t, err)

	after, err := svc.RemainingBalance(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestPendingCashReducesBalance(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCash})
	require.NoError(t, err)

	after, err := svc.RemainingBalance(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, pricing.Round2(11872-3957.33), after)
}

func TestReceiveAppliesGreedilyAcrossTerms(t *testing.T) {
	svc, repo, orderID := creditFixture(t)
	ctx := context.Background()

	// Two term amounts at once: terms 1 and 2 paid, term 3 untouched.
	result, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 2 * 3957.33, Method: MethodCash})
	require.NoError(t, err)

	received, err := svc.Receive(ctx, result.Payment.ID, "Marites")
	require.NoError(t, err)
	require.Equal(t, StatusReceived, received.Status)
	require.Equal(t, "Marites", received.VerifiedBy)

	terms := repo.schedules[orderID]
	require.Equal(t, installment.StatusPaid, terms[0].Status)
	require.Equal(t, installment.StatusPaid, terms[1].Status)
	require.Equal(t, installment.StatusPending, terms[2].Status)
	require.Zero(t, terms[2].AmountPaid)
}

func TestReceiveSkipsAlreadyPaidTerms(t *testing.T) {
	svc, repo, orderID := creditFixture(t)
	ctx := context.Background()

	// Settle term 1 first.
	first, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCash})
	require.NoError(t, err)
	_, err = svc.Receive(ctx, first.Payment.ID, "Marites")
	require.NoError(t, err)

	// A fresh term-amount payment lands on term 2, not term 1 again.
	second, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCash})
	require.NoError(t, err)
	_, err = svc.Receive(ctx, second.Payment.ID, "Marites")
	require.NoError(t, err)

	terms := repo.schedules[orderID]
	require.Equal(t, installment.StatusPaid, terms[1].Status)
	require.Equal(t, installment.StatusPending, terms[2].Status)
}

func TestReceiveTwiceReturnsAlreadyProcessed(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCash})
	require.NoError(t, err)

	_, err = svc.Receive(ctx, result.Payment.ID, "Marites")
	require.NoError(t, err)

	_, err = svc.Receive(ctx, result.Payment.ID, "Joel")
	require.ErrorIs(t, err, httpx.ErrAlreadyProcessed)
}

func TestRejectAfterReceiveReturnsAlreadyProcessed(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCash})
	require.NoError(t, err)
	_, err = svc.Receive(ctx, result.Payment.ID, "Marites")
	require.NoError(t, err)

	err = svc.Reject(ctx, result.Payment.ID, "duplicate submission", "Joel")
	require.ErrorIs(t, err, httpx.ErrAlreadyProcessed)
}

func TestRejectedChequeLeavesScheduleUntouched(t *testing.T) {
	svc, repo, orderID := creditFixture(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCheque, ChequeNumber: "0002", BankName: "BPI"})
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, result.Payment.ID, "cheque bounced", "Marites"))

	for _, term := range repo.schedules[orderID] {
		require.Equal(t, installment.StatusPending, term.Status)
		require.Zero(t, term.AmountPaid)
	}
	balance, err := svc.RemainingBalance(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, 11872.0, balance)
}

func TestRejectedCashRestoresBalance(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	ctx := context.Background()

	// A pending cash payment is credited optimistically.
	result, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCash})
	require.NoError(t, err)

	reduced, err := svc.RemainingBalance(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, pricing.Round2(11872-3957.33), reduced)

	// Rejecting it reverses the credit in full.
	require.NoError(t, svc.Reject(ctx, result.Payment.ID, "counter discrepancy", "Marites"))

	restored, err := svc.RemainingBalance(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, 11872.0, restored)
}

func TestScheduleViewReportsNextDue(t *testing.T) {
	svc, _, orderID := creditFixture(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 3957.33, Method: MethodCash})
	require.NoError(t, err)
	_, err = svc.Receive(ctx, result.Payment.ID, "Marites")
	require.NoError(t, err)

	view, err := svc.Schedule(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, 2, view.NextDueTermNo)
	require.Equal(t, pricing.Round2(11872-3957.33), view.RemainingBalance)
}

func TestSubmitRefusedWhenFullyPaid(t *testing.T) {
	svc, _, orderID := cashFixture(t, 500)
	ctx := context.Background()

	result, err := svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 500, Method: MethodCash})
	require.NoError(t, err)
	_, err = svc.Receive(ctx, result.Payment.ID, "Marites")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, SubmitPaymentInput{OrderID: orderID, Amount: 100, Method: MethodCash})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "fully paid")
}
