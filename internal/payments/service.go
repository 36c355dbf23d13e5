package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/installment"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/observability"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/pricing"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/shared"
)

// RepositoryPort defines data access methods for payments. ReceivePayment is
// the one transactional entry point: the implementation must lock the payment
// row, refuse non-pending rows with httpx.ErrAlreadyProcessed, run apply over
// the locked schedule and persist both sides atomically.
type RepositoryPort interface {
	CreatePayment(ctx context.Context, p Payment) (*Payment, error)
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]Payment, error)
	ListPending(ctx context.Context) ([]Payment, error)
	SumByStatus(ctx context.Context, orderID int64) (received, pendingCash float64, err error)
	GetSchedule(ctx context.Context, orderID int64) ([]installment.Term, error)
	ReceivePayment(ctx context.Context, id int64, verifiedBy string, at time.Time,
		apply func(p *Payment, terms []installment.Term) ([]installment.Term, error)) (*Payment, error)
	RejectPayment(ctx context.Context, id int64, reason, rejectedBy string, at time.Time) error
}

// OrdersPort supplies the completed-order snapshot payments validate against.
type OrdersPort interface {
	PaymentSnapshot(ctx context.Context, orderID int64) (OrderSnapshot, error)
}

// IdempotencyPort guards duplicate submissions. Optional.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
}

// JobsPort enqueues the post-receive snapshot refresh. Optional.
type JobsPort interface {
	EnqueueSnapshotRefresh(ctx context.Context, orderID int64) error
}

// Service handles payment submission and verification.
type Service struct {
	repo    RepositoryPort
	orders  OrdersPort
	idem    IdempotencyPort
	jobs    JobsPort
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService builds Service instance. idem, jobs and metrics may be nil.
func NewService(repo RepositoryPort, orders OrdersPort, idem IdempotencyPort, jobs JobsPort, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, orders: orders, idem: idem, jobs: jobs, metrics: metrics, logger: logger}
}

// RemainingBalance computes what the customer still owes on an order:
// grand total minus received payments minus pending cash. Pending cheques do
// not reduce the balance (CashPendingCountsAsPaid covers cash only).
func (s *Service) RemainingBalance(ctx context.Context, orderID int64) (float64, error) {
	snap, err := s.orders.PaymentSnapshot(ctx, orderID)
	if err != nil {
		return 0, err
	}
	received, pendingCash, err := s.repo.SumByStatus(ctx, orderID)
	if err != nil {
		return 0, err
	}
	balance := snap.GrandTotal - received - pendingCash
	if balance < 0 {
		balance = 0
	}
	return pricing.Round2(balance), nil
}

// Submit records a customer payment as pending after validating the amount
// against the order's remaining balance and, for credit orders, its schedule.
func (s *Service) Submit(ctx context.Context, input SubmitPaymentInput) (*SubmitResult, error) {
	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, input.IdempotencyKey, "payments"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return nil, fmt.Errorf("%w: this payment was already submitted", httpx.ErrDuplicate)
			}
			return nil, err
		}
	}

	if input.Method == MethodCheque {
		if input.ChequeNumber == "" || input.BankName == "" {
			return nil, fmt.Errorf("%w: cheque payments need a cheque number and bank name", httpx.ErrValidation)
		}
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}

	snap, err := s.orders.PaymentSnapshot(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !snap.Completed {
		return nil, fmt.Errorf("%w: payments are accepted only for completed orders", httpx.ErrValidation)
	}

	remaining, err := s.RemainingBalance(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: this order is fully paid", httpx.ErrValidation)
	}

	amount := input.Amount
	notice := ""
	if snap.PaymentType == pricing.PaymentCredit {
		terms, err := s.repo.GetSchedule(ctx, input.OrderID)
		if err != nil {
			return nil, err
		}
		next := installment.NextUnpaid(terms)
		if next == nil {
			return nil, fmt.Errorf("%w: this order is fully paid", httpx.ErrValidation)
		}
		if err := installment.ValidateCreditAmount(amount, next.AmountDue, installment.RemainingUnpaidCount(terms), remaining); err != nil {
			switch {
			case errors.Is(err, installment.ErrNotTermMultiple):
				return nil, fmt.Errorf("%w: pay an exact multiple of the %.2f term amount or the remaining balance of %.2f",
					httpx.ErrValidation, next.AmountDue, remaining)
			case errors.Is(err, installment.ErrExceedsSchedule):
				return nil, fmt.Errorf("%w: amount covers more than the %d remaining installments",
					httpx.ErrValidation, installment.RemainingUnpaidCount(terms))
			default:
				return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
			}
		}
	} else {
		var clamped bool
		amount, clamped = installment.ClampCashAmount(amount, remaining)
		if clamped {
			notice = fmt.Sprintf("Amount adjusted to the remaining balance of %.2f.", remaining)
		}
	}

	p := Payment{
		Reference:    shared.NewPaymentReference(),
		OrderID:      input.OrderID,
		Amount:       pricing.Round2(amount),
		Method:       input.Method,
		ChequeNumber: input.ChequeNumber,
		BankName:     input.BankName,
		ChequeDate:   input.ChequeDate,
		ImageURL:     input.ImageURL,
		Status:       StatusPending,
		Notice:       notice,
		SubmittedAt:  time.Now(),
	}
	created, err := s.repo.CreatePayment(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("submit payment: %w", err)
	}
	return &SubmitResult{Payment: *created, Notice: notice}, nil
}

// Receive marks a pending payment as received and applies it to the order's
// installment schedule, all inside one repository transaction. A second admin
// racing on the same payment gets httpx.ErrAlreadyProcessed.
func (s *Service) Receive(ctx context.Context, paymentID int64, verifiedBy string) (*Payment, error) {
	if verifiedBy == "" {
		return nil, fmt.Errorf("%w: verifier name required", httpx.ErrValidation)
	}
	received, err := s.repo.ReceivePayment(ctx, paymentID, verifiedBy, time.Now(),
		func(p *Payment, terms []installment.Term) ([]installment.Term, error) {
			if len(terms) > 0 {
				installment.Apply(terms, p.Amount)
			}
			return terms, nil
		})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordPaymentOutcome(string(received.Method), "received")
	if s.jobs != nil {
		if err := s.jobs.EnqueueSnapshotRefresh(ctx, received.OrderID); err != nil {
			s.logger.Warn("enqueue snapshot refresh", slog.Any("error", err), slog.Int64("order_id", received.OrderID))
		}
	}
	return received, nil
}

// Reject declines a pending payment. Compare-and-swap at the data layer keeps
// a reject racing a receive from clobbering it.
func (s *Service) Reject(ctx context.Context, paymentID int64, reason, rejectedBy string) error {
	if reason == "" {
		return fmt.Errorf("%w: rejection reason required", httpx.ErrValidation)
	}
	if err := s.repo.RejectPayment(ctx, paymentID, reason, rejectedBy, time.Now()); err != nil {
		return err
	}
	if p, err := s.repo.GetPayment(ctx, paymentID); err == nil {
		s.metrics.RecordPaymentOutcome(string(p.Method), "rejected")
	}
	return nil
}

// GetPayment returns a single payment.
func (s *Service) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

// ListPaymentsByOrder returns all payments submitted against an order.
func (s *Service) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	return s.repo.ListPaymentsByOrder(ctx, orderID)
}

// ListPending returns payments awaiting verification.
func (s *Service) ListPending(ctx context.Context) ([]Payment, error) {
	return s.repo.ListPending(ctx)
}

// Schedule returns the installment schedule with the balance summary.
func (s *Service) Schedule(ctx context.Context, orderID int64) (*ScheduleView, error) {
	if _, err := s.orders.PaymentSnapshot(ctx, orderID); err != nil {
		return nil, err
	}
	terms, err := s.repo.GetSchedule(ctx, orderID)
	if err != nil {
		return nil, err
	}
	remaining, err := s.RemainingBalance(ctx, orderID)
	if err != nil {
		return nil, err
	}
	view := &ScheduleView{OrderID: orderID, Terms: terms, RemainingBalance: remaining}
	if next := installment.NextUnpaid(terms); next != nil {
		view.NextDueTermNo = next.TermNo
	}
	return view, nil
}
