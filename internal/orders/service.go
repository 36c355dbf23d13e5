package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/installment"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/pricing"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/shared"
)

// RepositoryPort defines data access methods for orders.
type RepositoryPort interface {
	CreateOrder(ctx context.Context, order Order, items []OrderItem) (*OrderWithItems, error)
	GetOrder(ctx context.Context, id int64) (*OrderWithItems, error)
	ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
	UpdateOrderItem(ctx context.Context, item OrderItem) (*OrderItem, error)
	AcceptOrder(ctx context.Context, id int64, acceptedBy string, at time.Time) error
	RejectOrder(ctx context.Context, id int64, reason string, at time.Time) error
	CompleteOrder(ctx context.Context, snap CompletionSnapshot) error
	UpsertTruckDelivery(ctx context.Context, td TruckDelivery) (*TruckDelivery, error)
}

// Service handles the order workflow.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateOrder places a new pending order with a generated transaction code.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderWithItems, error) {
	if input.CustomerID == 0 {
		return nil, fmt.Errorf("%w: customer required", httpx.ErrValidation)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one line", httpx.ErrValidation)
	}
	if input.PaymentType != pricing.PaymentCash && input.PaymentType != pricing.PaymentCredit {
		return nil, fmt.Errorf("%w: payment type must be Cash or Credit", httpx.ErrValidation)
	}
	if input.PaymentType == pricing.PaymentCredit && input.TermsMonths < 1 {
		return nil, fmt.Errorf("%w: credit orders need a term length of at least one month", httpx.ErrValidation)
	}
	if input.PaymentType == pricing.PaymentCash {
		input.TermsMonths = 0
	}

	order := Order{
		TxnCode:     shared.NewTxnCode(),
		CustomerID:  input.CustomerID,
		PONumber:    input.PONumber,
		PaymentType: input.PaymentType,
		TermsMonths: input.TermsMonths,
		TaxEnabled:  input.TaxEnabled,
		Status:      StatusPending,
	}
	items := make([]OrderItem, 0, len(input.Items))
	for _, it := range input.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive", httpx.ErrValidation)
		}
		items = append(items, OrderItem{
			ProductID:       it.ProductID,
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			OutOfStock:      it.OutOfStock,
		})
	}
	return s.repo.CreateOrder(ctx, order, items)
}

// GetOrder returns an order with its lines and delivery assignment.
func (s *Service) GetOrder(ctx context.Context, id int64) (*OrderWithItems, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders returns orders with pagination metadata.
func (s *Service) ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, shared.Pagination, error) {
	items, total, err := s.repo.ListOrders(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// UpdateItem edits a line while the order is still under review. Discount
// percent entry is clamped to [0,50] the same way the admin form clamps it;
// stored values outside that range (legacy add-ons) are left untouched unless
// re-entered.
func (s *Service) UpdateItem(ctx context.Context, orderID, itemID int64, input UpdateItemInput) (*OrderItem, error) {
	ord, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.Status == StatusCompleted || ord.Status == StatusRejected {
		return nil, fmt.Errorf("%w: order lines are frozen once the order is %s", httpx.ErrConflict, ord.Status)
	}

	var item *OrderItem
	for i := range ord.Items {
		if ord.Items[i].ID == itemID {
			item = &ord.Items[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: order line %d", httpx.ErrNotFound, itemID)
	}

	if input.DiscountPercent != nil {
		d := *input.DiscountPercent
		if d < 0 {
			d = 0
		}
		if d > 50 {
			d = 50
		}
		item.DiscountPercent = d
	}
	if input.QuantityFulfilled != nil {
		q := *input.QuantityFulfilled
		if q < 0 || q > item.Quantity {
			return nil, fmt.Errorf("%w: fulfilled quantity must be between 0 and %v", httpx.ErrValidation, item.Quantity)
		}
		item.QuantityFulfilled = q
	}
	if input.OutOfStock != nil {
		item.OutOfStock = *input.OutOfStock
	}
	return s.repo.UpdateOrderItem(ctx, *item)
}

// AcceptOrder moves a pending order into review by the named admin.
func (s *Service) AcceptOrder(ctx context.Context, id int64, acceptedBy string) error {
	if acceptedBy == "" {
		return fmt.Errorf("%w: acceptor name required", httpx.ErrValidation)
	}
	return s.repo.AcceptOrder(ctx, id, acceptedBy, time.Now())
}

// RejectOrder declines a pending order with a reason.
func (s *Service) RejectOrder(ctx context.Context, id int64, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: rejection reason required", httpx.ErrValidation)
	}
	return s.repo.RejectOrder(ctx, id, reason, time.Now())
}

// SetTruckDelivery assigns the order to a truck. Allowed until completion so
// the shipping fee lands in the totals snapshot.
func (s *Service) SetTruckDelivery(ctx context.Context, orderID int64, input TruckDeliveryInput) (*TruckDelivery, error) {
	ord, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: delivery is frozen once the order is completed", httpx.ErrConflict)
	}
	if ord.Status == StatusRejected {
		return nil, fmt.Errorf("%w: rejected orders cannot be scheduled", httpx.ErrConflict)
	}
	if input.ShippingFee < 0 {
		return nil, fmt.Errorf("%w: shipping fee must not be negative", httpx.ErrValidation)
	}
	return s.repo.UpsertTruckDelivery(ctx, TruckDelivery{
		OrderID:     orderID,
		PlateNumber: input.PlateNumber,
		DriverName:  input.DriverName,
		ShippingFee: input.ShippingFee,
		ScheduledAt: input.ScheduledAt,
	})
}

// CompleteOrder finalises an accepted order: recomputes the totals from the
// stored lines, freezes the snapshot and, for credit orders, builds the
// installment schedule. All of it commits in one transaction.
func (s *Service) CompleteOrder(ctx context.Context, id int64, input CompleteOrderInput) (*OrderWithItems, error) {
	ord, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	switch ord.Status {
	case StatusAccepted:
	case StatusCompleted:
		return nil, fmt.Errorf("%w: order already completed", httpx.ErrAlreadyProcessed)
	default:
		return nil, fmt.Errorf("%w: only accepted orders can be completed", httpx.ErrConflict)
	}

	lines := make([]pricing.Line, 0, len(ord.Items))
	for _, it := range ord.Items {
		lines = append(lines, it.PricingLine())
	}
	totals := pricing.Summarize(lines, pricing.SubtotalPolicy{})

	var shippingFee float64
	if ord.Delivery != nil {
		shippingFee = ord.Delivery.ShippingFee
	}
	override := input.InterestOverride
	if ord.PaymentType == pricing.PaymentCash {
		override = nil
	}
	quote := pricing.Compute(pricing.QuoteInput{
		AfterDiscount:    totals.AfterDiscount,
		TaxEnabled:       ord.TaxEnabled,
		PaymentType:      ord.PaymentType,
		TermsMonths:      ord.TermsMonths,
		InterestOverride: override,
		ShippingFee:      shippingFee,
	})

	now := time.Now()
	snap := CompletionSnapshot{
		OrderID:         ord.ID,
		Subtotal:        pricing.Round2(totals.Subtotal),
		TotalDiscount:   pricing.Round2(totals.TotalDiscount),
		SalesTax:        pricing.Round2(quote.SalesTax),
		InterestPercent: quote.InterestPercent,
		InterestAmount:  pricing.Round2(quote.InterestAmount),
		ShippingFee:     shippingFee,
		GrandTotal:      pricing.Round2(quote.GrandTotal),
		CompletedAt:     now,
	}

	if ord.PaymentType == pricing.PaymentCredit {
		firstDue := input.FirstDueDate
		if firstDue.IsZero() {
			firstDue = now.AddDate(0, 1, 0)
		}
		terms, err := installment.Build(snap.GrandTotal, ord.TermsMonths, firstDue)
		if err != nil {
			return nil, err
		}
		snap.Terms = terms
		snap.PerTermAmount = terms[0].AmountDue
	} else {
		snap.PerTermAmount = snap.GrandTotal
	}

	if err := s.repo.CompleteOrder(ctx, snap); err != nil {
		if errors.Is(err, httpx.ErrConflict) || errors.Is(err, httpx.ErrAlreadyProcessed) {
			return nil, err
		}
		return nil, fmt.Errorf("complete order %d: %w", id, err)
	}
	return s.repo.GetOrder(ctx, id)
}
