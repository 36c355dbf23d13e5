package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/installment"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/pricing"
)

type memoryOrderRepo struct {
	orders     map[int64]*Order
	items      map[int64][]OrderItem
	deliveries map[int64]*TruckDelivery
	schedules  map[int64][]installment.Term
	nextID     int64
	nextItemID int64
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{
		orders:     make(map[int64]*Order),
		items:      make(map[int64][]OrderItem),
		deliveries: make(map[int64]*TruckDelivery),
		schedules:  make(map[int64][]installment.Term),
	}
}

func (r *memoryOrderRepo) CreateOrder(ctx context.Context, order Order, items []OrderItem) (*OrderWithItems, error) {
	for _, o := range r.orders {
		if order.PONumber != "" && o.PONumber == order.PONumber {
			return nil, errors.New("orders_po_number_key violation")
		}
	}
	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = &order
	for i := range items {
		r.nextItemID++
		items[i].ID = r.nextItemID
		items[i].OrderID = order.ID
	}
	r.items[order.ID] = items
	return &OrderWithItems{Order: order, Items: items}, nil
}

func (r *memoryOrderRepo) GetOrder(ctx context.Context, id int64) (*OrderWithItems, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	items := make([]OrderItem, len(r.items[id]))
	copy(items, r.items[id])
	return &OrderWithItems{Order: *o, Items: items, Delivery: r.deliveries[id]}, nil
}

func (r *memoryOrderRepo) ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	var out []Order
	for _, o := range r.orders {
		if req.Status != "" && o.Status != req.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *memoryOrderRepo) UpdateOrderItem(ctx context.Context, item OrderItem) (*OrderItem, error) {
	items := r.items[item.OrderID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return &item, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (r *memoryOrderRepo) AcceptOrder(ctx context.Context, id int64, acceptedBy string, at time.Time) error {
	o, ok := r.orders[id]
	if !ok || o.Status != StatusPending {
		return httpx.ErrAlreadyProcessed
	}
	o.Status = StatusAccepted
	o.AcceptedBy = acceptedBy
	o.AcceptedAt = &at
	return nil
}

func (r *memoryOrderRepo) RejectOrder(ctx context.Context, id int64, reason string, at time.Time) error {
	o, ok := r.orders[id]
	if !ok || o.Status != StatusPending {
		return httpx.ErrAlreadyProcessed
	}
	o.Status = StatusRejected
	o.RejectedReason = reason
	return nil
}

func (r *memoryOrderRepo) CompleteOrder(ctx context.Context, snap CompletionSnapshot) error {
	o, ok := r.orders[snap.OrderID]
	if !ok || o.Status != StatusAccepted {
		return httpx.ErrConflict
	}
	o.Status = StatusCompleted
	o.Subtotal = snap.Subtotal
	o.TotalDiscount = snap.TotalDiscount
	o.SalesTax = snap.SalesTax
	o.InterestPercent = snap.InterestPercent
	o.InterestAmount = snap.InterestAmount
	o.ShippingFee = snap.ShippingFee
	o.GrandTotal = snap.GrandTotal
	o.PerTermAmount = snap.PerTermAmount
	o.CompletedAt = &snap.CompletedAt
	r.schedules[snap.OrderID] = snap.Terms
	return nil
}

func (r *memoryOrderRepo) UpsertTruckDelivery(ctx context.Context, td TruckDelivery) (*TruckDelivery, error) {
	td.ID = td.OrderID
	td.CreatedAt = time.Now()
	r.deliveries[td.OrderID] = &td
	return &td, nil
}

func placeCreditOrder(t *testing.T, svc *Service, terms int) *OrderWithItems {
	t.Helper()
	ord, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:  1,
		PaymentType: pricing.PaymentCredit,
		TermsMonths: terms,
		TaxEnabled:  true,
		Items: []CreateOrderItemInput{
			{ProductID: 1, Description: "GI Pipe 1in", Quantity: 100, UnitPrice: 100},
		},
	})
	require.NoError(t, err)
	return ord
}

func TestCreateOrderGeneratesTxnCode(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)

	ord := placeCreditOrder(t, svc, 3)
	require.NotZero(t, ord.ID)
	require.Contains(t, ord.TxnCode, "TXN-")
	require.Equal(t, StatusPending, ord.Status)
	require.Zero(t, ord.GrandTotal)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := NewService(newMemoryOrderRepo())
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, CreateOrderInput{PaymentType: pricing.PaymentCash})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CreateOrder(ctx, CreateOrderInput{
		CustomerID:  1,
		PaymentType: pricing.PaymentCredit,
		TermsMonths: 0,
		Items:       []CreateOrderItemInput{{Quantity: 1, UnitPrice: 10}},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDuplicatePONumberFriendlyMessage(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	input := CreateOrderInput{
		CustomerID:  1,
		PONumber:    "PO-2026-001",
		PaymentType: pricing.PaymentCash,
		Items:       []CreateOrderItemInput{{Quantity: 1, UnitPrice: 10}},
	}
	_, err := svc.CreateOrder(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, input)
	require.Error(t, err)
}

func TestUpdateItemClampsDiscount(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ord := placeCreditOrder(t, svc, 3)
	itemID := ord.Items[0].ID

	over := 80.0
	item, err := svc.UpdateItem(ctx, ord.ID, itemID, UpdateItemInput{DiscountPercent: &over})
	require.NoError(t, err)
	require.Equal(t, 50.0, item.DiscountPercent)

	under := -10.0
	item, err = svc.UpdateItem(ctx, ord.ID, itemID, UpdateItemInput{DiscountPercent: &under})
	require.NoError(t, err)
	require.Equal(t, 0.0, item.DiscountPercent)
}

func TestUpdateItemFrozenAfterCompletion(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ord := placeCreditOrder(t, svc, 3)
	require.NoError(t, svc.AcceptOrder(ctx, ord.ID, "Marites"))
	_, err := svc.CompleteOrder(ctx, ord.ID, CompleteOrderInput{})
	require.NoError(t, err)

	d := 10.0
	_, err = svc.UpdateItem(ctx, ord.ID, ord.Items[0].ID, UpdateItemInput{DiscountPercent: &d})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCompleteCreditOrderSnapshotAndSchedule(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	// 100 x 100 = 10,000 subtotal, tax 1,200, 3-term interest 6% on 11,200.
	ord := placeCreditOrder(t, svc, 3)
	require.NoError(t, svc.AcceptOrder(ctx, ord.ID, "Marites"))

	firstDue := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	done, err := svc.CompleteOrder(ctx, ord.ID, CompleteOrderInput{FirstDueDate: firstDue})
	require.NoError(t, err)

	require.Equal(t, StatusCompleted, done.Status)
	require.Equal(t, 10000.0, done.Subtotal)
	require.Equal(t, 1200.0, done.SalesTax)
	require.Equal(t, 6.0, done.InterestPercent)
	require.Equal(t, 672.0, done.InterestAmount)
	require.Equal(t, 11872.0, done.GrandTotal)

	terms := repo.schedules[ord.ID]
	require.Len(t, terms, 3)
	require.Equal(t, firstDue, terms[0].DueDate)
	require.Equal(t, firstDue.AddDate(0, 2, 0), terms[2].DueDate)

	var sum float64
	for _, term := range terms {
		sum += term.AmountDue
	}
	require.InDelta(t, done.GrandTotal, sum, 0.001)
	require.Equal(t, terms[0].AmountDue, done.PerTermAmount)
}

func TestCompleteCashOrderHasNoInterestOrSchedule(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ord, err := svc.CreateOrder(ctx, CreateOrderInput{
		CustomerID:  1,
		PaymentType: pricing.PaymentCash,
		TaxEnabled:  true,
		Items:       []CreateOrderItemInput{{Quantity: 100, UnitPrice: 100}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.AcceptOrder(ctx, ord.ID, "Marites"))

	// Interest override must be ignored for cash orders.
	override := 12.0
	done, err := svc.CompleteOrder(ctx, ord.ID, CompleteOrderInput{InterestOverride: &override})
	require.NoError(t, err)
	require.Equal(t, 0.0, done.InterestPercent)
	require.Equal(t, 0.0, done.InterestAmount)
	require.Equal(t, 11200.0, done.GrandTotal)
	require.Empty(t, repo.schedules[ord.ID])
	require.Equal(t, done.GrandTotal, done.PerTermAmount)
}

func TestCompleteIncludesShippingFee(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ord := placeCreditOrder(t, svc, 3)
	_, err := svc.SetTruckDelivery(ctx, ord.ID, TruckDeliveryInput{
		PlateNumber: "NBC-1234",
		DriverName:  "Edgar",
		ShippingFee: 500,
	})
	require.NoError(t, err)
	require.NoError(t, svc.AcceptOrder(ctx, ord.ID, "Marites"))

	done, err := svc.CompleteOrder(ctx, ord.ID, CompleteOrderInput{})
	require.NoError(t, err)
	require.Equal(t, 500.0, done.ShippingFee)
	require.Equal(t, 12372.0, done.GrandTotal)
}

func TestCompleteTwiceReturnsAlreadyProcessed(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ord := placeCreditOrder(t, svc, 3)
	require.NoError(t, svc.AcceptOrder(ctx, ord.ID, "Marites"))
	_, err := svc.CompleteOrder(ctx, ord.ID, CompleteOrderInput{})
	require.NoError(t, err)

	_, err = svc.CompleteOrder(ctx, ord.ID, CompleteOrderInput{})
	require.ErrorIs(t, err, httpx.ErrAlreadyProcessed)
}

func TestRejectThenAcceptFails(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	ord := placeCreditOrder(t, svc, 3)
	require.NoError(t, svc.RejectOrder(ctx, ord.ID, "credit line exhausted"))
	err := svc.AcceptOrder(ctx, ord.ID, "Marites")
	require.ErrorIs(t, err, httpx.ErrAlreadyProcessed)
}
