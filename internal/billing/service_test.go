package billing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/customers"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/orders"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/pricing"
)

type stubOrders struct {
	order *orders.OrderWithItems
}

func (s *stubOrders) GetOrder(_ context.Context, id int64) (*orders.OrderWithItems, error) {
	if s.order == nil || s.order.ID != id {
		return nil, httpx.ErrNotFound
	}
	return s.order, nil
}

type stubCustomers struct {
	customer *customers.Customer
}

func (s *stubCustomers) GetCustomer(_ context.Context, id int64) (*customers.Customer, error) {
	if s.customer == nil || s.customer.ID != id {
		return nil, httpx.ErrNotFound
	}
	return s.customer, nil
}

type stubRenderer struct {
	lastHTML string
	err      error
}

func (s *stubRenderer) RenderHTML(_ context.Context, html string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastHTML = html
	return []byte("%PDF-1.4 stub"), nil
}

func completedOrderFixture() *orders.OrderWithItems {
	now := time.Now()
	return &orders.OrderWithItems{
		Order: orders.Order{
			ID:          7,
			TxnCode:     "TXN-AB12CD34EF",
			CustomerID:  3,
			PaymentType: pricing.PaymentCredit,
			TermsMonths: 3,
			TaxEnabled:  true,
			Status:      orders.StatusCompleted,

			Subtotal:        10000,
			TotalDiscount:   0,
			SalesTax:        1200,
			InterestPercent: 6,
			InterestAmount:  672,
			ShippingFee:     500,
			GrandTotal:      12372,
			PerTermAmount:   4124,
			CompletedAt:     &now,
		},
		Items: []orders.OrderItem{
			{ID: 1, OrderID: 7, Description: "GI Pipe 2in x 6m", Quantity: 40, UnitPrice: 200},
			{ID: 2, OrderID: 7, Description: "Angle Bar 1/4", Quantity: 10, UnitPrice: 200, DiscountPercent: 0},
			{ID: 3, OrderID: 7, Description: "Welding Rod Box", Quantity: 5, UnitPrice: 300, OutOfStock: true},
		},
		Delivery: &orders.TruckDelivery{OrderID: 7, PlateNumber: "NBC-1234", DriverName: "R. Santos", ShippingFee: 500},
	}
}

func customerFixture() *customers.Customer {
	return &customers.Customer{
		ID:   3,
		Code: "CUST-11223344",
		Name: "Mendoza Builders",
		Address: customers.Address{
			Region:           "NCR",
			Province:         "Metro Manila",
			CityMunicipality: "Quezon City",
			Barangay:         "Batasan Hills",
			Street:           "123 Commonwealth Ave",
		},
	}
}

func newBillingService(ord *orders.OrderWithItems, pdf PDFRenderer) *Service {
	return NewService(&stubOrders{order: ord}, &stubCustomers{customer: customerFixture()}, pdf)
}

func TestInvoiceUsesFrozenTotals(t *testing.T) {
	svc := newBillingService(completedOrderFixture(), nil)

	inv, err := svc.BuildInvoice(context.Background(), 7)
	require.NoError(t, err)

	require.Equal(t, "INV-AB12CD34EF", inv.Number)
	require.Equal(t, 12372.0, inv.GrandTotal)
	require.Equal(t, "₱12,372.00", inv.GrandTotalDisplay)
	require.Equal(t, 6.0, inv.InterestPercent)
	require.Equal(t, 3, inv.TermsMonths)
	// the invoice lists everything ordered, including short-stocked lines
	require.Len(t, inv.Lines, 3)
	require.Equal(t, "Mendoza Builders", inv.CustomerName)
	require.Contains(t, inv.CustomerAddress, "Quezon City")
}

func TestDeliveryReceiptExcludesOutOfStockLines(t *testing.T) {
	svc := newBillingService(completedOrderFixture(), nil)

	dr, err := svc.BuildDeliveryReceipt(context.Background(), 7)
	require.NoError(t, err)

	require.Equal(t, "DR-AB12CD34EF", dr.Number)
	require.Len(t, dr.Lines, 2)
	for _, l := range dr.Lines {
		require.NotEqual(t, "Welding Rod Box", l.Description)
	}
	// 40*200 + 10*200, no tax or interest on the delivery receipt
	require.Equal(t, 10000.0, dr.Subtotal)
	require.Equal(t, 10000.0, dr.AmountDue)
	require.Equal(t, "NBC-1234", dr.PlateNumber)
}

func TestDocumentsRequireCompletedOrder(t *testing.T) {
	ord := completedOrderFixture()
	ord.Status = orders.StatusAccepted
	svc := newBillingService(ord, nil)

	_, err := svc.BuildInvoice(context.Background(), 7)
	require.ErrorIs(t, err, httpx.ErrConflict)

	_, err = svc.BuildDeliveryReceipt(context.Background(), 7)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestInvoicePDFRendersHTML(t *testing.T) {
	renderer := &stubRenderer{}
	svc := newBillingService(completedOrderFixture(), renderer)

	pdf, err := svc.InvoicePDF(context.Background(), 7)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	require.Contains(t, renderer.lastHTML, "INV-AB12CD34EF")
	require.Contains(t, renderer.lastHTML, "GI Pipe 2in x 6m")
	require.Contains(t, renderer.lastHTML, "₱12,372.00")
}

func TestPDFWithoutRendererFails(t *testing.T) {
	svc := newBillingService(completedOrderFixture(), nil)

	_, err := svc.InvoicePDF(context.Background(), 7)
	require.Error(t, err)
}

func TestRendererErrorPropagates(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("gotenberg unavailable")}
	svc := newBillingService(completedOrderFixture(), renderer)

	_, err := svc.DeliveryReceiptPDF(context.Background(), 7)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "gotenberg unavailable"))
}
