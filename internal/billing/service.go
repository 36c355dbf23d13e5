// Package billing assembles invoices and delivery receipts from completed
// orders and exports them as PDF through Gotenberg.
package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/customers"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/orders"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/pricing"
)

// OrdersPort resolves the order being billed.
type OrdersPort interface {
	GetOrder(ctx context.Context, id int64) (*orders.OrderWithItems, error)
}

// CustomersPort resolves the buyer shown on the document.
type CustomersPort interface {
	GetCustomer(ctx context.Context, id int64) (*customers.Customer, error)
}

// PDFRenderer converts document HTML to PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Service builds billing documents.
type Service struct {
	orders    OrdersPort
	customers CustomersPort
	pdf       PDFRenderer
}

// NewService builds Service instance. pdf may be nil when PDF export is not
// wired, e.g. in tests.
func NewService(ordersPort OrdersPort, customersPort CustomersPort, pdf PDFRenderer) *Service {
	return &Service{orders: ordersPort, customers: customersPort, pdf: pdf}
}

func (s *Service) billedOrder(ctx context.Context, orderID int64) (*orders.OrderWithItems, *customers.Customer, error) {
	ord, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if ord.Status != orders.StatusCompleted {
		return nil, nil, fmt.Errorf("%w: documents are issued for completed orders only", httpx.ErrConflict)
	}
	cust, err := s.customers.GetCustomer(ctx, ord.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	return ord, cust, nil
}

func formatAddress(a customers.Address) string {
	parts := []string{a.Street, a.Barangay, a.CityMunicipality, a.Province, a.Region}
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func documentLine(it orders.OrderItem) DocumentLine {
	amount := pricing.Round2(it.PricingLine().Net())
	return DocumentLine{
		Description:     it.Description,
		Quantity:        it.Quantity,
		UnitPrice:       it.UnitPrice,
		DiscountPercent: it.DiscountPercent,
		Amount:          amount,
		AmountDisplay:   Peso(amount),
	}
}

// BuildInvoice assembles the invoice from the order's frozen totals snapshot.
// Nothing is recomputed here; the totals were fixed at completion.
func (s *Service) BuildInvoice(ctx context.Context, orderID int64) (*Invoice, error) {
	ord, cust, err := s.billedOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		Number:          strings.Replace(ord.TxnCode, "TXN-", "INV-", 1),
		TxnCode:         ord.TxnCode,
		OrderID:         ord.ID,
		CustomerName:    cust.Name,
		CustomerAddress: formatAddress(cust.Address),
		IssuedAt:        time.Now(),

		Subtotal:        ord.Subtotal,
		TotalDiscount:   ord.TotalDiscount,
		SalesTax:        ord.SalesTax,
		InterestPercent: ord.InterestPercent,
		InterestAmount:  ord.InterestAmount,
		ShippingFee:     ord.ShippingFee,
		GrandTotal:      ord.GrandTotal,
		PerTermAmount:   ord.PerTermAmount,
		TermsMonths:     ord.TermsMonths,

		GrandTotalDisplay: Peso(ord.GrandTotal),
	}
	for _, it := range ord.Items {
		inv.Lines = append(inv.Lines, documentLine(it))
	}
	return inv, nil
}

// BuildDeliveryReceipt assembles the delivery receipt. Out-of-stock lines
// never reach the truck, so they are dropped and the totals cover delivered
// goods only.
func (s *Service) BuildDeliveryReceipt(ctx context.Context, orderID int64) (*DeliveryReceipt, error) {
	ord, cust, err := s.billedOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	dr := &DeliveryReceipt{
		Number:          strings.Replace(ord.TxnCode, "TXN-", "DR-", 1),
		TxnCode:         ord.TxnCode,
		OrderID:         ord.ID,
		CustomerName:    cust.Name,
		CustomerAddress: formatAddress(cust.Address),
		IssuedAt:        time.Now(),
	}
	if ord.Delivery != nil {
		dr.PlateNumber = ord.Delivery.PlateNumber
		dr.DriverName = ord.Delivery.DriverName
	}

	var lines []pricing.Line
	for _, it := range ord.Items {
		if it.OutOfStock {
			continue
		}
		dr.Lines = append(dr.Lines, documentLine(it))
		lines = append(lines, it.PricingLine())
	}
	totals := pricing.Summarize(lines, pricing.SubtotalPolicy{ExcludeOutOfStock: true})
	dr.Subtotal = pricing.Round2(totals.Subtotal)
	dr.TotalDiscount = pricing.Round2(totals.TotalDiscount)
	dr.AmountDue = pricing.Round2(totals.AfterDiscount)
	dr.AmountDueDisplay = Peso(dr.AmountDue)
	return dr, nil
}

// InvoicePDF renders the invoice to PDF.
func (s *Service) InvoicePDF(ctx context.Context, orderID int64) ([]byte, error) {
	inv, err := s.BuildInvoice(ctx, orderID)
	if err != nil {
		return nil, err
	}
	html, err := renderInvoiceHTML(inv)
	if err != nil {
		return nil, err
	}
	return s.renderPDF(ctx, html)
}

// DeliveryReceiptPDF renders the delivery receipt to PDF.
func (s *Service) DeliveryReceiptPDF(ctx context.Context, orderID int64) ([]byte, error) {
	dr, err := s.BuildDeliveryReceipt(ctx, orderID)
	if err != nil {
		return nil, err
	}
	html, err := renderDeliveryReceiptHTML(dr)
	if err != nil {
		return nil, err
	}
	return s.renderPDF(ctx, html)
}

func (s *Service) renderPDF(ctx context.Context, html string) ([]byte, error) {
	if s.pdf == nil {
		return nil, fmt.Errorf("pdf export is not configured")
	}
	return s.pdf.RenderHTML(ctx, html)
}
