// Package checkout turns a customer's cart into a pending order. The customer
// flow never sets discounts or interest overrides; those stay with the admin
// order review.
package checkout

import (
	"context"
	"fmt"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/catalog"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/customers"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/orders"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/pricing"
)

// CartItem is one line in the customer's cart.
type CartItem struct {
	ProductID int64   `json:"product_id" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
}

// CheckoutInput is the customer checkout request.
type CheckoutInput struct {
	CustomerID      int64               `json:"customer_id" validate:"required"`
	PONumber        string              `json:"po_number"`
	PaymentType     pricing.PaymentType `json:"payment_type" validate:"required,oneof=Cash Credit"`
	TermsMonths     int                 `json:"terms_months"`
	Items           []CartItem          `json:"items" validate:"min=1,dive"`
	DeliveryAddress *customers.Address  `json:"delivery_address"`
}

// CatalogPort supplies price and stock snapshots.
type CatalogPort interface {
	SnapshotProducts(ctx context.Context, ids []int64) (map[int64]catalog.Snapshot, error)
}

// OrdersPort places the pending order.
type OrdersPort interface {
	CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderWithItems, error)
}

// CustomersPort resolves the buyer and stores address changes.
type CustomersPort interface {
	GetCustomer(ctx context.Context, id int64) (*customers.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, input customers.UpdateCustomerInput) (*customers.Customer, error)
}

// Service handles checkout.
type Service struct {
	catalog   CatalogPort
	orders    OrdersPort
	customers CustomersPort
}

// NewService builds Service instance.
func NewService(catalogPort CatalogPort, ordersPort OrdersPort, customersPort CustomersPort) *Service {
	return &Service{catalog: catalogPort, orders: ordersPort, customers: customersPort}
}

// PlaceOrder copies the current catalog price onto each cart line, flags
// lines short on stock and places a pending order. Sales tax is always on for
// the customer flow; the admin can toggle it during review.
func (s *Service) PlaceOrder(ctx context.Context, input CheckoutInput) (*orders.OrderWithItems, error) {
	cust, err := s.customers.GetCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: customer %d", httpx.ErrNotFound, input.CustomerID)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", httpx.ErrValidation)
	}

	ids := make([]int64, 0, len(input.Items))
	for _, it := range input.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
		}
		ids = append(ids, it.ProductID)
	}
	snaps, err := s.catalog.SnapshotProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}

	items := make([]orders.CreateOrderItemInput, 0, len(input.Items))
	for _, it := range input.Items {
		snap := snaps[it.ProductID]
		items = append(items, orders.CreateOrderItemInput{
			ProductID:   it.ProductID,
			Description: snap.Name,
			Quantity:    it.Quantity,
			UnitPrice:   snap.UnitPrice,
			OutOfStock:  float64(snap.StockQuantity) < it.Quantity,
		})
	}

	if input.DeliveryAddress != nil {
		if _, err := s.customers.UpdateCustomer(ctx, cust.ID, customers.UpdateCustomerInput{Address: input.DeliveryAddress}); err != nil {
			return nil, fmt.Errorf("update delivery address: %w", err)
		}
	}

	return s.orders.CreateOrder(ctx, orders.CreateOrderInput{
		CustomerID:  cust.ID,
		PONumber:    input.PONumber,
		PaymentType: input.PaymentType,
		TermsMonths: input.TermsMonths,
		TaxEnabled:  true,
		Items:       items,
	})
}
