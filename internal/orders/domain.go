package orders

import (
	"time"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/installment"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/pricing"
)

// OrderStatus enumerates the order workflow states.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusRejected  OrderStatus = "REJECTED"
)

// Order model. Totals fields hold the pricing snapshot written at completion
// and stay frozen afterwards; until then they are zero.
type Order struct {
	ID          int64               `json:"id"`
	TxnCode     string              `json:"txn_code"`
	CustomerID  int64               `json:"customer_id"`
	PONumber    string              `json:"po_number"`
	PaymentType pricing.PaymentType `json:"payment_type"`
	TermsMonths int                 `json:"terms_months"`
	TaxEnabled  bool                `json:"tax_enabled"`
	Status      OrderStatus         `json:"status"`

	Subtotal        float64 `json:"subtotal"`
	TotalDiscount   float64 `json:"total_discount"`
	SalesTax        float64 `json:"sales_tax"`
	InterestPercent float64 `json:"interest_percent"`
	InterestAmount  float64 `json:"interest_amount"`
	ShippingFee     float64 `json:"shipping_fee"`
	GrandTotal      float64 `json:"grand_total"`
	PerTermAmount   float64 `json:"per_term_amount"`

	AcceptedBy     string     `json:"accepted_by,omitempty"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	RejectedReason string     `json:"rejected_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// OrderItem carries the catalog snapshot taken at placement.
type OrderItem struct {
	ID                int64   `json:"id"`
	OrderID           int64   `json:"order_id"`
	ProductID         int64   `json:"product_id"`
	Description       string  `json:"description"`
	Quantity          float64 `json:"quantity"`
	UnitPrice         float64 `json:"unit_price"`
	DiscountPercent   float64 `json:"discount_percent"`
	QuantityFulfilled float64 `json:"quantity_fulfilled"`
	OutOfStock        bool    `json:"out_of_stock"`
}

// PricingLine converts an item to a calculator line.
func (it OrderItem) PricingLine() pricing.Line {
	return pricing.Line{
		Quantity:        it.Quantity,
		UnitPrice:       it.UnitPrice,
		DiscountPercent: it.DiscountPercent,
		OutOfStock:      it.OutOfStock,
	}
}

// TruckDelivery assigns an order to a truck and carries the shipping fee.
type TruckDelivery struct {
	ID          int64      `json:"id"`
	OrderID     int64      `json:"order_id"`
	PlateNumber string     `json:"plate_number"`
	DriverName  string     `json:"driver_name"`
	ShippingFee float64    `json:"shipping_fee"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// OrderWithItems aggregates an order, its lines and delivery assignment.
type OrderWithItems struct {
	Order
	Items    []OrderItem    `json:"items"`
	Delivery *TruckDelivery `json:"delivery,omitempty"`
}

// CreateOrderInput places a new pending order.
type CreateOrderInput struct {
	CustomerID  int64
	PONumber    string
	PaymentType pricing.PaymentType
	TermsMonths int
	TaxEnabled  bool
	Items       []CreateOrderItemInput
}

// CreateOrderItemInput is one placed line.
type CreateOrderItemInput struct {
	ProductID       int64
	Description     string
	Quantity        float64
	UnitPrice       float64
	DiscountPercent float64
	OutOfStock      bool
}

// UpdateItemInput edits a line during review. Nil fields stay unchanged.
type UpdateItemInput struct {
	DiscountPercent   *float64 `json:"discount_percent"`
	QuantityFulfilled *float64 `json:"quantity_fulfilled" validate:"omitempty,gte=0"`
	OutOfStock        *bool    `json:"out_of_stock"`
}

// TruckDeliveryInput assigns or updates the truck delivery for an order.
type TruckDeliveryInput struct {
	PlateNumber string     `json:"plate_number"`
	DriverName  string     `json:"driver_name"`
	ShippingFee float64    `json:"shipping_fee" validate:"gte=0"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// CompleteOrderInput finalises an accepted order.
type CompleteOrderInput struct {
	// InterestOverride replaces the term-table percent when set. Ignored for
	// cash orders, which always carry zero interest.
	InterestOverride *float64  `json:"interest_percent"`
	FirstDueDate     time.Time `json:"first_due_date"`
}

// CompletionSnapshot is everything the repository persists atomically when an
// order completes: the frozen totals plus the installment schedule.
type CompletionSnapshot struct {
	OrderID         int64
	Subtotal        float64
	TotalDiscount   float64
	SalesTax        float64
	InterestPercent float64
	InterestAmount  float64
	ShippingFee     float64
	GrandTotal      float64
	PerTermAmount   float64
	CompletedAt     time.Time
	Terms           []installment.Term
}

// ListOrdersRequest filters the order listing.
type ListOrdersRequest struct {
	Status     OrderStatus
	CustomerID int64
	Page       int
	PerPage    int
}
