package billing

import "time"

// DocumentLine is one row on an invoice or delivery receipt.
type DocumentLine struct {
	Description     string  `json:"description"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	Amount          float64 `json:"amount"`
	AmountDisplay   string  `json:"amount_display"`
}

// Invoice is the billing document generated from a completed order's frozen
// totals snapshot.
type Invoice struct {
	Number          string         `json:"number"`
	TxnCode         string         `json:"txn_code"`
	OrderID         int64          `json:"order_id"`
	CustomerName    string         `json:"customer_name"`
	CustomerAddress string         `json:"customer_address"`
	IssuedAt        time.Time      `json:"issued_at"`
	Lines           []DocumentLine `json:"lines"`

	Subtotal        float64 `json:"subtotal"`
	TotalDiscount   float64 `json:"total_discount"`
	SalesTax        float64 `json:"sales_tax"`
	InterestPercent float64 `json:"interest_percent"`
	InterestAmount  float64 `json:"interest_amount"`
	ShippingFee     float64 `json:"shipping_fee"`
	GrandTotal      float64 `json:"grand_total"`
	PerTermAmount   float64 `json:"per_term_amount"`
	TermsMonths     int     `json:"terms_months"`

	GrandTotalDisplay string `json:"grand_total_display"`
}

// DeliveryReceipt lists only the goods going on the truck: out-of-stock
// lines are excluded and the totals cover delivered goods only.
type DeliveryReceipt struct {
	Number          string         `json:"number"`
	TxnCode         string         `json:"txn_code"`
	OrderID         int64          `json:"order_id"`
	CustomerName    string         `json:"customer_name"`
	CustomerAddress string         `json:"customer_address"`
	IssuedAt        time.Time      `json:"issued_at"`
	PlateNumber     string         `json:"plate_number,omitempty"`
	DriverName      string         `json:"driver_name,omitempty"`
	Lines           []DocumentLine `json:"lines"`

	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"total_discount"`
	AmountDue     float64 `json:"amount_due"`

	AmountDueDisplay string `json:"amount_due_display"`
}
