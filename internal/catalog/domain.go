package catalog

import "time"

// Product model. Prices are per unit in pesos.
type Product struct {
	ID            int64     `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory"`
	Unit          string    `json:"unit"`
	UnitPrice     float64   `json:"unit_price"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot is the slice of product state checkout copies onto order lines.
// Orders keep these values even when the catalog changes afterwards.
type Snapshot struct {
	ProductID     int64
	Name          string
	UnitPrice     float64
	StockQuantity int
}

// ListProductsRequest filters the product listing.
type ListProductsRequest struct {
	Search   string
	Category string
	Page     int
	PerPage  int
}

// UpsertProductInput for creating or updating catalog entries.
type UpsertProductInput struct {
	SKU           string  `json:"sku" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Category      string  `json:"category"`
	Subcategory   string  `json:"subcategory"`
	Unit          string  `json:"unit"`
	UnitPrice     float64 `json:"unit_price" validate:"gte=0"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
}
