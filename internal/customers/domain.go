package customers

import "time"

// Address holds a Philippine delivery address keyed by PSGC names.
type Address struct {
	Region           string `json:"region"`
	Province         string `json:"province"`
	CityMunicipality string `json:"city_municipality"`
	Barangay         string `json:"barangay"`
	Street           string `json:"street"`
	PostalCode       string `json:"postal_code"`
	Landmark         string `json:"landmark"`
}

// Customer model.
type Customer struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     Address   `json:"address"`
	CreditLimit float64   `json:"credit_limit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCustomerInput for registering customer accounts.
type CreateCustomerInput struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone"`
	Address     Address `json:"address"`
	CreditLimit float64 `json:"credit_limit" validate:"gte=0"`
}

// UpdateCustomerInput for profile updates. Zero values leave fields untouched.
type UpdateCustomerInput struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Address     *Address `json:"address"`
	CreditLimit *float64 `json:"credit_limit" validate:"omitempty,gte=0"`
}

// ListCustomersRequest filters the customer listing.
type ListCustomersRequest struct {
	Search  string
	Page    int
	PerPage int
}
