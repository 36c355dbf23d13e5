package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/shared"
)

// RepositoryPort defines data access methods for customers.
type RepositoryPort interface {
	CreateCustomer(ctx context.Context, c Customer) (*Customer, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	ListCustomers(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
	UpdateCustomer(ctx context.Context, c Customer) (*Customer, error)
}

// Service handles customer account logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateCustomer registers a new customer account with a generated code.
func (s *Service) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*Customer, error) {
	if input.Name == "" {
		return nil, errors.New("name required")
	}
	if input.Email == "" {
		return nil, errors.New("email required")
	}
	cust := Customer{
		Code:        shared.NewCustomerCode(),
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		CreditLimit: input.CreditLimit,
	}
	created, err := s.repo.CreateCustomer(ctx, cust)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

// GetCustomer returns a single customer.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// ListCustomers returns customers with pagination metadata.
func (s *Service) ListCustomers(ctx context.Context, req ListCustomersRequest) ([]Customer, shared.Pagination, error) {
	items, total, err := s.repo.ListCustomers(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// UpdateCustomer applies profile changes. Unset fields stay as stored.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, input UpdateCustomerInput) (*Customer, error) {
	existing, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		existing.Name = input.Name
	}
	if input.Phone != "" {
		existing.Phone = input.Phone
	}
	if input.Address != nil {
		existing.Address = *input.Address
	}
	if input.CreditLimit != nil {
		if *input.CreditLimit < 0 {
			return nil, errors.New("credit limit must not be negative")
		}
		existing.CreditLimit = *input.CreditLimit
	}
	return s.repo.UpdateCustomer(ctx, *existing)
}
