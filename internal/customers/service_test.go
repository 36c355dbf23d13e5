package customers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryCustomerRepo struct {
	customers map[int64]*Customer
	nextID    int64
}

func newMemoryCustomerRepo() *memoryCustomerRepo {
	return &memoryCustomerRepo{customers: make(map[int64]*Customer)}
}

func (r *memoryCustomerRepo) CreateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.customers[c.ID] = &c
	return &c, nil
}

func (r *memoryCustomerRepo) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memoryCustomerRepo) ListCustomers(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range r.customers {
		if req.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(req.Search)) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *memoryCustomerRepo) UpdateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	if _, ok := r.customers[c.ID]; !ok {
		return nil, errNotFound
	}
	c.UpdatedAt = time.Now()
	r.customers[c.ID] = &c
	return &c, nil
}

var errNotFound = errors.New("customer not found")

func TestCreateCustomerGeneratesCode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	cust, err := svc.CreateCustomer(ctx, CreateCustomerInput{
		Name:  "Aling Nena Hardware",
		Email: "nena@example.ph",
		Address: Address{
			Region:           "NCR",
			CityMunicipality: "Quezon City",
			Barangay:         "Batasan Hills",
		},
	})
	require.NoError(t, err)
	require.NotZero(t, cust.ID)
	require.True(t, strings.HasPrefix(cust.Code, "CUST-"))
	require.Equal(t, "Quezon City", cust.Address.CityMunicipality)
}

func TestCreateCustomerRequiresNameAndEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	_, err := svc.CreateCustomer(ctx, CreateCustomerInput{Email: "a@b.ph"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "name required")

	_, err = svc.CreateCustomer(ctx, CreateCustomerInput{Name: "X"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "email required")
}

func TestUpdateCustomerPartial(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	cust, err := svc.CreateCustomer(ctx, CreateCustomerInput{Name: "Old Name", Email: "x@y.ph", Phone: "0917"})
	require.NoError(t, err)

	updated, err := svc.UpdateCustomer(ctx, cust.ID, UpdateCustomerInput{Name: "New Name"})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.Equal(t, "0917", updated.Phone)
}

func TestUpdateCustomerRejectsNegativeCreditLimit(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	cust, err := svc.CreateCustomer(ctx, CreateCustomerInput{Name: "N", Email: "n@y.ph"})
	require.NoError(t, err)

	bad := -5.0
	_, err = svc.UpdateCustomer(ctx, cust.ID, UpdateCustomerInput{CreditLimit: &bad})
	require.Error(t, err)
}
