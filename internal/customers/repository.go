package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/shared"
)

// Repository provides PostgreSQL backed persistence for customers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateCustomer inserts a new customer row.
func (r *Repository) CreateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	query := `
		INSERT INTO customers (
			code, name, email, phone,
			region, province, city_municipality, barangay, street, postal_code, landmark,
			credit_limit, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		c.Code, c.Name, c.Email, c.Phone,
		c.Address.Region, c.Address.Province, c.Address.CityMunicipality,
		c.Address.Barangay, c.Address.Street, c.Address.PostalCode, c.Address.Landmark,
		c.CreditLimit,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %s", httpx.ErrDuplicate, shared.UserSafeMessage(err))
		}
		return nil, err
	}
	return &c, nil
}

// GetCustomer retrieves a customer by ID.
func (r *Repository) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	query := `
		SELECT id, code, name, email, phone,
			region, province, city_municipality, barangay, street, postal_code, landmark,
			credit_limit, created_at, updated_at
		FROM customers
		WHERE id = $1`

	var c Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone,
		&c.Address.Region, &c.Address.Province, &c.Address.CityMunicipality,
		&c.Address.Barangay, &c.Address.Street, &c.Address.PostalCode, &c.Address.Landmark,
		&c.CreditLimit, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomers returns a page of customers plus the unfiltered total.
func (r *Repository) ListCustomers(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	page := shared.NewPagination(req.Page, req.PerPage, 0)

	where := ""
	args := []any{}
	if req.Search != "" {
		where = " WHERE name ILIKE $1 OR email ILIKE $1 OR code ILIKE $1"
		args = append(args, "%"+req.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, code, name, email, phone,
			region, province, city_municipality, barangay, street, postal_code, landmark,
			credit_limit, created_at, updated_at
		FROM customers` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone,
			&c.Address.Region, &c.Address.Province, &c.Address.CityMunicipality,
			&c.Address.Barangay, &c.Address.Street, &c.Address.PostalCode, &c.Address.Landmark,
			&c.CreditLimit, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// UpdateCustomer persists profile changes.
func (r *Repository) UpdateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	query := `
		UPDATE customers SET
			name = $2, phone = $3,
			region = $4, province = $5, city_municipality = $6, barangay = $7,
			street = $8, postal_code = $9, landmark = $10,
			credit_limit = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		c.ID, c.Name, c.Phone,
		c.Address.Region, c.Address.Province, c.Address.CityMunicipality, c.Address.Barangay,
		c.Address.Street, c.Address.PostalCode, c.Address.Landmark,
		c.CreditLimit,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
