package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertProduct inserts or updates a product keyed by SKU.
func (r *Repository) UpsertProduct(ctx context.Context, input UpsertProductInput) (*Product, error) {
	query := `
		INSERT INTO products (sku, name, category, subcategory, unit, unit_price, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			subcategory = EXCLUDED.subcategory,
			unit = EXCLUDED.unit,
			unit_price = EXCLUDED.unit_price,
			stock_quantity = EXCLUDED.stock_quantity,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	p := Product{
		SKU:           input.SKU,
		Name:          input.Name,
		Category:      input.Category,
		Subcategory:   input.Subcategory,
		Unit:          input.Unit,
		UnitPrice:     input.UnitPrice,
		StockQuantity: input.StockQuantity,
	}
	err := r.pool.QueryRow(ctx, query,
		p.SKU, p.Name, p.Category, p.Subcategory, p.Unit, p.UnitPrice, p.StockQuantity,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProduct retrieves a product by ID.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	query := `
		SELECT id, sku, name, category, subcategory, unit, unit_price, stock_quantity, created_at, updated_at
		FROM products WHERE id = $1`

	var p Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Category, &p.Subcategory, &p.Unit,
		&p.UnitPrice, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns a page of products plus the filtered total.
func (r *Repository) ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	page := shared.NewPagination(req.Page, req.PerPage, 0)

	where := " WHERE 1=1"
	args := []any{}
	if req.Search != "" {
		args = append(args, "%"+req.Search+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args))
	}
	if req.Category != "" {
		args = append(args, req.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, sku, name, category, subcategory, unit, unit_price, stock_quantity, created_at, updated_at
		FROM products` + where +
		fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.SKU, &p.Name, &p.Category, &p.Subcategory, &p.Unit,
			&p.UnitPrice, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// SnapshotProducts returns price and stock for the given IDs.
func (r *Repository) SnapshotProducts(ctx context.Context, ids []int64) (map[int64]Snapshot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, unit_price, stock_quantity FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]Snapshot, len(ids))
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ProductID, &s.Name, &s.UnitPrice, &s.StockQuantity); err != nil {
			return nil, err
		}
		out[s.ProductID] = s
	}
	return out, rows.Err()
}

// AdjustStock moves stock by delta and refuses to go below zero.
func (r *Repository) AdjustStock(ctx context.Context, id int64, delta int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		 WHERE id = $1 AND stock_quantity + $2 >= 0`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: insufficient stock for product %d", httpx.ErrConflict, id)
	}
	return nil
}
