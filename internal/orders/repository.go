package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/db"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/shared"
)

// Repository provides PostgreSQL backed persistence for orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateOrder inserts the order and its lines in one transaction.
func (r *Repository) CreateOrder(ctx context.Context, order Order, items []OrderItem) (*OrderWithItems, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO orders (
				txn_code, customer_id, po_number, payment_type, terms_months, tax_enabled,
				status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING id, created_at, updated_at`

		var poNumber pgtype.Text
		if order.PONumber != "" {
			poNumber = pgtype.Text{String: order.PONumber, Valid: true}
		}
		if err := tx.QueryRow(ctx, query,
			order.TxnCode, order.CustomerID, poNumber, order.PaymentType,
			order.TermsMonths, order.TaxEnabled, order.Status,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.QueryRow(ctx, `
				INSERT INTO order_items (
					order_id, product_id, description, quantity, unit_price,
					discount_percent, quantity_fulfilled, out_of_stock
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id`,
				items[i].OrderID, items[i].ProductID, items[i].Description,
				items[i].Quantity, items[i].UnitPrice, items[i].DiscountPercent,
				items[i].QuantityFulfilled, items[i].OutOfStock,
			).Scan(&items[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %s", httpx.ErrDuplicate, shared.UserSafeMessage(err))
		}
		return nil, err
	}
	return &OrderWithItems{Order: order, Items: items}, nil
}

// GetOrder retrieves an order with lines and delivery assignment.
func (r *Repository) GetOrder(ctx context.Context, id int64) (*OrderWithItems, error) {
	ord, err := scanOrder(r.pool.QueryRow(ctx, selectOrder+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	delivery, err := r.getDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderWithItems{Order: *ord, Items: items, Delivery: delivery}, nil
}

const selectOrder = `
	SELECT id, txn_code, customer_id, po_number, payment_type, terms_months, tax_enabled, status,
		subtotal, total_discount, sales_tax, interest_percent, interest_amount,
		shipping_fee, grand_total, per_term_amount,
		accepted_by, accepted_at, completed_at, rejected_reason,
		created_at, updated_at
	FROM orders`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var poNumber, acceptedBy, rejectedReason pgtype.Text
	var acceptedAt, completedAt pgtype.Timestamptz
	err := row.Scan(
		&o.ID, &o.TxnCode, &o.CustomerID, &poNumber, &o.PaymentType, &o.TermsMonths, &o.TaxEnabled, &o.Status,
		&o.Subtotal, &o.TotalDiscount, &o.SalesTax, &o.InterestPercent, &o.InterestAmount,
		&o.ShippingFee, &o.GrandTotal, &o.PerTermAmount,
		&acceptedBy, &acceptedAt, &completedAt, &rejectedReason,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.PONumber = poNumber.String
	o.AcceptedBy = acceptedBy.String
	o.RejectedReason = rejectedReason.String
	if acceptedAt.Valid {
		o.AcceptedAt = &acceptedAt.Time
	}
	if completedAt.Valid {
		o.CompletedAt = &completedAt.Time
	}
	return &o, nil
}

func (r *Repository) listItems(ctx context.Context, q dbtx, orderID int64) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, description, quantity, unit_price,
			discount_percent, quantity_fulfilled, out_of_stock
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.Description, &it.Quantity,
			&it.UnitPrice, &it.DiscountPercent, &it.QuantityFulfilled, &it.OutOfStock,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repository) getDelivery(ctx context.Context, orderID int64) (*TruckDelivery, error) {
	var td TruckDelivery
	var scheduledAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `
		SELECT id, order_id, plate_number, driver_name, shipping_fee, scheduled_at, created_at
		FROM truck_deliveries WHERE order_id = $1`, orderID).Scan(
		&td.ID, &td.OrderID, &td.PlateNumber, &td.DriverName, &td.ShippingFee, &scheduledAt, &td.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if scheduledAt.Valid {
		td.ScheduledAt = &scheduledAt.Time
	}
	return &td, nil
}

// ListOrders returns a page of orders plus the filtered total.
func (r *Repository) ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	page := shared.NewPagination(req.Page, req.PerPage, 0)

	where := " WHERE 1=1"
	args := []any{}
	if req.Status != "" {
		args = append(args, string(req.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if req.CustomerID > 0 {
		args = append(args, req.CustomerID)
		where += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectOrder + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

// UpdateOrderItem persists a reviewed line.
func (r *Repository) UpdateOrderItem(ctx context.Context, item OrderItem) (*OrderItem, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE order_items SET
			discount_percent = $3, quantity_fulfilled = $4, out_of_stock = $5
		WHERE id = $1 AND order_id = $2`,
		item.ID, item.OrderID, item.DiscountPercent, item.QuantityFulfilled, item.OutOfStock)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, httpx.ErrNotFound
	}
	return &item, nil
}

// AcceptOrder flips PENDING to ACCEPTED. The status guard in the WHERE clause
// makes concurrent accepts lose cleanly.
func (r *Repository) AcceptOrder(ctx context.Context, id int64, acceptedBy string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status = $2, accepted_by = $3, accepted_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5`,
		id, StatusAccepted, acceptedBy, at, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order is no longer pending", httpx.ErrAlreadyProcessed)
	}
	return nil
}

// RejectOrder flips PENDING to REJECTED.
func (r *Repository) RejectOrder(ctx context.Context, id int64, reason string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status = $2, rejected_reason = $3, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id, StatusRejected, reason, at, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order is no longer pending", httpx.ErrAlreadyProcessed)
	}
	return nil
}

// CompleteOrder persists the totals snapshot and installment schedule in one
// transaction, guarded on the ACCEPTED status.
func (r *Repository) CompleteOrder(ctx context.Context, snap CompletionSnapshot) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders SET
				status = $2,
				subtotal = $3, total_discount = $4, sales_tax = $5,
				interest_percent = $6, interest_amount = $7, shipping_fee = $8,
				grand_total = $9, per_term_amount = $10,
				completed_at = $11, updated_at = NOW()
			WHERE id = $1 AND status = $12`,
			snap.OrderID, StatusCompleted,
			snap.Subtotal, snap.TotalDiscount, snap.SalesTax,
			snap.InterestPercent, snap.InterestAmount, snap.ShippingFee,
			snap.GrandTotal, snap.PerTermAmount,
			snap.CompletedAt, StatusAccepted)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: order is not in accepted status", httpx.ErrConflict)
		}

		for _, t := range snap.Terms {
			if _, err := tx.Exec(ctx, `
				INSERT INTO installment_terms (order_id, term_no, due_date, amount_due, amount_paid, status)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				snap.OrderID, t.TermNo, t.DueDate, t.AmountDue, t.AmountPaid, t.Status); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertTruckDelivery assigns or updates the truck delivery for an order.
func (r *Repository) UpsertTruckDelivery(ctx context.Context, td TruckDelivery) (*TruckDelivery, error) {
	query := `
		INSERT INTO truck_deliveries (order_id, plate_number, driver_name, shipping_fee, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (order_id) DO UPDATE SET
			plate_number = EXCLUDED.plate_number,
			driver_name = EXCLUDED.driver_name,
			shipping_fee = EXCLUDED.shipping_fee,
			scheduled_at = EXCLUDED.scheduled_at
		RETURNING id, created_at`

	var scheduledAt pgtype.Timestamptz
	if td.ScheduledAt != nil {
		scheduledAt = pgtype.Timestamptz{Time: *td.ScheduledAt, Valid: true}
	}
	err := r.pool.QueryRow(ctx, query,
		td.OrderID, td.PlateNumber, td.DriverName, td.ShippingFee, scheduledAt,
	).Scan(&td.ID, &td.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &td, nil
}
