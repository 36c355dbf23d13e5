package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/installment"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/db"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for payments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectPayment = `
	SELECT id, reference, order_id, amount, method, cheque_number, bank_name, cheque_date,
		image_url, status, notice, submitted_at, verified_by, verified_at, rejected_reason
	FROM payments`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	var chequeNumber, bankName, imageURL, notice, verifiedBy, rejectedReason pgtype.Text
	var chequeDate, verifiedAt pgtype.Timestamptz
	err := row.Scan(
		&p.ID, &p.Reference, &p.OrderID, &p.Amount, &p.Method, &chequeNumber, &bankName, &chequeDate,
		&imageURL, &p.Status, &notice, &p.SubmittedAt, &verifiedBy, &verifiedAt, &rejectedReason,
	)
	if err != nil {
		return nil, err
	}
	p.ChequeNumber = chequeNumber.String
	p.BankName = bankName.String
	p.ImageURL = imageURL.String
	p.Notice = notice.String
	p.VerifiedBy = verifiedBy.String
	p.RejectedReason = rejectedReason.String
	if chequeDate.Valid {
		p.ChequeDate = &chequeDate.Time
	}
	if verifiedAt.Valid {
		p.VerifiedAt = &verifiedAt.Time
	}
	return &p, nil
}

// CreatePayment inserts a pending payment row.
func (r *Repository) CreatePayment(ctx context.Context, p Payment) (*Payment, error) {
	query := `
		INSERT INTO payments (
			reference, order_id, amount, method, cheque_number, bank_name, cheque_date,
			image_url, status, notice, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var chequeDate pgtype.Timestamptz
	if p.ChequeDate != nil {
		chequeDate = pgtype.Timestamptz{Time: *p.ChequeDate, Valid: true}
	}
	err := r.pool.QueryRow(ctx, query,
		p.Reference, p.OrderID, p.Amount, p.Method, p.ChequeNumber, p.BankName, chequeDate,
		p.ImageURL, p.Status, p.Notice, p.SubmittedAt,
	).Scan(&p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPayment retrieves a payment by ID.
func (r *Repository) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, selectPayment+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	return p, err
}

// ListPaymentsByOrder returns payments for an order, newest first.
func (r *Repository) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	return r.list(ctx, selectPayment+" WHERE order_id = $1 ORDER BY submitted_at DESC", orderID)
}

// ListPending returns payments awaiting verification, oldest first.
func (r *Repository) ListPending(ctx context.Context) ([]Payment, error) {
	return r.list(ctx, selectPayment+" WHERE status = $1 ORDER BY submitted_at", StatusPending)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// SumByStatus returns the received total and the pending cash total for an
// order. Pending cheques are deliberately left out of both.
func (r *Repository) SumByStatus(ctx context.Context, orderID int64) (received, pendingCash float64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status = 'received'), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = 'pending' AND method = 'cash'), 0)
		FROM payments WHERE order_id = $1`, orderID).Scan(&received, &pendingCash)
	return
}

// GetSchedule loads the installment rows for an order.
func (r *Repository) GetSchedule(ctx context.Context, orderID int64) ([]installment.Term, error) {
	return scanTerms(r.pool.Query(ctx, `
		SELECT term_no, due_date, amount_due, amount_paid, status
		FROM installment_terms WHERE order_id = $1 ORDER BY term_no`, orderID))
}

func scanTerms(rows pgx.Rows, err error) ([]installment.Term, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []installment.Term
	for rows.Next() {
		var t installment.Term
		if err := rows.Scan(&t.TermNo, &t.DueDate, &t.AmountDue, &t.AmountPaid, &t.Status); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// CountOverdueTerms counts unpaid installment terms whose due date has passed.
func (r *Repository) CountOverdueTerms(ctx context.Context, asOf time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM installment_terms
		WHERE status <> 'paid' AND due_date < $1`, asOf).Scan(&n)
	return n, err
}

// CountPendingPayments counts payments awaiting verification.
func (r *Repository) CountPendingPayments(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM payments WHERE status = $1`, StatusPending).Scan(&n)
	return n, err
}

// ReceivePayment locks the payment row, refuses anything not pending, runs
// apply over the locked schedule and persists payment and terms in the same
// transaction. Two admins receiving the same payment serialize on the row
// lock; the loser sees a non-pending status and gets ErrAlreadyProcessed.
func (r *Repository) ReceivePayment(ctx context.Context, id int64, verifiedBy string, at time.Time,
	apply func(p *Payment, terms []installment.Term) ([]installment.Term, error)) (*Payment, error) {

	var result *Payment
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		p, err := scanPayment(tx.QueryRow(ctx, selectPayment+" WHERE id = $1 FOR UPDATE", id))
		if errors.Is(err, pgx.ErrNoRows) {
			return httpx.ErrNotFound
		}
		if err != nil {
			return err
		}
		if p.Status != StatusPending {
			return fmt.Errorf("%w: payment %s is already %s", httpx.ErrAlreadyProcessed, p.Reference, p.Status)
		}

		terms, err := scanTerms(tx.Query(ctx, `
			SELECT term_no, due_date, amount_due, amount_paid, status
			FROM installment_terms WHERE order_id = $1 ORDER BY term_no FOR UPDATE`, p.OrderID))
		if err != nil {
			return err
		}

		updated, err := apply(p, terms)
		if err != nil {
			return err
		}

		p.Status = StatusReceived
		p.VerifiedBy = verifiedBy
		p.VerifiedAt = &at
		if _, err := tx.Exec(ctx, `
			UPDATE payments SET status = $2, verified_by = $3, verified_at = $4
			WHERE id = $1`, id, p.Status, verifiedBy, at); err != nil {
			return err
		}

		for _, t := range updated {
			if _, err := tx.Exec(ctx, `
				UPDATE installment_terms SET amount_paid = $3, status = $4
				WHERE order_id = $1 AND term_no = $2`,
				p.OrderID, t.TermNo, t.AmountPaid, t.Status); err != nil {
				return err
			}
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RejectPayment declines a pending payment via compare-and-swap on the status
// column. Zero rows affected means someone else got there first.
func (r *Repository) RejectPayment(ctx context.Context, id int64, reason, rejectedBy string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments SET status = $2, rejected_reason = $3, verified_by = $4, verified_at = $5
		WHERE id = $1 AND status = $6`,
		id, StatusRejected, reason, rejectedBy, at, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment is no longer pending", httpx.ErrAlreadyProcessed)
	}
	return nil
}
