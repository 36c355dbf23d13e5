package app

import (
	"context"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/orders"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/payments"
)

// OrderSnapshotAdapter exposes the orders service to payments without the
// packages importing each other.
type OrderSnapshotAdapter struct {
	Orders *orders.Service
}

// PaymentSnapshot returns the fields payments validate submissions against.
func (a OrderSnapshotAdapter) PaymentSnapshot(ctx context.Context, orderID int64) (payments.OrderSnapshot, error) {
	ord, err := a.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return payments.OrderSnapshot{}, err
	}
	return payments.OrderSnapshot{
		OrderID:       ord.ID,
		GrandTotal:    ord.GrandTotal,
		PaymentType:   ord.PaymentType,
		TermsMonths:   ord.TermsMonths,
		PerTermAmount: ord.PerTermAmount,
		Completed:     ord.Status == orders.StatusCompleted,
	}, nil
}
