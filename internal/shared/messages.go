package shared

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// knownMessages maps constraint and error substrings to messages safe to show
// to a customer or admin.
var knownMessages = []struct {
	substr  string
	message string
}{
	{"orders_po_number_key", "A purchase order with this PO number already exists."},
	{"customers_email_key", "A customer with this email already exists."},
	{"customers_code_key", "A customer with this code already exists."},
	{"payments_reference_key", "This payment reference was already submitted."},
	{"idempotency_keys_pkey", "This request was already processed."},
}

// UserSafeMessage converts internal errors into text that can be rendered to
// end users without leaking SQL or driver details.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, km := range knownMessages {
			if strings.Contains(pgErr.ConstraintName, km.substr) || strings.Contains(pgErr.Message, km.substr) {
				return km.message
			}
		}
		if pgErr.Code == "23505" {
			return "A record with these details already exists."
		}
		return "Something went wrong while saving. Please try again."
	}
	msg := err.Error()
	for _, km := range knownMessages {
		if strings.Contains(msg, km.substr) {
			return km.message
		}
	}
	return msg
}
