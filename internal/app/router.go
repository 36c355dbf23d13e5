package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/addressbook"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/billing"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/catalog"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/checkout"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/customers"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/observability"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/orders"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/payments"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	CustomersHandler   *customers.Handler
	CatalogHandler     *catalog.Handler
	OrdersHandler      *orders.Handler
	PaymentsHandler    *payments.Handler
	CheckoutHandler    *checkout.Handler
	AddressBookHandler *addressbook.Handler
	BillingHandler     *billing.Handler
	JobHandler         *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.CustomersHandler != nil {
		r.Route("/customers", params.CustomersHandler.MountRoutes)
	}
	if params.CatalogHandler != nil {
		r.Route("/catalog", params.CatalogHandler.MountRoutes)
	}
	if params.OrdersHandler != nil {
		r.Route("/orders", params.OrdersHandler.MountRoutes)
	}
	if params.PaymentsHandler != nil {
		r.Route("/payments", params.PaymentsHandler.MountRoutes)
	}
	if params.CheckoutHandler != nil {
		r.Route("/checkout", params.CheckoutHandler.MountRoutes)
	}
	if params.AddressBookHandler != nil {
		r.Route("/addresses", params.AddressBookHandler.MountRoutes)
	}
	if params.BillingHandler != nil {
		r.Route("/documents", params.BillingHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
