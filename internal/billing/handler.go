package billing

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
)

// Handler manages billing document endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers billing document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders/{id}/invoice", h.invoice)
	r.Get("/orders/{id}/invoice.pdf", h.invoicePDF)
	r.Get("/orders/{id}/delivery-receipt", h.deliveryReceipt)
	r.Get("/orders/{id}/delivery-receipt.pdf", h.deliveryReceiptPDF)
}

func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.BuildInvoice(r.Context(), id)
	if err != nil {
		h.logger.Error("build invoice", slog.Any("error", err), slog.Int64("order_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	pdf, err := h.service.InvoicePDF(r.Context(), id)
	if err != nil {
		h.logger.Error("render invoice pdf", slog.Any("error", err), slog.Int64("order_id", id))
		httpx.RespondError(w, err)
		return
	}
	h.servePDF(w, fmt.Sprintf("invoice-%d.pdf", id), pdf)
}

func (h *Handler) deliveryReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	dr, err := h.service.BuildDeliveryReceipt(r.Context(), id)
	if err != nil {
		h.logger.Error("build delivery receipt", slog.Any("error", err), slog.Int64("order_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dr)
}

func (h *Handler) deliveryReceiptPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	pdf, err := h.service.DeliveryReceiptPDF(r.Context(), id)
	if err != nil {
		h.logger.Error("render delivery receipt pdf", slog.Any("error", err), slog.Int64("order_id", id))
		httpx.RespondError(w, err)
		return
	}
	h.servePDF(w, fmt.Sprintf("delivery-receipt-%d.pdf", id), pdf)
}

func (h *Handler) servePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "order id must be numeric")
		return 0, false
	}
	return id, true
}
