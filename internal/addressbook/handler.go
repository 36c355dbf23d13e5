package addressbook

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/platform/httpx"
)

// Handler manages address directory endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers address directory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/regions", h.regions)
	r.Get("/regions/{code}/provinces", h.provinces)
	r.Get("/provinces/{code}/cities", h.cities)
	r.Get("/cities/{code}/barangays", h.barangays)
}

func (h *Handler) regions(w http.ResponseWriter, r *http.Request) {
	places, err := h.service.Regions(r.Context())
	if err != nil {
		h.logger.Error("list regions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"places": places})
}

func (h *Handler) provinces(w http.ResponseWriter, r *http.Request) {
	places, err := h.service.Provinces(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.logger.Error("list provinces", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"places": places})
}

func (h *Handler) cities(w http.ResponseWriter, r *http.Request) {
	places, err := h.service.CitiesMunicipalities(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.logger.Error("list cities", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"places": places})
}

func (h *Handler) barangays(w http.ResponseWriter, r *http.Request) {
	places, err := h.service.Barangays(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.logger.Error("list barangays", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"places": places})
}
