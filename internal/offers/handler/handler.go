package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"domaindesk/internal/offers/models"
	"domaindesk/internal/transport/http/shared"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the offer operations the handler needs.
type Service interface {
	List(ctx context.Context) ([]models.Listing, error)
	Update(ctx context.Context, req models.UpdateOfferRequest) (*models.Offer, error)
}

// Handler serves the offer endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the offer routes. The offer id travels in the PATCH body.
func (h *Handler) Register(r chi.Router) {
	r.Get("/offers", h.handleList)
	r.Patch("/offers", h.handleUpdate)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	offers, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteServiceError(r.Context(), h.logger, w, err, "list offers")
		return
	}
	shared.WriteJSON(w, http.StatusOK, offers)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateOfferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteServiceError(r.Context(), h.logger, w, err, "update offer")
		return
	}
	offer, err := h.service.Update(r.Context(), req)
	if err != nil {
		shared.WriteServiceError(r.Context(), h.logger, w, err, "update offer")
		return
	}
	shared.WriteJSON(w, http.StatusOK, offer)
}
