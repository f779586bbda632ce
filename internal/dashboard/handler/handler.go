package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"domaindesk/internal/dashboard/service"
	"domaindesk/internal/transport/http/shared"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Stats(ctx context.Context) (*service.Stats, error)
}

// Handler serves dashboard statistics.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard", h.handleStats)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		shared.WriteServiceError(r.Context(), h.logger, w, err, "dashboard stats")
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}
