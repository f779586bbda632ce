package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"domaindesk/internal/consultations/models"
	"domaindesk/internal/transport/http/shared"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the consultation operations the handler needs.
type Service interface {
	List(ctx context.Context) ([]models.Listing, error)
	Get(ctx context.Context, id string) (*models.Listing, error)
	Create(ctx context.Context, req models.CreateRequest) (*models.Consultation, error)
	Update(ctx context.Context, id string, req models.UpdateRequest) (*models.Consultation, error)
	Delete(ctx context.Context, id string) error
}

// Handler serves the consultation endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/consultations", h.handleList)
	r.Post("/consultations", h.handleCreate)
	r.Get("/consultations/{id}", h.handleGet)
	r.Patch("/consultations/{id}", h.handleUpdate)
	r.Delete("/consultations/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, err, "list consultations")
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err, "get consultation")
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(r.Context(), w, err, "create consultation")
		return
	}
	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(r.Context(), w, err, "create consultation")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(r.Context(), w, err, "update consultation")
		return
	}
	c, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(r.Context(), w, err, "update consultation")
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(r.Context(), w, err, "delete consultation")
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.MessageResponse{Message: "Consultation deleted"})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, op string) {
	shared.WriteServiceError(ctx, h.logger, w, err, op)
}
