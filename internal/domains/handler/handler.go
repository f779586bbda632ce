package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"domaindesk/internal/domains/models"
	"domaindesk/internal/transport/http/shared"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the inventory operations the handler needs.
type Service interface {
	List(ctx context.Context, page, limit int) ([]models.Summary, error)
	Get(ctx context.Context, idOrSlug string) (*models.Detail, error)
	Create(ctx context.Context, req models.CreateDomainRequest) (*models.Domain, error)
	Update(ctx context.Context, idOrSlug string, req models.UpdateDomainRequest) (*models.Domain, error)
	Delete(ctx context.Context, idOrSlug string) error
}

// Handler serves the domain inventory endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the domain routes. Callers apply the session gate.
func (h *Handler) Register(r chi.Router) {
	r.Get("/domains", h.handleList)
	r.Post("/domains", h.handleCreate)
	r.Get("/domains/{idOrSlug}", h.handleGet)
	r.Patch("/domains/{idOrSlug}", h.handleUpdate)
	r.Delete("/domains/{idOrSlug}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	limit := queryInt(r, "limit")

	domains, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		h.writeError(r.Context(), w, err, "list domains")
		return
	}
	shared.WriteJSON(w, http.StatusOK, domains)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		h.writeError(r.Context(), w, err, "get domain")
		return
	}
	shared.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDomainRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(r.Context(), w, err, "create domain")
		return
	}
	d, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(r.Context(), w, err, "create domain")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateDomainRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.writeError(r.Context(), w, err, "update domain")
		return
	}
	d, err := h.service.Update(r.Context(), chi.URLParam(r, "idOrSlug"), req)
	if err != nil {
		h.writeError(r.Context(), w, err, "update domain")
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "idOrSlug")); err != nil {
		h.writeError(r.Context(), w, err, "delete domain")
		return
	}
	shared.WriteJSON(w, http.StatusOK, shared.MessageResponse{Message: "Domain deleted"})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, op string) {
	shared.WriteServiceError(ctx, h.logger, w, err, op)
}

// queryInt returns 0 for absent or malformed values; the service applies defaults.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
