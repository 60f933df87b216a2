package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_pos/internal/catalog"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProductCatalog interface {
	Products() []domain.Product
	Refresh(ctx context.Context) error
}

type ProductStore interface {
	Upsert(ctx context.Context, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductHandler struct {
	catalog ProductCatalog
	store   ProductStore
	timeout time.Duration
	logger  *zap.Logger
}

// NewProductHandler serves the catalog. store may be nil, which disables product edits.
func NewProductHandler(c ProductCatalog, store ProductStore, timeout time.Duration, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
	Degraded bool             `json:"degraded,omitempty"`
}

func (h *ProductHandler) GetAllProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ProductsResponse{Products: h.catalog.Products()})
}

func (h *ProductHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	err := h.catalog.Refresh(ctx)
	if err != nil {
		h.logger.Warn("catalog refresh incomplete", zap.Error(err))
	}
	respondJSON(w, http.StatusOK, ProductsResponse{Products: h.catalog.Products(), Degraded: err != nil})
}

func (h *ProductHandler) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusNotImplemented, "product_management_disabled", "product management is not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Product
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if catalog.IsFixed(req.ID) {
		respondError(w, http.StatusConflict, "fixed_product", "built-in products cannot be edited")
		return
	}

	saved, err := h.store.Upsert(ctx, req)
	if errors.Is(err, catalog.ErrInvalidProduct) {
		respondErrorDetails(w, http.StatusBadRequest, "invalid_product", "invalid product", err.Error())
		return
	}
	if err != nil {
		h.logger.Error("product upsert failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	h.refreshAfterEdit(ctx)
	respondJSON(w, http.StatusCreated, saved)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusNotImplemented, "product_management_disabled", "product management is not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	if catalog.IsFixed(id) {
		respondError(w, http.StatusConflict, "fixed_product", "built-in products cannot be deleted")
		return
	}

	err := h.store.Delete(ctx, id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	if err != nil {
		h.logger.Error("product delete failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	h.refreshAfterEdit(ctx)
	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *ProductHandler) refreshAfterEdit(ctx context.Context) {
	if err := h.catalog.Refresh(ctx); err != nil {
		h.logger.Warn("catalog refresh after edit incomplete", zap.Error(err))
	}
}
