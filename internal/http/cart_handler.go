package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_pos/internal/cart"
	"github.com/fjod/go_pos/internal/session"
	"github.com/go-chi/chi/v5"
)

type Sessions interface {
	Get(ctx context.Context, id string) *session.Session
}

const maxQuantityDelta = 99

type CartHandler struct {
	sessions Sessions
	timeout  time.Duration
}

func NewCartHandler(sessions Sessions, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
}

type UpdateQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.sessions.Get(ctx, getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, s.Cart.Snapshot())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}

	s := h.sessions.Get(ctx, getSessionID(r.Context()))
	snap, err := s.Cart.AddItem(ctx, req.ProductID)
	if errors.Is(err, cart.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, snap)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Delta < -maxQuantityDelta || req.Delta > maxQuantityDelta {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta must be between -99 and 99")
		return
	}

	s := h.sessions.Get(ctx, getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, s.Cart.UpdateQuantity(ctx, chi.URLParam(r, "productId"), req.Delta))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.sessions.Get(ctx, getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, s.Cart.RemoveItem(ctx, chi.URLParam(r, "productId")))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.sessions.Get(ctx, getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, s.Cart.Reset(ctx))
}

func (h *CartHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.sessions.Get(ctx, getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, s.Cart.ApplyDiscount(ctx))
}

func (h *CartHandler) ClearDiscount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.sessions.Get(ctx, getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, s.Cart.ClearDiscount(ctx))
}
