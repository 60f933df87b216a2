package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_pos/internal/checkout"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/email"
	"github.com/fjod/go_pos/internal/pricing"
	"github.com/fjod/go_pos/internal/receipt"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	sessions Sessions
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCheckoutHandler(sessions Sessions, timeout time.Duration, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		timeout:  timeout,
		logger:   logger,
	}
}

type CheckoutResponse struct {
	checkout.Result
	Display pricing.DisplayTotals `json:"display"`
}

type PreviewResponse struct {
	Subject string                `json:"subject"`
	Order   domain.OrderRecord    `json:"order"`
	Display pricing.DisplayTotals `json:"display"`
}

func (h *CheckoutHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, s.Checkout.Customer())
}

func (h *CheckoutHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s := h.sessions.Get(r.Context(), getSessionID(r.Context()))
	s.Checkout.UpdateCustomer(req)
	respondJSON(w, http.StatusOK, req)
}

// Checkout accepts an optional customer body which replaces the saved form once the
// checkout has started.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.sessions.Get(ctx, getSessionID(r.Context()))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "could not read body")
		return
	}
	var res checkout.Result
	if len(bytes.TrimSpace(body)) > 0 {
		var req domain.Customer
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
		res, err = s.Checkout.CheckoutWithCustomer(ctx, req)
	} else {
		res, err = s.Checkout.Checkout(ctx)
	}
	if err != nil {
		h.handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponse{Result: res, Display: totalsOf(res.Order).Display()})
}

func (h *CheckoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), getSessionID(r.Context()))

	order, err := s.Checkout.Preview()
	if err != nil {
		h.handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PreviewResponse{
		Subject: email.Subject(order.OrderID),
		Order:   order,
		Display: totalsOf(order).Display(),
	})
}

func (h *CheckoutHandler) ReceiptPDF(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(r.Context(), getSessionID(r.Context()))

	order, err := s.Checkout.Preview()
	if err != nil {
		h.handleCheckoutError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := receipt.WritePDF(&buf, order); err != nil {
		h.logger.Error("receipt render failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="woofcrafts-order.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *CheckoutHandler) handleCheckoutError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	var derr *checkout.EmailDispatchError

	switch {
	case errors.As(err, &verr):
		respondErrorDetails(w, http.StatusBadRequest, "validation_failed", verr.Message, verr.Field)
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", "a checkout is already in progress for this session")
	case errors.As(err, &derr):
		respondErrorDetails(w, http.StatusBadGateway, "email_failed", derr.Message(), derr.OrderID)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "checkout timed out")
	default:
		h.logger.Error("checkout failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func totalsOf(o domain.OrderRecord) pricing.Totals {
	return pricing.Totals{
		Subtotal:        o.Subtotal,
		DiscountAmount:  o.DiscountAmount,
		DiscountPercent: o.DiscountPercent,
		Total:           o.Total,
	}
}
