package http

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
	"github.com/suleman231/provisimarket-hub/pkg/httputil"
	"github.com/suleman231/provisimarket-hub/pkg/validator"
)

// AddCartLineRequest is the body of POST /api/v1/cart/lines.
type AddCartLineRequest struct {
	StoreID   string `json:"store_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
}

type cartResponse struct {
	Lines []domain.CartLine `json:"lines"`
	Count int               `json:"count"`
	Total string            `json:"total"`
}

func newCartResponse(c domain.Cart) cartResponse {
	lines := c.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{Lines: lines, Count: c.Count(), Total: c.Total().StringFixed(2)}
}

// GetCart handles GET /api/v1/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.market.GetCart(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(cart))
}

// AddCartLine handles POST /api/v1/cart/lines
func (h *Handler) AddCartLine(w http.ResponseWriter, r *http.Request) {
	var req AddCartLineRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.market.AddToCart(r.Context(), sessionID(r), req.StoreID, req.ProductID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, newCartResponse(cart))
}

// RemoveCartLine handles DELETE /api/v1/cart/lines/{index}
func (h *Handler) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, r, apperrors.InvalidInput("line index must be an integer"))
		return
	}

	cart, err := h.market.RemoveCartLine(r.Context(), sessionID(r), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(cart))
}

// RemoveCartProduct handles DELETE /api/v1/cart/products/{productId}
func (h *Handler) RemoveCartProduct(w http.ResponseWriter, r *http.Request) {
	cart, err := h.market.RemoveFromCart(r.Context(), sessionID(r), chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(cart))
}

// ExportCart handles GET /api/v1/cart/export
func (h *Handler) ExportCart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	filename, err := h.market.ExportCart(r.Context(), sessionID(r), &buf)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
