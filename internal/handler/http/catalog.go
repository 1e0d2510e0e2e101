package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	"github.com/suleman231/provisimarket-hub/pkg/httputil"
	"github.com/suleman231/provisimarket-hub/pkg/pagination"
	"github.com/suleman231/provisimarket-hub/pkg/validator"
)

// RateProductRequest is the body of the scoped rating endpoint.
type RateProductRequest struct {
	Stars int `json:"stars" validate:"required,gte=1,lte=5"`
}

// RateByIDRequest is the body of the store-agnostic rating endpoint.
type RateByIDRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Stars     int    `json:"stars" validate:"required,gte=1,lte=5"`
}

type storeResponse struct {
	Store *domain.Store `json:"store"`
}

type ratingResponse struct {
	Products []domain.Product `json:"products"`
}

// ListCategories handles GET /api/v1/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.market.Categories())
}

// ListCatalog handles GET /api/v1/catalog
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	result, err := h.market.ListCatalog(r.Context(), sessionID(r), filterFromQuery(r), pagination.FromRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// filterFromQuery reads catalog predicates from the query string. Absent
// values take the filter defaults; present but unparsable numbers become 0.
func filterFromQuery(r *http.Request) domain.Filter {
	q := r.URL.Query()
	f := domain.DefaultFilter()

	f.Term = q.Get("q")
	if c := q.Get("category"); c != "" {
		f.Category = c
		if parsed, ok := domain.ParseCategory(c); ok {
			f.Category = string(parsed)
		}
	}
	if q.Has("min_price") {
		f.MinPrice = domain.ParseNumber(q.Get("min_price"))
	}
	if q.Has("max_price") {
		f.MaxPrice = domain.ParseNumber(q.Get("max_price"))
	}
	if q.Has("min_rating") {
		f.MinRating = domain.ParseNumber(q.Get("min_rating"))
	}
	switch strings.ToLower(q.Get("in_stock")) {
	case "1", "true", "yes", "on":
		f.InStockOnly = true
	}
	return f
}

// SearchStores handles GET /api/v1/stores
func (h *Handler) SearchStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.market.SearchStores(r.Context(), sessionID(r), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, stores)
}

// GetStore handles GET /api/v1/stores/{storeId}. An unknown id is not an
// error: the response carries a null store.
func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	store, err := h.market.GetStore(r.Context(), sessionID(r), chi.URLParam(r, "storeId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, storeResponse{Store: store})
}

// UpdateStore handles PATCH /api/v1/stores/{storeId}
func (h *Handler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	var patch domain.StorePatch
	if err := validator.DecodeAndValidate(r, &patch); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	store, err := h.market.UpdateStore(r.Context(), sessionID(r), chi.URLParam(r, "storeId"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, store)
}

// UpdateProduct handles PATCH /api/v1/stores/{storeId}/products/{productId}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProductPatch
	if err := validator.DecodeAndValidate(r, &patch); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.market.UpdateProduct(r.Context(), sessionID(r),
		chi.URLParam(r, "storeId"), chi.URLParam(r, "productId"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// RateStoreProduct handles POST /api/v1/stores/{storeId}/products/{productId}/ratings
func (h *Handler) RateStoreProduct(w http.ResponseWriter, r *http.Request) {
	var req RateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ref := domain.ProductRef{StoreID: chi.URLParam(r, "storeId"), ProductID: chi.URLParam(r, "productId")}
	h.rate(w, r, ref, req.Stars)
}

// RateProduct handles POST /api/v1/ratings. Every product with the id is
// rated, whichever store lists it.
func (h *Handler) RateProduct(w http.ResponseWriter, r *http.Request) {
	var req RateByIDRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	h.rate(w, r, domain.ProductRef{ProductID: req.ProductID}, req.Stars)
}

func (h *Handler) rate(w http.ResponseWriter, r *http.Request, ref domain.ProductRef, stars int) {
	products, err := h.market.RateProduct(r.Context(), sessionID(r), ref, stars)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, ratingResponse{Products: products})
}
