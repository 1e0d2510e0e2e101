package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	"github.com/suleman231/provisimarket-hub/pkg/httputil"
	"github.com/suleman231/provisimarket-hub/pkg/validator"
)

// UpdateProfileRequest is the body of PATCH /api/v1/profile.
type UpdateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=255"`
	Role   *string `json:"role" validate:"omitempty,oneof=Customer Merchant"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

// AddGalleryImageRequest is the body of the gallery endpoint.
type AddGalleryImageRequest struct {
	URL string `json:"url" validate:"required"`
}

// DescribeProductRequest is the body of the description generator.
type DescribeProductRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type descriptionResponse struct {
	Description string `json:"description"`
}

// GetProfile handles GET /api/v1/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.market.GetProfile(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/v1/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	patch := domain.UserPatch{Name: req.Name, Email: req.Email, Avatar: req.Avatar}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.market.UpdateProfile(r.Context(), sessionID(r), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, user)
}

// GetMerchantStore handles GET /api/v1/merchant/store
func (h *Handler) GetMerchantStore(w http.ResponseWriter, r *http.Request) {
	store, err := h.market.MerchantStore(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, store)
}

// AddProduct handles POST /api/v1/merchant/products
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var draft domain.ProductDraft
	if err := validator.DecodeAndValidate(r, &draft); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.market.AddProduct(r.Context(), sessionID(r), draft)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, product)
}

// AddGalleryImage handles POST /api/v1/merchant/products/{productId}/gallery
func (h *Handler) AddGalleryImage(w http.ResponseWriter, r *http.Request) {
	var req AddGalleryImageRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.market.AddGalleryImage(r.Context(), sessionID(r), chi.URLParam(r, "productId"), req.URL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// DescribeProduct handles POST /api/v1/merchant/products/describe
func (h *Handler) DescribeProduct(w http.ResponseWriter, r *http.Request) {
	var req DescribeProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	text, err := h.describer.DescribeProduct(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, descriptionResponse{Description: text})
}
