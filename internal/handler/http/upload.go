package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	"github.com/suleman231/provisimarket-hub/internal/service"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
	"github.com/suleman231/provisimarket-hub/pkg/httputil"
	"github.com/suleman231/provisimarket-hub/pkg/validator"
)

const uploadFormField = "file"

// BeginUploadRequest is the body of POST /api/v1/uploads.
type BeginUploadRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=main gallery store_cover user_avatar"`
	EntityID string `json:"entity_id"`
}

// BeginUpload handles POST /api/v1/uploads
func (h *Handler) BeginUpload(w http.ResponseWriter, r *http.Request) {
	var req BeginUploadRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	pending, err := h.market.BeginUpload(r.Context(), sessionID(r), domain.UploadTarget{
		Kind:     domain.UploadKind(req.Kind),
		EntityID: req.EntityID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, pending)
}

// CompleteUpload handles PUT /api/v1/uploads/{token}. The body is a
// multipart form whose "file" part is streamed into the upload.
func (h *Handler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		h.writeError(w, r, apperrors.InvalidInput("request must be multipart/form-data"))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			h.writeError(w, r, apperrors.InvalidInput(fmt.Sprintf("multipart field %q is required", uploadFormField)))
			return
		}
		if err != nil {
			h.writeError(w, r, uploadReadError(err))
			return
		}
		if part.FormName() != uploadFormField {
			_ = part.Close()
			continue
		}

		body := &bodyReader{r: part}
		result, err := h.market.CompleteUpload(r.Context(), sessionID(r), chi.URLParam(r, "token"), service.UploadFile{
			Name:        part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Body:        body,
		})
		_ = part.Close()
		if body.err != nil {
			h.writeError(w, r, uploadReadError(body.err))
			return
		}
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		httputil.WriteData(w, http.StatusOK, result)
		return
	}
}

// bodyReader remembers the first failure reading the request body so it can
// be reported as a client error.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && b.err == nil {
		b.err = err
	}
	return n, err
}

func uploadReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.TooLarge(fmt.Sprintf("upload exceeds %d bytes", maxErr.Limit))
	}
	return apperrors.InvalidInput("malformed multipart body")
}
