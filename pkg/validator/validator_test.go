package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rateRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Stars     int    `json:"stars" validate:"gte=1,lte=5"`
}

type galleryRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type profileRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=Customer Merchant"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(rateRequest{ProductID: "p1", Stars: 5}))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	fields := fieldsOf(t, Validate(rateRequest{Stars: 3}))
	assert.Equal(t, "is required", fields["product_id"])
	assert.NotContains(t, fields, "ProductID")
}

func TestValidate_RangeMessages(t *testing.T) {
	fields := fieldsOf(t, Validate(rateRequest{ProductID: "p1", Stars: 0}))
	assert.Equal(t, "must be greater than or equal to 1", fields["stars"])

	fields = fieldsOf(t, Validate(rateRequest{ProductID: "p1", Stars: 6}))
	assert.Equal(t, "must be less than or equal to 5", fields["stars"])
}

func TestValidate_URLAndOneOf(t *testing.T) {
	fields := fieldsOf(t, Validate(galleryRequest{URL: "not a url"}))
	assert.Equal(t, "must be a valid URL", fields["url"])

	fields = fieldsOf(t, Validate(profileRequest{Email: "nope", Role: "Admin"}))
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be one of: Customer Merchant", fields["role"])
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(rateRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'product_id' is required")
	assert.Contains(t, err.Error(), "; ")
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":"p2","stars":4}`))
		var dst rateRequest
		require.NoError(t, DecodeAndValidate(r, &dst))
		assert.Equal(t, "p2", dst.ProductID)
		assert.Equal(t, 4, dst.Stars)
	})

	t.Run("malformed json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":`))
		var dst rateRequest
		err := DecodeAndValidate(r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode request body")
	})

	t.Run("fails validation", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":"p2","stars":9}`))
		var dst rateRequest
		fields := fieldsOf(t, DecodeAndValidate(r, &dst))
		assert.Contains(t, fields, "stars")
	})
}
