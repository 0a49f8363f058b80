package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/test", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("from context", func(t *testing.T) {
		c, _ := newTestContext()
		c.Set(middleware.RequestIDKey, "ctx-id")
		c.Request.Header.Set("X-Request-ID", "header-id")
		assert.Equal(t, "ctx-id", getRequestID(c))
	})

	t.Run("falls back to header", func(t *testing.T) {
		c, _ := newTestContext()
		c.Request.Header.Set("X-Request-ID", "header-id")
		assert.Equal(t, "header-id", getRequestID(c))
	})

	t.Run("empty when unset", func(t *testing.T) {
		c, _ := newTestContext()
		assert.Equal(t, "", getRequestID(c))
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found sentinel",
			err:        shared.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "wrapped domain error",
			err:        fmt.Errorf("loading order: %w", shared.ErrSignatureInvalid),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeSignatureInvalid,
		},
		{
			name:       "service error code passes through verbatim",
			err:        shared.NewDomainError("EMAIL_NOT_VERIFIED", "verify your email first"),
			wantStatus: http.StatusForbidden,
			wantCode:   "EMAIL_NOT_VERIFIED",
		},
		{
			name:       "unmapped domain code defaults to 422",
			err:        shared.NewDomainError("SOMETHING_ODD", "odd"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "SOMETHING_ODD",
		},
		{
			name:       "plain error becomes internal",
			err:        fmt.Errorf("driver: bad connection"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newTestContext()
			h.HandleError(c, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_HandleError_HidesInternalDetail(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, fmt.Errorf(`pq: relation "orders" does not exist`))

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Message, "pq:")
	assert.NotContains(t, w.Body.String(), "orders")
}

func TestBaseHandler_HandleError_CarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	c.Set(middleware.RequestIDKey, "req-42")

	h.HandleError(c, shared.ErrNotFound)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-42", resp.Error.RequestID)
}

func TestBaseHandler_Success(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Success(c, gin.H{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBindID(t *testing.T) {
	t.Run("valid uuid", func(t *testing.T) {
		c, _ := newTestContext()
		c.Params = gin.Params{{Key: "id", Value: "550e8400-e29b-41d4-a716-446655440000"}}

		id, err := bindID(c)
		require.NoError(t, err)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
	})

	t.Run("garbage", func(t *testing.T) {
		c, _ := newTestContext()
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		_, err := bindID(c)
		assert.Error(t, err)
	})
}
