package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

type signupPayload struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
}

func validationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/signup", func(c *gin.Context) {
		var payload signupPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	router := validationRouter()

	t.Run("reports each failing field with its json name", func(t *testing.T) {
		body := `{"username": "ab", "email": "not-an-email"}`
		req := httptest.NewRequest("POST", "/signup", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", "req-77")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.False(t, resp.Success)
		assert.Equal(t, "req-77", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)

		byField := map[string]string{}
		for _, d := range resp.Error.Details {
			byField[d.Field] = d.Message
		}
		assert.Equal(t, "Must be at least 3 characters", byField["username"])
		assert.Equal(t, "Invalid email format", byField["email"])
	})

	t.Run("accepts a valid payload", func(t *testing.T) {
		body := `{"username": "alice", "email": "alice@example.com"}`
		req := httptest.NewRequest("POST", "/signup", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("handles non-validator errors without details", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/signup", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Empty(t, resp.Error.Details)
	})
}
