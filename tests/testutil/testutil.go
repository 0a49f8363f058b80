// Package testutil provides common test utilities for the storefront
// backend. It contains helpers for driving a gin engine in tests and
// decoding the standard response envelope.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Envelope mirrors dto.Response with the data left raw so callers can
// decode it into their own types.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// PerformRequest executes one request against the engine and returns
// the recorder. A non-nil body is JSON encoded.
func PerformRequest(t *testing.T, engine *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

// PerformRawRequest executes a request with a verbatim byte body, for
// endpoints that consume the raw payload such as the webhook receiver.
func PerformRawRequest(t *testing.T, engine *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

// DecodeEnvelope parses the standard response envelope.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env),
		"Failed to decode response envelope: %s", rec.Body.String())
	return env
}

// DecodeData parses the envelope and unmarshals its data into out. It
// fails the test if the response was not successful.
func DecodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) Envelope {
	t.Helper()

	env := DecodeEnvelope(t, rec)
	require.True(t, env.Success, "Expected success envelope, got: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out), "Failed to decode response data")
	return env
}

// RequireStatus asserts the HTTP status code with the body in the
// failure message.
func RequireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "Unexpected status, body: %s", rec.Body.String())
}

// BearerHeader builds the Authorization header map for a token.
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
