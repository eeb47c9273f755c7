package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	validTokens map[string]string
}

func (v *testTokenValidator) ValidateToken(tokenString string) (ClientGetter, error) {
	client, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(client), nil
}

type testClaims string

func (c testClaims) GetClient() string {
	return string(c)
}

func newHandler(t *testing.T) (http.Handler, *string) {
	t.Helper()
	validator := &testTokenValidator{validTokens: map[string]string{"valid-token": "extension"}}
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client, err := GetClient(r)
		if err == nil {
			seen = client
		}
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(validator)(next), &seen
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		header     string
		wantStatus int
		wantClient string
	}{
		{name: "valid token", method: http.MethodGet, header: "Bearer valid-token", wantStatus: http.StatusOK, wantClient: "extension"},
		{name: "lowercase scheme", method: http.MethodGet, header: "bearer valid-token", wantStatus: http.StatusOK, wantClient: "extension"},
		{name: "missing header", method: http.MethodGet, header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", method: http.MethodGet, header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "extra parts", method: http.MethodGet, header: "Bearer valid-token extra", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", method: http.MethodPost, header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "preflight passes", method: http.MethodOptions, header: "", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, seen := newHandler(t)

			req := httptest.NewRequest(tt.method, "/v1/scrape", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantClient, *seen)
		})
	}
}

func TestGetClient(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetClient(req)
	assert.Error(t, err)

	req = req.WithContext(WithClient(req.Context(), "cli"))
	client, err := GetClient(req)
	require.NoError(t, err)
	assert.Equal(t, "cli", client)
}
