package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	})
}

func TestCORSMiddleware_PreflightRequest(t *testing.T) {
	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { nextCalled = true })
	handler := CORSMiddleware(next, "http://localhost:5173,https://elimu.example.com")

	req := httptest.NewRequest(http.MethodOptions, "/api/notifications", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSMiddleware_ActualRequest(t *testing.T) {
	handler := CORSMiddleware(okHandler(), "http://localhost:5173/")

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	assert.Equal(t, "success", rec.Body.String())
}

func TestCORSMiddleware_Origins(t *testing.T) {
	testCases := []struct {
		name    string
		allowed string
		origin  string
		expect  string
	}{
		{"listed", "http://localhost:5173, https://elimu.example.com", "https://elimu.example.com", "https://elimu.example.com"},
		{"unlisted", "http://localhost:5173", "https://evil.com", ""},
		{"wildcard", "*", "https://anything.io", "*"},
		{"no origin", "http://localhost:5173", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			CORSMiddleware(okHandler(), tc.allowed).ServeHTTP(rec, req)

			assert.Equal(t, tc.expect, rec.Header().Get("Access-Control-Allow-Origin"))
			if tc.expect == "*" {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}
