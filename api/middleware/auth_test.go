package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newswirehq/newswire-backend/pkg/config"
	"github.com/newswirehq/newswire-backend/pkg/logger"
	"github.com/newswirehq/newswire-backend/pkg/types"
)

func gateHandler(t *testing.T, token string) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	gate := AccessGate(config.AuthConfig{BearerToken: token}, logg)
	return gate(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAccessGate_AllowsMatchingToken(t *testing.T) {
	handler := gateHandler(t, "dispatcher-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkpoint", nil)
	req.Header.Set("Authorization", "Bearer dispatcher-secret")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestAccessGate_RejectsBadOrMissingToken(t *testing.T) {
	handler := gateHandler(t, "dispatcher-secret")

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong token", "Bearer nope"},
		{"empty bearer", "Bearer "},
		{"prefix of token", "Bearer dispatcher"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/checkpoint", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}

			var envelope types.ErrorEnvelope
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if envelope.Error.Code != "UNAUTHORIZED" {
				t.Fatalf("unexpected error code: %s", envelope.Error.Code)
			}
		})
	}
}

func TestAccessGate_RawTokenWithoutBearerPrefix(t *testing.T) {
	// The raw value is accepted too, matching how internal dispatchers send it.
	handler := gateHandler(t, "dispatcher-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkpoint", nil)
	req.Header.Set("Authorization", "dispatcher-secret")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestAccessGate_UnconfiguredTokenFailsClosed(t *testing.T) {
	handler := gateHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkpoint", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected fail-closed 500, got %d", rec.Code)
	}
}
