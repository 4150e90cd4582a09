package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authRequest(h http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestBearerAuth_Disabled(t *testing.T) {
	for _, keys := range [][]string{nil, {"", ""}} {
		rr := authRequest(BearerAuthMiddleware(keys)(okHandler()), "/v1/schemas", "")
		if rr.Code != http.StatusOK {
			t.Errorf("keys %q: got %d, want %d", keys, rr.Code, http.StatusOK)
		}
	}
}

func TestBearerAuth(t *testing.T) {
	h := BearerAuthMiddleware([]string{"key1", "key2"})(okHandler())

	tests := []struct {
		name    string
		path    string
		header  string
		status  int
		message string
	}{
		{"first key", "/v1/schemas", "Bearer key1", http.StatusOK, ""},
		{"second key", "/v1/schemas/play/items", "Bearer key2", http.StatusOK, ""},
		{"scheme is case insensitive", "/v1/schemas", "bearer key1", http.StatusOK, ""},
		{"missing header", "/v1/schemas", "", http.StatusUnauthorized, "missing authorization header"},
		{"basic scheme", "/v1/schemas", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "authorization header must use Bearer scheme"},
		{"empty token", "/v1/schemas", "Bearer ", http.StatusUnauthorized, "authorization header must use Bearer scheme"},
		{"wrong key", "/v1/schemas", "Bearer key3", http.StatusUnauthorized, "invalid api key"},
		{"key prefix", "/v1/schemas", "Bearer key", http.StatusUnauthorized, "invalid api key"},
		{"health exempt", "/health", "", http.StatusOK, ""},
		{"metrics exempt", "/metrics", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := authRequest(h, tt.path, tt.header)
			if rr.Code != tt.status {
				t.Fatalf("got %d, want %d", rr.Code, tt.status)
			}
			if tt.status == http.StatusOK {
				return
			}
			if got := rr.Header().Get("WWW-Authenticate"); got != `Bearer realm="rigel"` {
				t.Errorf("WWW-Authenticate: got %q", got)
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != CodeUnauthorized || errResp.Message != tt.message {
				t.Errorf("got %s %q, want %s %q", errResp.Code, errResp.Message, CodeUnauthorized, tt.message)
			}
		})
	}
}

func TestBearerAuth_CustomExemptPaths(t *testing.T) {
	h := BearerAuthMiddleware([]string{"secret"}, "/health")(okHandler())

	if rr := authRequest(h, "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("/health: got %d, want %d", rr.Code, http.StatusOK)
	}
	if rr := authRequest(h, "/metrics", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("/metrics: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
