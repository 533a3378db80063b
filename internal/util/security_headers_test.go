package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveWithSecurityHeaders(req *http.Request) *httptest.ResponseRecorder {
	h := WithSecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWithSecurityHeaders(t *testing.T) {
	rec := serveWithSecurityHeaders(httptest.NewRequest(http.MethodGet, "/analysis/runs", nil))
	for _, kv := range apiHeaders {
		if got := rec.Header().Get(kv[0]); got != kv[1] {
			t.Fatalf("%s = %q, want %q", kv[0], got, kv[1])
		}
	}
	if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("did not expect HSTS for plain http, got %q", got)
	}
}

func TestWithSecurityHeadersHSTS(t *testing.T) {
	cases := map[string]string{
		"X-Forwarded-Proto": "HTTPS",
		"Forwarded":         `for=203.0.113.5;proto="https"`,
	}
	for header, value := range cases {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(header, value)
		if got := serveWithSecurityHeaders(req).Header().Get("Strict-Transport-Security"); got != hstsValue {
			t.Fatalf("%s: expected HSTS, got %q", header, got)
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Forwarded", "for=203.0.113.5;proto=http")
	if got := serveWithSecurityHeaders(req).Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("unexpected HSTS for forwarded http: %q", got)
	}
}
