package util

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestLogUsesRequestLogger(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))

	h := WithRequestID(WithRequestLog("analysis", nil, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	req := httptest.NewRequest(http.MethodPost, "/analysis/runs", nil)
	req.Header.Set("X-Request-Id", "req-1")
	req.RemoteAddr = "198.51.100.10:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-1" || entry["service"] != "analysis" || entry["client_ip"] != "198.51.100.10" {
		t.Fatalf("unexpected log entry %v", entry)
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("unexpected status %v", entry["status"])
	}
}
