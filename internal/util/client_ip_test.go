package util

import (
	"net/http/httptest"
	"net/netip"
	"testing"
)

func mustTrusted(t *testing.T, entries ...string) *TrustedProxies {
	t.Helper()
	trusted, err := NewTrustedProxies(entries)
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}
	return trusted
}

func TestClientIP(t *testing.T) {
	gateway := mustTrusted(t, "10.0.0.0/8", "192.168.1.10")
	mapped := mustTrusted(t, "::ffff:172.16.0.1")

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xrip       string
		trusted    *TrustedProxies
		want       string
	}{
		{"untrusted peer ignores forwarded headers", "198.51.100.10:1234", "203.0.113.5", "203.0.113.6", gateway, "198.51.100.10"},
		{"nil set trusts nobody", "10.0.0.20:1234", "203.0.113.5", "", nil, "10.0.0.20"},
		{"gateway hop resolves user", "10.0.0.20:1234", "203.0.113.5", "", gateway, "203.0.113.5"},
		{"walks chain from the right", "10.0.0.20:1234", "203.0.113.9, 203.0.113.5, 10.0.0.10", "", gateway, "203.0.113.5"},
		{"single trusted ip entry", "192.168.1.10:80", "203.0.113.5", "", gateway, "203.0.113.5"},
		{"uses x-real-ip when xff unusable", "10.0.0.20:1234", "invalid", "203.0.113.7", gateway, "203.0.113.7"},
		{"all hops trusted returns leftmost", "10.0.0.20:1234", "10.0.0.5, 10.0.0.10", "", gateway, "10.0.0.5"},
		{"ipv4-mapped peer matches ipv4 range", "[::ffff:10.0.0.20]:1234", "203.0.113.5", "", gateway, "203.0.113.5"},
		{"ipv4-mapped forwarded hop is unmapped", "10.0.0.20:1234", "::ffff:203.0.113.5", "", gateway, "203.0.113.5"},
		{"ipv4-mapped x-real-ip is unmapped", "10.0.0.20:1234", "", "::ffff:203.0.113.8", gateway, "203.0.113.8"},
		{"mapped trusted entry matches plain ipv4 peer", "172.16.0.1:443", "203.0.113.5", "", mapped, "203.0.113.5"},
		{"untrusted ipv4-mapped peer is reported unmapped", "[::ffff:198.51.100.10]:1234", "203.0.113.5", "", gateway, "198.51.100.10"},
		{"unparseable remote addr returned as is", "pipe", "203.0.113.5", "", gateway, "pipe"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "http://analysis.local/analysis/runs", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xrip != "" {
				req.Header.Set("X-Real-IP", tc.xrip)
			}
			if got := ClientIP(req, tc.trusted); got != tc.want {
				t.Fatalf("client ip = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTrustedProxiesContains(t *testing.T) {
	trusted := mustTrusted(t, "10.1.2.3/8", "2001:db8::/32")
	cases := map[string]bool{
		"10.200.0.1":        true,
		"::ffff:10.200.0.1": true,
		"2001:db8::1":       true,
		"11.0.0.1":          false,
		"2001:db9::1":       false,
	}
	for raw, want := range cases {
		if got := trusted.Contains(netip.MustParseAddr(raw)); got != want {
			t.Fatalf("Contains(%s) = %v, want %v", raw, got, want)
		}
	}
	if trusted.Contains(netip.Addr{}) {
		t.Fatalf("invalid addr must not be trusted")
	}
}

func TestNewTrustedProxies(t *testing.T) {
	if got, err := NewTrustedProxies([]string{" ", ""}); err != nil || got != nil {
		t.Fatalf("expected nil set for blank entries, got %v err=%v", got, err)
	}
	for _, bad := range []string{"bad-cidr", "10.0.0.0/33"} {
		if _, err := NewTrustedProxies([]string{bad}); err == nil {
			t.Fatalf("expected parse error for %q", bad)
		}
	}
}
