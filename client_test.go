package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	http "github.com/bogdanfinn/fhttp"
)

func TestResolveBrowserProfile(t *testing.T) {
	tests := []struct {
		identifier  string
		wantUA      string
		wantHints   bool
		wantVersion string
	}{
		{identifier: "chrome_112", wantUA: "Chrome/112.0.0.0", wantHints: true, wantVersion: `v="112"`},
		{identifier: "chrome_120", wantUA: "Chrome/120.0.0.0", wantHints: true, wantVersion: `v="120"`},
		{identifier: "chrome_116_PSK", wantUA: "Chrome/116.0.0.0", wantHints: true, wantVersion: `v="116"`},
		{identifier: "firefox_117", wantUA: "Firefox/117.0", wantHints: false},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			bp, err := ResolveBrowserProfile(tt.identifier)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bp.Identifier != tt.identifier {
				t.Errorf("identifier = %q, want %q", bp.Identifier, tt.identifier)
			}
			if !strings.Contains(bp.UserAgent, tt.wantUA) {
				t.Errorf("user agent %q does not contain %q", bp.UserAgent, tt.wantUA)
			}
			if tt.wantHints {
				if !strings.Contains(bp.SecChUa, tt.wantVersion) {
					t.Errorf("sec-ch-ua %q does not contain %q", bp.SecChUa, tt.wantVersion)
				}
			} else if bp.SecChUa != "" {
				t.Errorf("expected no client hints, got %q", bp.SecChUa)
			}
		})
	}
}

func TestResolveBrowserProfileUnknown(t *testing.T) {
	_, err := ResolveBrowserProfile("netscape_4")
	if !errors.Is(err, ErrUnknownClientIdentifier) {
		t.Fatalf("expected ErrUnknownClientIdentifier, got %v", err)
	}
}

func TestNewSessionForConfigUnknownIdentifier(t *testing.T) {
	cfg := NewConfig("DE", "CN")
	cfg.ClientIdentifier = "nope"
	if _, err := NewSessionForConfig(cfg, "", nil, nil); !errors.Is(err, ErrUnknownClientIdentifier) {
		t.Fatalf("expected ErrUnknownClientIdentifier, got %v", err)
	}
}

type fingerprintResponse struct {
	HTTPVersion string `json:"http_version"`
	UserAgent   string `json:"user_agent"`
	TLS         struct {
		JA4                  string `json:"ja4"`
		TLSVersionNegotiated string `json:"tls_version_negotiated"`
	} `json:"tls"`
	HTTP2 struct {
		AkamaiFingerprint string `json:"akamai_fingerprint"`
	} `json:"http2"`
}

// TestClientFingerprint hits tls.peet.ws and checks that the configured
// profile goes out over HTTP/2 with the headers ExecuteRequest builds.
// Set AMZCOOKIE_NETWORK_TESTS=1 to run it.
func TestClientFingerprint(t *testing.T) {
	if os.Getenv("AMZCOOKIE_NETWORK_TESTS") != "1" {
		t.Skip("AMZCOOKIE_NETWORK_TESTS not set, skipping")
	}

	for _, id := range []string{"chrome_112", "chrome_120", "firefox_117"} {
		t.Run(id, func(t *testing.T) {
			cfg := NewConfig("DE", "CN")
			cfg.ClientIdentifier = id

			s, err := NewSessionForConfig(cfg, GetProxyURL(), nil, nil)
			if err != nil {
				t.Fatalf("failed to create session: %v", err)
			}

			// First request establishes the session, the second may resume it.
			if _, err := ExecuteRequest(context.Background(), s, http.MethodGet, "https://tls.peet.ws/api/all", RequestOptions{}); err != nil {
				t.Fatalf("first request failed: %v", err)
			}
			res, err := ExecuteRequest(context.Background(), s, http.MethodGet, "https://tls.peet.ws/api/all", RequestOptions{})
			if err != nil {
				t.Fatalf("second request failed: %v", err)
			}

			var fp fingerprintResponse
			if err := json.Unmarshal([]byte(res.Body), &fp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}

			if fp.HTTPVersion != "h2" {
				t.Errorf("http version = %q, want h2", fp.HTTPVersion)
			}
			if fp.UserAgent != s.profile.UserAgent {
				t.Errorf("user agent mismatch\ngot:  %s\nwant: %s", fp.UserAgent, s.profile.UserAgent)
			}
			if fp.TLS.JA4 == "" {
				t.Error("empty JA4 fingerprint")
			}
			if fp.HTTP2.AkamaiFingerprint == "" {
				t.Error("empty akamai fingerprint")
			}
		})
	}
}
