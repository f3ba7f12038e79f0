package main

import (
	"fmt"
	"os"
	"strings"
)

// Build-time variables - inject via ldflags
// Example: go build -ldflags "-X main.clientIdentifier=chrome_120 -X main.proxyURL=http://host:port"
var (
	clientIdentifier string // -X main.clientIdentifier=...
	proxyURL         string // -X main.proxyURL=...
)

const (
	defaultClientIdentifier = "chrome_112"
	defaultZipCode          = 10115
	defaultLogFile          = "amzcookie.log"

	addressSelectionsPath = "portal-migration/hz/glow/get-rendered-address-selections"
	addressChangePath     = "portal-migration/hz/glow/address-change"
)

// GetClientIdentifier returns the TLS profile name (build-time, env, then default).
func GetClientIdentifier() string {
	if clientIdentifier != "" {
		return clientIdentifier
	}
	if v := os.Getenv("AMZCOOKIE_CLIENT_IDENTIFIER"); v != "" {
		return v
	}
	return defaultClientIdentifier
}

// GetProxyURL returns the proxy for single runs (build-time or env fallback).
func GetProxyURL() string {
	if proxyURL != "" {
		return proxyURL
	}
	return os.Getenv("AMZCOOKIE_PROXY")
}

// GetLogFile returns the log file path (env fallback to amzcookie.log).
func GetLogFile() string {
	if v := os.Getenv("AMZCOOKIE_LOG_FILE"); v != "" {
		return v
	}
	return defaultLogFile
}

// Config describes one storefront run. The three URLs are always derived from
// Locale; use WithLocale or SetLocale to change it.
type Config struct {
	Locale           string
	CountryCode      string
	ZipCode          int
	ClientIdentifier string

	HomeURL              string
	AddressSelectionsURL string
	AddressChangeURL     string
}

// NewConfig builds a Config for the given storefront locale (e.g. "DE", "CO.UK")
// and the country the delivery location should be switched to.
func NewConfig(locale, countryCode string) Config {
	c := Config{
		CountryCode:      countryCode,
		ZipCode:          defaultZipCode,
		ClientIdentifier: GetClientIdentifier(),
	}
	return c.WithLocale(locale)
}

// WithLocale returns a copy of c with Locale and every derived URL replaced.
func (c Config) WithLocale(locale string) Config {
	base := storefrontBaseURL(locale)
	c.Locale = locale
	c.HomeURL = base
	c.AddressSelectionsURL = base + addressSelectionsPath
	c.AddressChangeURL = base + addressChangePath
	return c
}

// SetLocale is the in-place form of WithLocale.
func (c *Config) SetLocale(locale string) {
	*c = c.WithLocale(locale)
}

func storefrontBaseURL(locale string) string {
	return fmt.Sprintf("https://www.amazon.%s/", strings.ToLower(strings.TrimSpace(locale)))
}
