package main

import (
	"fmt"
	"strings"

	"github.com/bogdanfinn/tls-client/profiles"
)

const (
	chromeUserAgentFormat  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s.0.0.0 Safari/537.36"
	chromeSecChUaFormat    = `"Chromium";v="%s", "Google Chrome";v="%s", "Not=A?Brand";v="99"`
	firefoxUserAgentFormat = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:%s.0) Gecko/20100101 Firefox/%s.0"
)

// BrowserProfile bundles a TLS client profile with its corresponding browser headers.
type BrowserProfile struct {
	Identifier string
	TLSProfile profiles.ClientProfile
	UserAgent  string
	SecChUa    string
	Platform   string
	Mobile     string
}

// ResolveBrowserProfile looks up a tls-client profile by its identifier
// (e.g. "chrome_112", "firefox_117") and pairs it with matching request headers.
func ResolveBrowserProfile(identifier string) (*BrowserProfile, error) {
	tlsProfile, ok := profiles.MappedTLSClients[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClientIdentifier, identifier)
	}

	family, version := splitIdentifier(identifier)
	bp := &BrowserProfile{
		Identifier: identifier,
		TLSProfile: tlsProfile,
		Platform:   `"Windows"`,
		Mobile:     "?0",
	}

	switch family {
	case "firefox":
		bp.UserAgent = fmt.Sprintf(firefoxUserAgentFormat, version, version)
	default:
		// Everything else in the map is Chromium-based or close enough to send its hints.
		bp.UserAgent = fmt.Sprintf(chromeUserAgentFormat, version)
		bp.SecChUa = fmt.Sprintf(chromeSecChUaFormat, version, version)
	}

	return bp, nil
}

// splitIdentifier turns "chrome_116_PSK" into ("chrome", "116").
func splitIdentifier(identifier string) (family, version string) {
	parts := strings.Split(identifier, "_")
	family = parts[0]
	version = "112"
	if len(parts) > 1 && parts[1] != "" {
		version = parts[1]
	}
	return family, version
}
