package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
)

// cookieRecord is the on-disk form of one cookie.
type cookieRecord struct {
	Name     string     `json:"name"`
	Value    string     `json:"value"`
	Domain   string     `json:"domain,omitempty"`
	Path     string     `json:"path,omitempty"`
	Secure   bool       `json:"secure,omitempty"`
	HTTPOnly bool       `json:"http_only,omitempty"`
	Expires  *time.Time `json:"expires,omitempty"`
}

// SaveCookies writes cookies to path as JSON, replacing whatever was there.
func SaveCookies(path string, cookies []*http.Cookie) error {
	records := make([]cookieRecord, 0, len(cookies))
	for _, c := range cookies {
		rec := cookieRecord{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		if !c.Expires.IsZero() {
			exp := c.Expires.UTC()
			rec.Expires = &exp
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	return nil
}

// LoadCookies reads a cookie file written by SaveCookies.
func LoadCookies(path string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var records []cookieRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(records))
	for _, rec := range records {
		c := &http.Cookie{
			Name:     rec.Name,
			Value:    rec.Value,
			Domain:   rec.Domain,
			Path:     rec.Path,
			Secure:   rec.Secure,
			HttpOnly: rec.HTTPOnly,
		}
		if rec.Expires != nil {
			c.Expires = *rec.Expires
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}

// cookieKey identifies a cookie the way a jar does: same name, domain and path
// means the newer one replaces the older.
type cookieKey struct {
	name, domain, path string
}

// cookieStore is the full cookie state a session accumulated, with the
// attributes the server sent. The tls-client jar only hands back name and
// value for a single URL, so the session keeps its own copy for persistence.
type cookieStore struct {
	mu      sync.Mutex
	order   []cookieKey
	cookies map[cookieKey]*http.Cookie
}

func newCookieStore() *cookieStore {
	return &cookieStore{cookies: make(map[cookieKey]*http.Cookie)}
}

// record applies cookies received from (or installed for) u. Max-Age is folded
// into Expires; expired or Max-Age<0 cookies remove any stored match.
func (cs *cookieStore) record(u *url.URL, cookies []*http.Cookie, now time.Time) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		stored := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   strings.TrimPrefix(strings.ToLower(c.Domain), "."),
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if stored.Domain == "" {
			stored.Domain = u.Hostname()
		}
		if stored.Path == "" || stored.Path[0] != '/' {
			stored.Path = defaultPathOf(u)
		}

		expired := c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now))
		if c.MaxAge > 0 {
			stored.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
			expired = false
		}

		key := cookieKey{name: stored.Name, domain: stored.Domain, path: stored.Path}
		_, exists := cs.cookies[key]
		switch {
		case expired && exists:
			delete(cs.cookies, key)
			cs.order = slices.DeleteFunc(cs.order, func(k cookieKey) bool { return k == key })
		case expired:
		case exists:
			cs.cookies[key] = stored
		default:
			cs.cookies[key] = stored
			cs.order = append(cs.order, key)
		}
	}
}

// snapshot returns copies of the stored cookies in first-seen order.
func (cs *cookieStore) snapshot() []*http.Cookie {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	out := make([]*http.Cookie, 0, len(cs.order))
	for _, k := range cs.order {
		c := *cs.cookies[k]
		out = append(out, &c)
	}
	return out
}

// defaultPathOf is the RFC 6265 default-path: the request path up to, not
// including, its last slash.
func defaultPathOf(u *url.URL) string {
	p := u.Path
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

// sessionCookies is everything the session accumulated, across every host and
// path the run touched.
func sessionCookies(s *Session) []*http.Cookie {
	return s.cookies.snapshot()
}

// ApplyCookies loads a persisted set into a fresh session for rawURL.
func ApplyCookies(s *Session, rawURL string, cookies []*http.Cookie) error {
	return s.SetCookies(rawURL, cookies)
}
