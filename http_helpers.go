package main

import (
	"io"
	"sort"

	http "github.com/bogdanfinn/fhttp"
)

// PseudoHeaderOrder is the standard HTTP/2 pseudo-header order for all requests.
var PseudoHeaderOrder = []string{
	":method",
	":authority",
	":scheme",
	":path",
}

// readResponseBody decompresses and reads the full response body.
// Caller should defer resp.Body.Close() before calling this.
func readResponseBody(resp *http.Response) ([]byte, error) {
	body := http.DecompressBody(resp)
	defer body.Close()
	return io.ReadAll(body)
}

// navigationHeaders are sent for top-level page loads.
func navigationHeaders(profile *BrowserProfile) http.Header {
	h := http.Header{
		"upgrade-insecure-requests": {"1"},
		"user-agent":                {profile.UserAgent},
		"accept":                    {"text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"},
		"sec-fetch-site":            {"none"},
		"sec-fetch-mode":            {"navigate"},
		"sec-fetch-user":            {"?1"},
		"sec-fetch-dest":            {"document"},
		"accept-encoding":           {"gzip, deflate, br, zstd"},
		"accept-language":           {"en-US,en;q=0.9"},
		http.HeaderOrderKey: {
			"upgrade-insecure-requests",
			"user-agent",
			"accept",
			"sec-fetch-site",
			"sec-fetch-mode",
			"sec-fetch-user",
			"sec-fetch-dest",
			"sec-ch-ua",
			"sec-ch-ua-mobile",
			"sec-ch-ua-platform",
			"accept-encoding",
			"accept-language",
			"cookie",
		},
		http.PHeaderOrderKey: PseudoHeaderOrder,
	}
	setClientHints(h, profile)
	return h
}

// ajaxHeaders are sent for the glow endpoints, which the storefront calls via XHR.
func ajaxHeaders(profile *BrowserProfile, referer string, hasBody bool) http.Header {
	h := http.Header{
		"user-agent":       {profile.UserAgent},
		"accept":           {"text/html,*/*"},
		"x-requested-with": {"XMLHttpRequest"},
		"origin":           {trimTrailingSlash(referer)},
		"referer":          {referer},
		"sec-fetch-site":   {"same-origin"},
		"sec-fetch-mode":   {"cors"},
		"sec-fetch-dest":   {"empty"},
		"accept-encoding":  {"gzip, deflate, br, zstd"},
		"accept-language":  {"en-US,en;q=0.9"},
		http.HeaderOrderKey: {
			"content-length",
			"sec-ch-ua-platform",
			"sec-ch-ua",
			"sec-ch-ua-mobile",
			"user-agent",
			"accept",
			"content-type",
			"x-requested-with",
			"origin",
			"sec-fetch-site",
			"sec-fetch-mode",
			"sec-fetch-dest",
			"referer",
			"accept-encoding",
			"accept-language",
			"cookie",
		},
		http.PHeaderOrderKey: PseudoHeaderOrder,
	}
	if hasBody {
		h["content-type"] = []string{"application/json"}
	}
	setClientHints(h, profile)
	return h
}

// Firefox profiles leave SecChUa empty and send no client hints.
func setClientHints(h http.Header, profile *BrowserProfile) {
	if profile.SecChUa == "" {
		return
	}
	h["sec-ch-ua"] = []string{profile.SecChUa}
	h["sec-ch-ua-mobile"] = []string{profile.Mobile}
	h["sec-ch-ua-platform"] = []string{profile.Platform}
}

// mergeHeaders adds caller headers on top of the base set. Keys not already in the
// header order are appended to it in sorted order so requests stay deterministic.
func mergeHeaders(base http.Header, extra map[string]string) {
	if len(extra) == 0 {
		return
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	order := base[http.HeaderOrderKey]
	for _, k := range keys {
		base[k] = []string{extra[k]}
		if !containsString(order, k) {
			order = append(order, k)
		}
	}
	base[http.HeaderOrderKey] = order
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func trimTrailingSlash(s string) string {
	if len(s) > 0 && s[len(s)-1] == '/' {
		return s[:len(s)-1]
	}
	return s
}
