package main

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	http "github.com/bogdanfinn/fhttp"
)

// VerifyResult is what a stored cookie file looks like to the storefront.
type VerifyResult struct {
	StatusCode   int
	CookieCount  int
	LocationLine string
	BodyLength   int
}

// VerifyCookies loads a cookie file into the session and fetches the home page
// with it, reporting the delivery location the header shows.
func VerifyCookies(ctx context.Context, s *Session, cfg Config, cookiePath string) (*VerifyResult, error) {
	cookies, err := LoadCookies(cookiePath)
	if err != nil {
		return nil, err
	}
	if err := ApplyCookies(s, cfg.HomeURL, cookies); err != nil {
		return nil, err
	}

	page, err := ExecuteRequest(ctx, s, http.MethodGet, cfg.HomeURL, RequestOptions{})
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		StatusCode:   page.StatusCode,
		CookieCount:  len(cookies),
		LocationLine: deliveryLocationLine(page.Body),
		BodyLength:   len(page.Body),
	}, nil
}

// deliveryLocationLine returns the "Deliver to ..." text of the nav bar, or "".
func deliveryLocationLine(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("#glow-ingress-line2").First().Text()), " ")
}
