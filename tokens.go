package main

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

const (
	locationModalElementID = "nav-global-location-data-modal-action"
	locationModalAttr      = "data-a-modal"
	antiCsrfTokenPath      = "ajaxHeaders.anti-csrftoken-a2z"
	antiCsrfHeader         = "anti-csrftoken-a2z"
)

var csrfTokenPattern = regexp.MustCompile(`CSRF_TOKEN : "(.+?)"`)

// ExtractAntiCsrfToken pulls the anti-CSRF token out of the location modal on
// the storefront home page. Each missing layer has its own error.
func ExtractAntiCsrfToken(html string) (string, error) {
	return antiCsrfTokenFrom(strings.NewReader(html))
}

func antiCsrfTokenFrom(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenElementNotFound, err)
	}

	element := doc.Find(`span[id="` + locationModalElementID + `"]`).First()
	if element.Length() == 0 {
		return "", ErrTokenElementNotFound
	}

	dataModal, ok := element.Attr(locationModalAttr)
	if !ok || dataModal == "" {
		return "", ErrDataModalNotFound
	}

	// The parser already decodes entities once; pages that double-encode still
	// leave &quot; behind.
	dataModal = strings.ReplaceAll(dataModal, "&quot;", `"`)
	if !gjson.Valid(dataModal) {
		return "", ErrDataModalMalformed
	}

	token := gjson.Get(dataModal, antiCsrfTokenPath).String()
	if token == "" {
		return "", ErrAntiCsrfTokenNotFound
	}
	return token, nil
}

// ExtractCsrfToken returns the first CSRF_TOKEN value in the rendered address
// selection response, verbatim.
func ExtractCsrfToken(responseText string) (string, error) {
	match := csrfTokenPattern.FindStringSubmatch(responseText)
	if match == nil {
		return "", ErrCsrfTokenNotFound
	}
	return match[1], nil
}

// addressUpdated reports whether the address change response carries the
// number 1 in isAddressUpdated. "1", true and 1.9 do not count.
func addressUpdated(body string) bool {
	result := gjson.Get(body, "isAddressUpdated")
	return result.Type == gjson.Number && result.Num == 1
}
