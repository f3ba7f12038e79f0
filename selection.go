package main

import (
	"fmt"
	"strings"
)

// LocationSelection is the body of the address-change request. It is either a
// ZipCodeSelection or a CountrySelection; callers pick one explicitly.
type LocationSelection interface {
	Payload() map[string]any
	String() string
}

// ZipCodeSelection sets the delivery location to a postcode inside the storefront's own country.
type ZipCodeSelection struct {
	ZipCode int
}

func (z ZipCodeSelection) Payload() map[string]any {
	return map[string]any{
		"locationType": "LOCATION_INPUT",
		"zipCode":      z.ZipCode,
		"deviceType":   "web",
		"storeContext": "generic",
		"pageType":     "Gateway",
		"actionSource": "glow",
	}
}

func (z ZipCodeSelection) String() string {
	return fmt.Sprintf("zip %d", z.ZipCode)
}

// CountrySelection sets the delivery location to a whole country.
type CountrySelection struct {
	CountryCode string
}

func (c CountrySelection) Payload() map[string]any {
	return map[string]any{
		"locationType": "COUNTRY",
		"district":     c.CountryCode,
		"countryCode":  c.CountryCode,
		"deviceType":   "web",
		"storeContext": "generic",
		"pageType":     "Gateway",
		"actionSource": "glow",
	}
}

func (c CountrySelection) String() string {
	return "country " + c.CountryCode
}

// SelectionPolicy decides which LocationSelection a run submits.
type SelectionPolicy string

const (
	SelectionCountry SelectionPolicy = "country"
	SelectionZip     SelectionPolicy = "zip"
	// SelectionAuto uses the zip code when the storefront locale is the target
	// country itself (e.g. DE/DE) and the country otherwise.
	SelectionAuto SelectionPolicy = "auto"
)

// ParseSelectionPolicy accepts "country", "zip" or "auto" (case-insensitive).
func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	switch p := SelectionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case SelectionCountry, SelectionZip, SelectionAuto:
		return p, nil
	case "":
		return SelectionCountry, nil
	default:
		return "", fmt.Errorf("unknown selection policy %q (want country, zip or auto)", s)
	}
}

// Select applies the policy to a config.
func (p SelectionPolicy) Select(cfg Config) LocationSelection {
	switch p {
	case SelectionZip:
		return ZipCodeSelection{ZipCode: cfg.ZipCode}
	case SelectionAuto:
		if strings.EqualFold(cfg.Locale, cfg.CountryCode) {
			return ZipCodeSelection{ZipCode: cfg.ZipCode}
		}
		return CountrySelection{CountryCode: cfg.CountryCode}
	default:
		return CountrySelection{CountryCode: cfg.CountryCode}
	}
}
