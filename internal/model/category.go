package model

import (
	"fmt"
	"strings"
)

// SiteCategory is the kind of site a URL points to.
// It is derived purely from the URL string and decides which acquisition
// strategy and which extractor pattern family are used for a page.
type SiteCategory int

const (
	// CategoryGeneric is any page that matched no category keyword.
	CategoryGeneric SiteCategory = iota

	// CategoryRealEstate is a property listing (zillow, redfin, ...).
	CategoryRealEstate

	// CategoryProfessional is a professional profile or job page (linkedin, indeed, ...).
	CategoryProfessional

	// CategoryProduct is an e-commerce product page (amazon, ebay, ...).
	CategoryProduct
)

// AllCategories lists every category in declaration order.
var AllCategories = []SiteCategory{
	CategoryGeneric,
	CategoryRealEstate,
	CategoryProfessional,
	CategoryProduct,
}

// String returns the snake_case name used in JSON output and log attributes.
func (c SiteCategory) String() string {
	switch c {
	case CategoryGeneric:
		return "generic"
	case CategoryRealEstate:
		return "real_estate"
	case CategoryProfessional:
		return "professional"
	case CategoryProduct:
		return "product"
	default:
		return "unknown"
	}
}

// ParseSiteCategory converts a name produced by String back to a SiteCategory.
// Matching is case-insensitive and accepts "realestate" as an alias.
func ParseSiteCategory(s string) (SiteCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic", "":
		return CategoryGeneric, nil
	case "real_estate", "realestate":
		return CategoryRealEstate, nil
	case "professional":
		return CategoryProfessional, nil
	case "product":
		return CategoryProduct, nil
	default:
		return CategoryGeneric, fmt.Errorf("unknown site category %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so categories serialize as names.
func (c SiteCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *SiteCategory) UnmarshalText(text []byte) error {
	parsed, err := ParseSiteCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
