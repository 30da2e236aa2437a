package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/kgscrape/internal/model"
)

const (
	// DefaultZillowAPIBaseURL is the RapidAPI host of the zillow-com1 API.
	DefaultZillowAPIBaseURL = "https://zillow-com1.p.rapidapi.com"

	zillowAPIHost = "zillow-com1.p.rapidapi.com"

	// DefaultSearchLocation is used for Zillow URLs without a search slug.
	DefaultSearchLocation = "Los Angeles, CA"

	// maxAPIProperties is the most listings converted from one response.
	maxAPIProperties = 15

	apiTimeout     = 30 * time.Second
	maxAPIBodySize = 10 << 20
)

// Endpoint names, also used as the "api used" suffix of the extraction method.
const (
	endpointPrimary = "zillow-com1"
	endpointBackup  = "zillow-backup"
)

// ZillowAPIStrategy serves real-estate URLs from the zillow-com1 property API.
//
// Only Zillow URLs go to the API; other real-estate hosts are passed to the
// fallback strategy. The API is called directly, never through the proxy
// pool, so the key is not handed to third-party proxies.
type ZillowAPIStrategy struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	fallback Strategy
	logger   *slog.Logger
}

// ZillowOption configures a ZillowAPIStrategy.
type ZillowOption func(*ZillowAPIStrategy)

// WithAPIBaseURL overrides the API base URL.
func WithAPIBaseURL(u string) ZillowOption {
	return func(s *ZillowAPIStrategy) {
		if u != "" {
			s.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithAPIClient overrides the HTTP client used for API calls.
func WithAPIClient(c *http.Client) ZillowOption {
	return func(s *ZillowAPIStrategy) {
		if c != nil {
			s.client = c
		}
	}
}

// WithZillowLogger sets the logger.
func WithZillowLogger(logger *slog.Logger) ZillowOption {
	return func(s *ZillowAPIStrategy) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewZillowAPIStrategy creates the API strategy. fallback handles
// non-Zillow real-estate URLs and must not be nil.
func NewZillowAPIStrategy(apiKey string, fallback Strategy, opts ...ZillowOption) (*ZillowAPIStrategy, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	s := &ZillowAPIStrategy{
		apiKey:   apiKey,
		baseURL:  DefaultZillowAPIBaseURL,
		client:   &http.Client{Timeout: apiTimeout},
		fallback: fallback,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns "zillow_api".
func (s *ZillowAPIStrategy) Name() string {
	return "zillow_api"
}

// Category returns CategoryRealEstate.
func (s *ZillowAPIStrategy) Category() model.SiteCategory {
	return model.CategoryRealEstate
}

// Acquire queries the property search endpoint, falling back to the plain
// search endpoint, and converts the listings into a graph fragment.
func (s *ZillowAPIStrategy) Acquire(ctx context.Context, r Request) (*model.RawDocument, error) {
	if !strings.Contains(strings.ToLower(r.URL), "zillow.com") {
		return s.fallback.Acquire(ctx, r)
	}

	location := SearchLocation(r.URL)

	primary := url.Values{
		"location":    {location},
		"status_type": {"ForSale"},
		"home_type":   {"Houses"},
	}
	endpoint := endpointPrimary
	body, err := s.call(ctx, "/propertyExtendedSearch", primary)
	if err != nil {
		s.logger.Debug("primary property API failed, trying backup", "error", err)
		endpoint = endpointBackup
		var backupErr error
		body, backupErr = s.call(ctx, "/search", url.Values{"location": {location}})
		if backupErr != nil {
			return nil, fmt.Errorf("property API failed: %w; backup: %w", err, backupErr)
		}
	}

	fragment, err := s.convert(body, endpoint)
	if err != nil {
		return nil, err
	}

	doc := &model.RawDocument{
		URL:         r.URL,
		FinalURL:    r.URL,
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        body,
		Title:       "Zillow listings: " + location,
		Category:    model.CategoryRealEstate,
		Strategy:    s.Name(),
		Fragment:    fragment,
	}
	doc.ComputeHash()
	return doc, nil
}

func (s *ZillowAPIStrategy) call(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", s.apiKey)
	req.Header.Set("X-RapidAPI-Host", zillowAPIHost)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// SearchLocation derives the API search location from a Zillow URL:
// "/homes/for_sale/Austin-TX/" becomes "Austin TX". Other URLs get
// DefaultSearchLocation.
func SearchLocation(rawURL string) string {
	const marker = "/homes/for_sale/"
	_, rest, ok := strings.Cut(rawURL, marker)
	if !ok {
		return DefaultSearchLocation
	}
	slug, _, _ := strings.Cut(rest, "/")
	slug, _, _ = strings.Cut(slug, "?")
	if unescaped, err := url.PathUnescape(slug); err == nil {
		slug = unescaped
	}
	location := strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
	if location == "" {
		return DefaultSearchLocation
	}
	return location
}

// convert turns an API response into a fragment.
func (s *ZillowAPIStrategy) convert(body []byte, endpoint string) (*model.Fragment, error) {
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode API response from %s: %w", endpoint, err)
	}

	properties := propertyList(data)
	if len(properties) == 0 {
		return nil, fmt.Errorf("%w from %s", ErrNoProperties, endpoint)
	}

	f := &model.Fragment{Method: "zillow_api_" + endpoint}
	seen := make(map[string]bool)
	for i, p := range properties {
		if i >= maxAPIProperties {
			break
		}
		addProperty(f, seen, p, i+1, endpoint)
	}
	return f, nil
}

// propertyList finds the listing array in the known response shapes.
func propertyList(data any) []map[string]any {
	var items []any
	switch v := data.(type) {
	case []any:
		items = v
	case map[string]any:
		found := false
		for _, key := range []string{"props", "results", "properties", "listings"} {
			if list, ok := v[key].([]any); ok {
				items, found = list, true
				break
			}
		}
		if !found {
			items = []any{v}
		}
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// addProperty appends one listing to f. Listings often share a price or a
// bedroom count; seen keeps each entity name once per fragment while every
// listing still gets its own relationship to the shared entity.
func addProperty(f *model.Fragment, seen map[string]bool, p map[string]any, index int, endpoint string) {
	addEntity := func(name, description string) {
		if seen[name] {
			return
		}
		seen[name] = true
		f.Entities = append(f.Entities, model.Entity{Name: name, Description: description})
	}

	address := propertyAddress(p)
	if address == "" {
		address = fmt.Sprintf("Property %d from %s", index, endpoint)
	}
	address = clampName(address)
	addEntity(address, fmt.Sprintf("Property from Zillow API (%s)", endpoint))

	link := func(name, description string, rel model.RelationType, relDescription string) {
		addEntity(name, description)
		f.Relationships = append(f.Relationships, model.Relationship{
			Entity1:      model.EntityRef{Name: address},
			Entity2:      model.EntityRef{Name: name},
			RelationType: rel,
			Description:  relDescription,
		})
	}

	if price, ok := firstNumber(p, "price", "listPrice", "amount", "rentAmount", "zestimate"); ok {
		name := "$" + groupDigits(int64(price))
		link(name, "Property price", model.RelationPricedAt, "Property priced at "+name)
	}
	if beds, ok := firstNumber(p, "bedrooms", "beds", "bedroomCount"); ok {
		name := fmt.Sprintf("%d bedrooms", int64(beds))
		link(name, "Number of bedrooms", model.RelationHasBedrooms, "Property has "+name)
	}
	if baths, ok := firstNumber(p, "bathrooms", "baths", "bathroomCount"); ok {
		name := strconv.FormatFloat(baths, 'f', -1, 64) + " bathrooms"
		link(name, "Number of bathrooms", model.RelationHasBathrooms, "Property has "+name)
	}
	if area, ok := firstNumber(p, "livingArea", "sqft", "area", "squareFeet"); ok {
		n := groupDigits(int64(area))
		link(n+" sqft", "Living area square footage", model.RelationHasArea, "Property has "+n+" square feet")
	}
}

// groupDigits renders n with English thousands separators: 1250000 is "1,250,000".
func groupDigits(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func propertyAddress(p map[string]any) string {
	if addr, ok := p["address"].(map[string]any); ok {
		return joinNonEmpty(stringField(addr, "streetAddress"), stringField(addr, "city"),
			stringField(addr, "state"), stringField(addr, "zipcode"))
	}
	if _, hasStreet := p["street"]; hasStreet {
		return joinNonEmpty(stringField(p, "street"), stringField(p, "city"), stringField(p, "state"))
	}
	if _, hasCity := p["city"]; hasCity {
		return joinNonEmpty(stringField(p, "street"), stringField(p, "city"), stringField(p, "state"))
	}
	if full := stringField(p, "fullAddress"); full != "" {
		return full
	}
	if s, ok := p["address"].(string); ok && s != "" {
		return strings.TrimSpace(s)
	}
	return stringField(p, "formattedAddress")
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// firstNumber returns the first key holding a non-zero number or numeric
// string ("$1,250,000" included).
func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		var (
			f   float64
			err error
		)
		switch v := m[k].(type) {
		case json.Number:
			f, err = v.Float64()
		case string:
			clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(v)
			f, err = strconv.ParseFloat(clean, 64)
		case float64:
			f = v
		default:
			continue
		}
		if err == nil && f != 0 {
			return f, true
		}
	}
	return 0, false
}

// clampName shortens an entity name to the maximum length, cutting at a
// word boundary when possible.
func clampName(name string) string {
	runes := []rune(name)
	if len(runes) <= model.MaxEntityNameLength {
		return name
	}
	cut := string(runes[:model.MaxEntityNameLength])
	if i := strings.LastIndex(cut, " "); i >= model.MinEntityNameLength {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
