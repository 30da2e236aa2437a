package classifier

import (
	"testing"

	"github.com/nao1215/kgscrape/internal/model"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want model.SiteCategory
	}{
		{name: "zillow listing", url: "https://www.zillow.com/homes/for_sale/Austin-TX/", want: model.CategoryRealEstate},
		{name: "uppercase host", url: "HTTPS://WWW.ZILLOW.COM/homedetails/1", want: model.CategoryRealEstate},
		{name: "redfin", url: "https://www.redfin.com/TX/Austin", want: model.CategoryRealEstate},
		{name: "apartments.com", url: "https://www.apartments.com/austin-tx/", want: model.CategoryRealEstate},
		{name: "linkedin profile", url: "https://www.linkedin.com/in/someone", want: model.CategoryProfessional},
		{name: "wellfound", url: "https://wellfound.com/company/acme", want: model.CategoryProfessional},
		{name: "amazon product", url: "https://www.amazon.com/dp/B0ABCDEF", want: model.CategoryProduct},
		{name: "bestbuy", url: "https://www.bestbuy.com/site/sku", want: model.CategoryProduct},
		{name: "generic site", url: "https://en.wikipedia.org/wiki/Go_(programming_language)", want: model.CategoryGeneric},
		{name: "empty", url: "", want: model.CategoryGeneric},
		{name: "not a URL", url: "::not a url::", want: model.CategoryGeneric},
		{name: "keyword in path", url: "https://example.com/compare/zillow-vs-redfin", want: model.CategoryRealEstate},
		// Real-estate rules come first in the table.
		{name: "first rule wins", url: "https://zillow.example/amazon", want: model.CategoryRealEstate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Classify(tt.url); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	const u = "https://www.linkedin.com/in/x"
	first := Classify(u)
	for range 10 {
		if got := Classify(u); got != first {
			t.Fatalf("Classify changed result: %v != %v", got, first)
		}
	}
}

func TestNewWithExtraRules(t *testing.T) {
	t.Parallel()

	c := New(
		Rule{Keyword: "  RightMove ", Category: model.CategoryRealEstate},
		Rule{Keyword: "", Category: model.CategoryProduct},
	)
	c = New(append(c.Rules()[len(DefaultRules):], RulesFromKeywords(model.CategoryProduct, []string{"newegg"})...)...)

	tests := []struct {
		url  string
		want model.SiteCategory
	}{
		{url: "https://www.rightmove.co.uk/properties/1", want: model.CategoryRealEstate},
		{url: "https://www.newegg.com/p/1", want: model.CategoryProduct},
		{url: "https://www.zillow.com/", want: model.CategoryRealEstate},
		{url: "https://example.org/", want: model.CategoryGeneric},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.url); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}

	if got := len(c.Rules()); got != len(DefaultRules)+2 {
		t.Errorf("len(Rules()) = %d, want %d", got, len(DefaultRules)+2)
	}
}
