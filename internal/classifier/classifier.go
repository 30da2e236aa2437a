package classifier

import (
	"strings"

	"github.com/nao1215/kgscrape/internal/model"
)

// Rule maps a keyword to a category.
type Rule struct {
	Keyword  string
	Category model.SiteCategory
}

// DefaultRules is the built-in keyword table, evaluated in order.
var DefaultRules = []Rule{
	{Keyword: "zillow", Category: model.CategoryRealEstate},
	{Keyword: "realtor", Category: model.CategoryRealEstate},
	{Keyword: "redfin", Category: model.CategoryRealEstate},
	{Keyword: "trulia", Category: model.CategoryRealEstate},
	{Keyword: "apartments.com", Category: model.CategoryRealEstate},
	{Keyword: "homes.com", Category: model.CategoryRealEstate},

	{Keyword: "linkedin", Category: model.CategoryProfessional},
	{Keyword: "glassdoor", Category: model.CategoryProfessional},
	{Keyword: "indeed", Category: model.CategoryProfessional},
	{Keyword: "angel.co", Category: model.CategoryProfessional},
	{Keyword: "wellfound", Category: model.CategoryProfessional},

	{Keyword: "amazon", Category: model.CategoryProduct},
	{Keyword: "ebay", Category: model.CategoryProduct},
	{Keyword: "etsy", Category: model.CategoryProduct},
	{Keyword: "walmart", Category: model.CategoryProduct},
	{Keyword: "bestbuy", Category: model.CategoryProduct},
	{Keyword: "target.com", Category: model.CategoryProduct},
	{Keyword: "aliexpress", Category: model.CategoryProduct},
}

// Classifier holds an immutable rule table.
type Classifier struct {
	rules []Rule
}

// New returns a Classifier using DefaultRules followed by extra.
// Extra rules with an empty keyword are dropped.
func New(extra ...Rule) *Classifier {
	rules := make([]Rule, 0, len(DefaultRules)+len(extra))
	rules = append(rules, DefaultRules...)
	for _, r := range extra {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" {
			continue
		}
		rules = append(rules, Rule{Keyword: kw, Category: r.Category})
	}
	return &Classifier{rules: rules}
}

// RulesFromKeywords builds rules for one category from a keyword list.
func RulesFromKeywords(category model.SiteCategory, keywords []string) []Rule {
	rules := make([]Rule, 0, len(keywords))
	for _, kw := range keywords {
		rules = append(rules, Rule{Keyword: kw, Category: category})
	}
	return rules
}

// Classify returns the category of the first rule whose keyword occurs in
// rawURL, or CategoryGeneric.
func (c *Classifier) Classify(rawURL string) model.SiteCategory {
	lower := strings.ToLower(rawURL)
	for _, r := range c.rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Category
		}
	}
	return model.CategoryGeneric
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

var defaultClassifier = New()

// Classify classifies rawURL with the built-in table.
func Classify(rawURL string) model.SiteCategory {
	return defaultClassifier.Classify(rawURL)
}
