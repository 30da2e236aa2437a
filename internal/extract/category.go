package extract

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/kgscrape/internal/model"
)

// Skills is the professional skills vocabulary.
var Skills = []string{
	"Python", "JavaScript", "TypeScript", "Java", "Golang", "Kubernetes", "Docker",
	"Terraform", "React", "Machine Learning", "Data Analysis", "Data Science",
	"Project Management", "Product Management", "Leadership", "Communication",
	"Negotiation", "Public Speaking", "Cloud Architecture", "Distributed Systems",
	"Agile", "Scrum", "Excel", "Salesforce", "Figma",
}

// Brands is the product brand vocabulary.
var Brands = []string{
	"Apple", "Samsung", "Sony", "Microsoft", "Google", "Amazon", "Dell", "Lenovo",
	"Asus", "Acer", "Bose", "Nike", "Adidas", "Canon", "Nikon", "Logitech", "Anker",
	"Philips", "Panasonic", "Dyson", "Xiaomi", "Huawei", "Nintendo", "Garmin",
	"Fitbit", "Razer", "Corsair", "Sennheiser", "Jabra", "Roku",
}

// FeatureAdjectives is the product feature vocabulary.
var FeatureAdjectives = []string{
	"wireless", "waterproof", "water-resistant", "portable", "rechargeable",
	"lightweight", "ergonomic", "noise-cancelling", "durable", "compact",
	"adjustable", "foldable", "stainless steel", "energy-efficient", "fast-charging",
	"high-resolution", "ultra-thin", "dishwasher-safe",
}

// CategoryMatchers returns the specialized matchers for c, in order.
// CategoryGeneric has none.
func CategoryMatchers(c model.SiteCategory) []Matcher {
	switch c {
	case model.CategoryRealEstate:
		return realEstateMatchers()
	case model.CategoryProfessional:
		return professionalMatchers()
	case model.CategoryProduct:
		return productMatchers()
	default:
		return nil
	}
}

const streetSuffixes = `St|Street|Ave|Avenue|Rd|Road|Blvd|Boulevard|Dr|Drive|Ln|Lane|Way|Ct|Court|Pl|Place|Ter|Terrace|Pkwy|Parkway`

func realEstateMatchers() []Matcher {
	return []Matcher{
		NewPatternMatcher("price",
			`\$\d{1,3}(?:,\d{3})+(?:\.\d{2})?|\$\d+(?:\.\d+)?(?:\s?[MK]\b)?`,
			"Price"),
		NewPatternMatcher("street_address",
			`\b\d{1,6}\s+(?:[A-Z][a-z]+\s+){1,4}(?:`+streetSuffixes+`)\b`,
			"Street address"),
		NewPatternMatcher("bedrooms",
			`(?i)\b(\d{1,2})\s*(?:bedrooms?|beds?|bd|br)\b`,
			"Number of bedrooms",
			WithGroup(1), WithNormalize(countUnit("bedrooms"))),
		NewPatternMatcher("bathrooms",
			`(?i)\b(\d{1,2}(?:\.\d)?)\s*(?:bathrooms?|baths?|ba)\b`,
			"Number of bathrooms",
			WithGroup(1), WithNormalize(countUnit("bathrooms"))),
		NewPatternMatcher("square_footage",
			`(?i)\b(\d{1,3}(?:,\d{3})+|\d{3,6})\s*(?:sq\.?\s?ft\.?|square\s+feet|sqft)`,
			"Living area square footage",
			WithGroup(1), WithNormalize(squareFeet)),
	}
}

func professionalMatchers() []Matcher {
	return []Matcher{
		NewPatternMatcher("seniority_role",
			`\b(?:Senior|Junior|Lead|Principal|Staff|Chief|Associate|Head of|Director of|VP of|Vice President of)\s+(?:[A-Z][a-z]+\s+){0,2}(?:Engineer|Developer|Manager|Designer|Scientist|Analyst|Architect|Director|Officer|Consultant|Recruiter|Engineering|Product|Marketing|Sales|Operations|Design)\b`,
			"Job title"),
		NewPatternMatcher("role",
			`\b(?:Software|Data|Product|Project|Program|Marketing|Sales|Research|Frontend|Backend|Full Stack|DevOps|Security|Machine Learning|UX|Account)\s+(?:Engineer|Developer|Manager|Scientist|Designer|Analyst|Researcher|Architect|Lead|Executive)\b`,
			"Job title"),
		NewPatternMatcher("employer",
			`\b(?:works at|working at|worked at|employed at|employed by|joined|at)\s+([A-Z][A-Za-z0-9&]*(?:\s+[A-Z][A-Za-z0-9&]*){0,3})`,
			"Employer",
			WithGroup(1)),
		NewVocabularyMatcher("skill", Skills, "Professional skill"),
	}
}

func productMatchers() []Matcher {
	return []Matcher{
		NewPatternMatcher("brand_adjacent",
			`\b(?:by|from)\s+((?:[A-Z][A-Za-z0-9&]*)(?:\s+[A-Z][A-Za-z0-9&]*){0,2})`,
			"Brand or manufacturer",
			WithGroup(1)),
		NewVocabularyMatcher("brand", Brands, "Brand"),
		NewVocabularyMatcher("feature", FeatureAdjectives, "Product feature"),
		NewPatternMatcher("model_number",
			`\b(?:Model|Series)\s+[A-Z0-9][A-Za-z0-9-]{1,15}\b|\b(?:i[A-Z][a-z]+|[A-Z][a-z]+)\s+[A-Z]?\d{1,4}[a-z]?(?:\s+(?:Pro|Max|Plus|Ultra|Mini|Air))?\b`,
			"Model number"),
	}
}

// countUnit renders "3" as "3 bedrooms", matching the property API output.
func countUnit(unit string) func(string) string {
	return func(n string) string {
		return n + " " + unit
	}
}

// squareFeet renders "1800" or "1,800" as "1,800 sqft".
func squareFeet(n string) string {
	v, err := strconv.ParseInt(strings.ReplaceAll(n, ",", ""), 10, 64)
	if err != nil {
		return ""
	}
	return message.NewPrinter(language.English).Sprintf("%d", v) + " sqft"
}
