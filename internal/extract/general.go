package extract

// TechnicalTerms is the vocabulary of the technical-term matcher, in
// canonical spelling.
var TechnicalTerms = []string{
	"iPhone", "iPad", "iOS", "macOS", "Android", "Windows", "Linux",
	"Bluetooth", "Wi-Fi", "Ethernet",
	"JavaScript", "TypeScript", "Python", "Java", "Golang", "Rust", "Kotlin", "Swift",
	"Kubernetes", "Docker", "Terraform", "PostgreSQL", "MySQL", "MongoDB", "Redis",
	"GraphQL", "React", "Node.js", "GitHub", "TensorFlow", "PyTorch",
	"Blockchain", "Machine Learning", "Artificial Intelligence", "Cloud Computing",
	"Smart Home",
}

// organizationSuffixes mark organization names ("Acme Corp", "Initech LLC").
const organizationSuffixes = `Inc|Corp|Corporation|LLC|Ltd|Limited|Company|Co|Technologies|Labs|Group|Holdings|Systems`

// GeneralMatchers returns the matchers applied to every page, in order.
func GeneralMatchers() []Matcher {
	return []Matcher{
		NewPatternMatcher("capitalized_phrase",
			`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`,
			"Named entity mentioned in content"),
		NewVocabularyMatcher("technical_term", TechnicalTerms,
			"Technical term"),
		NewPatternMatcher("quoted_phrase",
			`["“]([^"“”\n]{3,49})["”]`,
			"Quoted term",
			WithGroup(1)),
		NewPatternMatcher("organization",
			`\b((?:[A-Z][A-Za-z0-9&]*\s+){1,3}(?:`+organizationSuffixes+`))\b\.?`,
			"Organization",
			WithGroup(1)),
	}
}
