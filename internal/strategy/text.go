package strategy

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// minCandidateLength is the shortest candidate text accepted before falling
// back to the whole document body.
const minCandidateLength = 100

// noiseSelector lists elements that never carry page content.
const noiseSelector = "script, style, noscript, nav, footer, header, aside, iframe, svg, form"

// structuralSelectors are tried for every category.
var structuralSelectors = []string{"main", "article", "[role=main]"}

// contentHints mark divs whose class or id suggests page content.
var contentHints = []string{"content", "main", "article", "post", "body", "entry"}

// ExtractText returns the highest-signal text of doc.
//
// Non-content elements are removed first. Then every structural candidate
// (main, article, [role=main], content-like divs, the category selectors and
// any extra text supplied by the caller) is measured, and the longest wins.
// When the winner is shorter than minCandidateLength the whole body is used
// instead. The result is whitespace-normalized and cut to maxLen runes.
//
// ExtractText modifies doc. It never fails: a document without text yields "".
func ExtractText(doc *goquery.Document, selectors []string, maxLen int, extra ...string) string {
	if doc == nil {
		return ""
	}
	doc.Find(noiseSelector).Remove()

	best := ""
	consider := func(text string) {
		text = normalizeSpace(text)
		if len(text) > len(best) {
			best = text
		}
	}

	for _, sel := range structuralSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			consider(selectionText(s))
		})
	}

	doc.Find("div").Each(func(_ int, s *goquery.Selection) {
		if hasContentHint(s) {
			consider(selectionText(s))
		}
	})

	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			consider(selectionText(s))
		})
	}

	for _, text := range extra {
		consider(text)
	}

	if len(best) < minCandidateLength {
		body := doc.Find("body")
		if body.Length() > 0 {
			best = normalizeSpace(selectionText(body))
		} else {
			best = normalizeSpace(selectionText(doc.Selection))
		}
	}

	return truncateRunes(best, maxLen)
}

// blockElements get a space on both sides when flattened to text so that
// "<p>One</p><p>Two</p>" reads "One Two" rather than "OneTwo".
var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "br": true, "dd": true,
	"div": true, "dl": true, "dt": true, "figcaption": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "hr": true, "li": true,
	"main": true, "ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// selectionText flattens s to text, separating block elements.
func selectionText(s *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range s.Nodes {
		writeNodeText(&sb, n)
	}
	return sb.String()
}

func writeNodeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNodeText(sb, c)
	}
	if block {
		sb.WriteByte(' ')
	}
}

func hasContentHint(s *goquery.Selection) bool {
	class := strings.ToLower(s.AttrOr("class", ""))
	id := strings.ToLower(s.AttrOr("id", ""))
	for _, hint := range contentHints {
		if strings.Contains(class, hint) || strings.Contains(id, hint) {
			return true
		}
	}
	return false
}

// normalizeSpace collapses every whitespace run to a single space.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n runes. n <= 0 means no limit.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
