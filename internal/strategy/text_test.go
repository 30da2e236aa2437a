package strategy

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

var longSentence = strings.Repeat("The quick brown fox jumps over the lazy dog. ", 5)

func TestExtractText(t *testing.T) {
	t.Parallel()

	t.Run("prefers longest structural candidate", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<html><body>
			<nav>Home About Contact</nav>
			<div class="sidebar">short</div>
			<main><p>`+longSentence+`</p></main>
			<footer>Copyright</footer>
		</body></html>`)

		got := ExtractText(doc, nil, 0)
		if !strings.HasPrefix(got, "The quick brown fox") {
			t.Errorf("unexpected text: %q", got)
		}
		for _, noise := range []string{"Home About", "Copyright", "short"} {
			if strings.Contains(got, noise) {
				t.Errorf("text contains noise %q: %q", noise, got)
			}
		}
	})

	t.Run("removes scripts and styles", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<html><head><style>body{color:red}</style></head><body>
			<article>`+longSentence+`<script>var secret = 1;</script></article>
		</body></html>`)

		got := ExtractText(doc, nil, 0)
		if strings.Contains(got, "secret") || strings.Contains(got, "color:red") {
			t.Errorf("script or style leaked: %q", got)
		}
	})

	t.Run("content-like div is a candidate", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<html><body>
			<div id="post-body">`+longSentence+`</div>
			<div class="other">Some other much shorter text that is not content.</div>
		</body></html>`)

		got := ExtractText(doc, nil, 0)
		if strings.Contains(got, "Some other") {
			t.Errorf("expected content div only, got %q", got)
		}
	})

	t.Run("category selector is a candidate", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<html><body>
			<span id="productTitle">`+longSentence+` Acme Rocket Skates</span>
			<p>tiny</p>
		</body></html>`)

		got := ExtractText(doc, []string{"#productTitle"}, 0)
		if !strings.Contains(got, "Acme Rocket Skates") || strings.Contains(got, "tiny") {
			t.Errorf("unexpected text: %q", got)
		}
	})

	t.Run("falls back to body when candidates are trivial", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<html><body><main>Tiny main</main><p>Body paragraph text.</p></body></html>`)

		got := ExtractText(doc, nil, 0)
		if got != "Tiny main Body paragraph text." {
			t.Errorf("unexpected fallback text: %q", got)
		}
	})

	t.Run("block elements are separated", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<html><body><p>First.</p><p>Second.</p><ul><li>Third</li><li>Fourth</li></ul></body></html>`)

		got := ExtractText(doc, nil, 0)
		if got != "First. Second. Third Fourth" {
			t.Errorf("unexpected text: %q", got)
		}
	})

	t.Run("truncates to max runes", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<html><body><article>`+strings.Repeat("héllo wörld ", 200)+`</article></body></html>`)

		got := ExtractText(doc, nil, 50)
		if n := len([]rune(got)); n != 50 {
			t.Errorf("expected 50 runes, got %d", n)
		}
	})

	t.Run("extra candidate can win", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, `<html><body><p>short body</p></body></html>`)

		got := ExtractText(doc, nil, 0, longSentence)
		if !strings.HasPrefix(got, "The quick brown fox") {
			t.Errorf("expected extra candidate, got %q", got)
		}
	})

	t.Run("empty and nil documents", func(t *testing.T) {
		t.Parallel()

		if got := ExtractText(nil, nil, 0); got != "" {
			t.Errorf("expected empty text for nil doc, got %q", got)
		}
		if got := ExtractText(mustDoc(t, ""), nil, 0); got != "" {
			t.Errorf("expected empty text for empty doc, got %q", got)
		}
	})
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "hello", n: 0, want: "hello"},
		{in: "hello", n: 10, want: "hello"},
		{in: "hello", n: 3, want: "hel"},
		{in: "日本語テキスト", n: 3, want: "日本語"},
	}

	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
