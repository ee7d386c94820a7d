package pipeline

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Publisher suffixes that feeds append to their headlines.
var titleSuffixes = []string{
	" - The New York Times",
	" - BBC News",
	" | AP News",
	" - ABC News",
	" | Reuters",
	" - NPR",
	" | The Guardian",
	" | Ars Technica",
	" - The Verge",
	" - POLITICO",
	" - The Hill",
	" - Bloomberg",
	" - MarketWatch",
	" - CNBC",
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"as": true, "is": true, "was": true, "are": true, "were": true,
	"be": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "may": true,
	"might": true, "must": true, "shall": true, "can": true,
	"this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "they": true, "them": true, "their": true,
	"what": true, "which": true, "who": true, "whom": true, "whose": true,
	"where": true, "when": true, "why": true, "how": true,
	"all": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"no": true, "not": true, "only": true, "own": true, "same": true,
	"so": true, "than": true, "too": true, "very": true, "just": true,
	"about": true, "after": true, "before": true, "between": true,
	"into": true, "through": true, "during": true, "above": true,
	"below": true, "up": true, "down": true, "out": true, "off": true,
	"over": true, "under": true, "again": true, "then": true,
	"once": true, "here": true, "there": true, "new": true,
	"says": true, "said": true, "get": true, "got": true, "make": true,
	"made": true, "take": true, "see": true, "want": true, "use": true,
	"breaking": true, "update": true, "latest": true, "news": true,
	"today": true,
}

// titleTokens lowercases the title, splits on non-alphanumerics, and
// drops stop-words, short words, and pure numbers. Both the keyword
// extractor and the similarity metric build on it.
func titleTokens(title string) []string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, w := range words {
		if len(w) <= 2 || stopwords[w] || isDigits(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// cleanTitle collapses whitespace and strips known publisher suffixes.
// Suffixes are stripped until the string stops changing, so feeds that
// stack them still clean down in a single pass and applying cleanTitle
// twice yields the same string.
func cleanTitle(title string) string {
	t := strings.Join(strings.Fields(title), " ")
	for {
		stripped := t
		for _, suffix := range titleSuffixes {
			stripped = strings.TrimSuffix(stripped, suffix)
		}
		if stripped == t {
			break
		}
		t = stripped
	}
	return strings.TrimSpace(t)
}

// stripHTML flattens markup in feed summaries down to plain text.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Script ranges whose presence rules a title out as English.
var nonEnglishRanges = []*unicode.RangeTable{
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
	unicode.Arabic,
	unicode.Cyrillic,
	unicode.Devanagari,
	unicode.Thai,
	unicode.Hebrew,
}

// isEnglish reports whether text appears to be primarily English: no
// characters from a non-Latin script, and at least 70% ASCII or common
// Latin-1 letters.
func isEnglish(text string) bool {
	if text == "" {
		return false
	}

	total := 0
	latin := 0
	for _, r := range text {
		total++
		for _, table := range nonEnglishRanges {
			if unicode.Is(table, r) {
				return false
			}
		}
		if r < 128 || unicode.Is(unicode.Latin, r) {
			latin++
		}
	}

	return float64(latin)/float64(total) >= 0.7
}
