// Package normalize turns raw document content into the token stream a
// pkg/lsh signer expects: HTML stripped, boilerplate (timestamps,
// hashes, long opaque IDs) masked out, and shingled into overlapping
// n-grams so word-order differences still land near each other in
// MinHash/SimHash space.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// Tokenizer extracts a feature stream from document content, ready to
// hand to lsh.MinHashSigner.Sign or lsh.SimHashSigner.Sign.
type Tokenizer struct {
	nGramSize      int
	caseSensitive  bool
	stripHTML      bool
	ignoreNumbers  bool
	ignorePatterns []*regexp.Regexp
}

// Option is a functional option for Tokenizer configuration.
type Option func(*Tokenizer)

// WithNGramSize sets the n-gram size used for shingling.
func WithNGramSize(n int) Option {
	return func(t *Tokenizer) {
		if n > 0 {
			t.nGramSize = n
		}
	}
}

// WithCaseSensitive enables case-sensitive comparison.
func WithCaseSensitive(enabled bool) Option {
	return func(t *Tokenizer) { t.caseSensitive = enabled }
}

// WithStripHTML enables HTML tag stripping.
func WithStripHTML(enabled bool) Option {
	return func(t *Tokenizer) { t.stripHTML = enabled }
}

// WithIgnoreNumbers enables stripping numeric digits before shingling.
func WithIgnoreNumbers(enabled bool) Option {
	return func(t *Tokenizer) { t.ignoreNumbers = enabled }
}

// WithIgnorePatterns adds regex patterns masked out before shingling.
// Invalid patterns are silently skipped.
func WithIgnorePatterns(patterns []string) Option {
	return func(t *Tokenizer) {
		for _, p := range patterns {
			if re, err := regexp.Compile(p); err == nil {
				t.ignorePatterns = append(t.ignorePatterns, re)
			}
		}
	}
}

// NewTokenizer creates a Tokenizer. Defaults strip HTML, drop digits, and
// mask a handful of boilerplate patterns (dates, hex digests, long
// tokens) that would otherwise dominate a signature without indicating
// real similarity.
func NewTokenizer(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		nGramSize:      3,
		caseSensitive:  false,
		stripHTML:      true,
		ignoreNumbers:  true,
		ignorePatterns: make([]*regexp.Regexp, 0),
	}

	defaultPatterns := []string{
		`\d{4}-\d{2}-\d{2}`,  // Date: 2024-01-30
		`\d{2}:\d{2}:\d{2}`,  // Time: 12:34:56
		`[a-f0-9]{32}`,       // MD5 hash
		`[a-f0-9]{40}`,       // SHA1 hash
		`[a-f0-9]{64}`,       // SHA256 hash
		`[A-Za-z0-9_-]{20,}`, // Long tokens/IDs
	}
	for _, p := range defaultPatterns {
		if re, err := regexp.Compile(p); err == nil {
			t.ignorePatterns = append(t.ignorePatterns, re)
		}
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Tokenize normalizes content and shingles it into overlapping word
// n-grams, the feature stream a MinHash/SimHash signer expects.
func (t *Tokenizer) Tokenize(content string) []string {
	processed := t.preprocess(content)
	return shingle(processed, t.nGramSize)
}

// TokenizeHTMLStructure extracts a document's tag-path structure instead
// of its text content, for clustering by markup shape (templated pages,
// boilerplate emails) rather than wording.
func (t *Tokenizer) TokenizeHTMLStructure(html string) []string {
	return extractHTMLStructure(html)
}

// preprocess normalizes content before shingling.
func (t *Tokenizer) preprocess(content string) string {
	result := content

	if t.stripHTML {
		result = stripHTMLTags(result)
	}

	for _, re := range t.ignorePatterns {
		result = re.ReplaceAllString(result, " ")
	}

	result = normalizeWhitespace(result)

	if !t.caseSensitive {
		result = strings.ToLower(result)
	}

	if t.ignoreNumbers {
		result = removeNumbers(result)
	}

	return result
}

// shingle splits content into words and slides an n-word window across
// them. Content shorter than n yields the words themselves, so short
// documents still produce a usable (if sparse) signature.
func shingle(content string, n int) []string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil
	}
	if len(words) < n {
		return words
	}

	features := make([]string, 0, len(words)-n+1)
	for i := 0; i <= len(words)-n; i++ {
		features = append(features, strings.Join(words[i:i+n], " "))
	}
	return features
}

// extractHTMLStructure walks the tag stream and records the open-tag
// path at each point, so two documents with the same DOM shape but
// different text produce overlapping feature sets.
func extractHTMLStructure(html string) []string {
	features := make([]string, 0)

	tagRe := regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9]*)[^>]*>`)
	matches := tagRe.FindAllStringSubmatch(html, -1)

	var path []string
	for _, match := range matches {
		isClosing := match[1] == "/"
		tagName := strings.ToLower(match[2])

		if isSelfClosingTag(tagName) {
			continue
		}

		if isClosing {
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
			continue
		}

		path = append(path, tagName)
		features = append(features, strings.Join(path, ">"))
	}

	return features
}

func isSelfClosingTag(tag string) bool {
	selfClosing := map[string]bool{
		"br": true, "hr": true, "img": true, "input": true,
		"meta": true, "link": true, "area": true, "base": true,
		"col": true, "embed": true, "param": true, "source": true,
		"track": true, "wbr": true,
	}
	return selfClosing[tag]
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTMLTags(content string) string {
	return htmlTagPattern.ReplaceAllString(content, " ")
}

var whitespacePattern = regexp.MustCompile(`\s+`)

func normalizeWhitespace(content string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(content, " "))
}

func removeNumbers(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	for _, r := range content {
		if !unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
