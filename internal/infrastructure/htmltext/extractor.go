// Package htmltext turns fetched search pages into plain text for the
// synthesis prompt.
package htmltext

import (
	"strings"
	"unicode/utf8"

	"browser-bridge/internal/application/port/output"

	"golang.org/x/net/html"
)

var _ output.TextExtractorPort = (*Extractor)(nil)

type Config struct {
	// TagsToSkip are dropped together with everything inside them.
	TagsToSkip []string
}

// DefaultConfig skips script and style bodies, which are code, not page text.
var DefaultConfig = Config{
	TagsToSkip: []string{"script", "style", "noscript", "template"},
}

type Extractor struct {
	skip map[string]bool
}

func NewExtractor(cfg *Config) *Extractor {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	skip := make(map[string]bool, len(cfg.TagsToSkip))
	for _, tag := range cfg.TagsToSkip {
		skip[tag] = true
	}
	return &Extractor{skip: skip}
}

// ExtractText returns the document text with whitespace collapsed, cut to
// maxChars characters. maxChars <= 0 means no limit.
func (e *Extractor) ExtractText(rawHTML string, maxChars int) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return truncateRunes(collapseSpace(rawHTML), maxChars)
	}

	var sb strings.Builder
	e.collect(doc, &sb)

	return truncateRunes(collapseSpace(sb.String()), maxChars)
}

// collect appends text nodes under n, separated by spaces so that adjacent
// elements do not glue words together.
func (e *Extractor) collect(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	case html.ElementNode:
		if e.skip[n.Data] {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.collect(c, sb)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts on a character boundary.
func truncateRunes(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	count := 0
	for i := range s {
		if count == maxChars {
			return s[:i]
		}
		count++
	}
	return s
}
