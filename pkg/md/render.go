// Package md converts markdown documents to Confluence storage format and back.
//
// Conversion happens in two stages: Render turns markdown into plain HTML with
// goldmark, then Convert applies an ordered list of rewrite passes that turn
// that HTML into storage-format markup (code macros, callouts, table of
// contents, placeholders and footnotes). The passes that need page identity or
// remote lookups (local anchors, cross-page links, images) are exported
// separately and run by the publisher once the page exists.
package md

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// mdParser is a pre-configured goldmark instance with table and footnote
// extensions. Raw HTML is passed through so comments, iframes and inline
// markers reach the rewrite passes untouched; XHTML output keeps void
// elements self-closed as storage format requires.
var mdParser = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Footnote,
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
		html.WithXHTML(),
	),
)

// Render converts markdown to HTML.
func Render(markdown []byte) (string, error) {
	if len(markdown) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	if err := mdParser.Convert(markdown, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// escapeXML escapes special XML characters in a string.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
