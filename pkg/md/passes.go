package md

import (
	"regexp"
	"strings"
)

// StripFirstLine drops the first line of html. It is used when the page
// title was taken from the document's first line.
func StripFirstLine(html string) string {
	if i := strings.IndexByte(html, '\n'); i >= 0 {
		return html[i+1:]
	}
	return ""
}

// Detail is one row of the page details table.
type Detail struct {
	Key   string
	Value string
}

// PrependDetails puts a details macro holding the given key/value rows ahead
// of the document.
func PrependDetails(html string, details []Detail, hidden bool) string {
	if len(details) == 0 {
		return html
	}

	var rows strings.Builder
	rows.WriteString("<table><tbody>")
	for _, d := range details {
		rows.WriteString("<tr><th>")
		rows.WriteString(escapeXML(d.Key))
		rows.WriteString("</th><td>")
		rows.WriteString(escapeXML(d.Value))
		rows.WriteString("</td></tr>")
	}
	rows.WriteString("</tbody></table>")

	hiddenValue := "false"
	if hidden {
		hiddenValue = "true"
	}

	return RenderMacroToXML(&MacroNode{
		Name:       "details",
		Parameters: []Parameter{{"hidden", hiddenValue}},
		Body:       rows.String(),
		BodyType:   BodyTypeRichText,
	}) + html
}

const tocMarker = "<p>[TOC]</p>"

// ReplaceTOC replaces the first [TOC] paragraph with a table of contents macro.
func ReplaceTOC(html string) string {
	toc := "<p>" + RenderMacroToXML(&MacroNode{Name: "toc", SchemaVersion: "1"}) + "</p>"
	return strings.Replace(html, tocMarker, toc, 1)
}

// ConvertComments turns HTML comments into placeholder elements so they stay
// in the page source without being displayed.
func ConvertComments(html string) string {
	html = strings.ReplaceAll(html, "<!--", "<ac:placeholder>")
	return strings.ReplaceAll(html, "-->", "</ac:placeholder>")
}

var (
	codeBlock = regexp.MustCompile(`(?s)<pre><code(?: class="([^"]*)")?>(.*?)</code></pre>`)

	// entityDecoder restores the characters the renderer escaped in code.
	entityDecoder = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&amp;", "&",
	)
)

// ConvertCodeBlocks turns every fenced or indented code block into a code
// macro. The language comes from the block's class, without the renderer's
// "language-" prefix, and defaults to "none".
func ConvertCodeBlocks(html string) string {
	return codeBlock.ReplaceAllStringFunc(html, func(match string) string {
		groups := codeBlock.FindStringSubmatch(match)
		lang := strings.TrimPrefix(groups[1], "language-")
		if lang == "" {
			lang = "none"
		}

		macro := RenderMacroToXML(&MacroNode{
			Name: "code",
			Parameters: []Parameter{
				{"theme", "Midnight"},
				{"linenumbers", "true"},
				{"language", lang},
			},
			Body:     groups[2],
			BodyType: BodyTypePlainText,
		})
		return entityDecoder.Replace(macro)
	})
}

var iframe = regexp.MustCompile(`(?s)<iframe.*?</iframe>`)

// ConvertIframes wraps iframes in an html macro. Iframes that are part of a
// code macro body are left alone.
func ConvertIframes(html string) string {
	return replaceOutsideCDATA(html, func(s string) string {
		return iframe.ReplaceAllStringFunc(s, func(match string) string {
			return "<p>" + RenderMacroToXML(&MacroNode{
				Name:     "html",
				Body:     match,
				BodyType: BodyTypePlainText,
			}) + "</p>"
		})
	})
}

// emoji covers emoticons, symbols and pictographs, transport and map symbols,
// and regional indicator flags.
var emoji = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}]+`)

// RemoveEmojis strips emoji characters.
func RemoveEmojis(html string) string {
	return emoji.ReplaceAllString(html, "")
}

// AddContents prepends a contents macro to the document.
func AddContents(html string) string {
	contents := RenderMacroToXML(&MacroNode{
		Name: "toc",
		Parameters: []Parameter{
			{"printable", "true"},
			{"style", "disc"},
			{"maxLevel", "5"},
			{"minLevel", "1"},
			{"class", "rm-contents"},
			{"exclude", ""},
			{"type", "list"},
			{"outline", "false"},
			{"include", ""},
		},
	})
	return contents + "\n" + html
}

var (
	footnoteDef = regexp.MustCompile(`\n(\[\^(\d+)\].*)|<p>(\[\^(\d+)\].*)`)
	hrefAttr    = regexp.MustCompile(`href="(.*?)"`)
	paraTags    = strings.NewReplacer("<p>", "", "</p>", "")
)

// ConvertFootnotes turns literal footnote definitions of the form
// "[^N]: <a href=...>" into superscript links at every [^N] citation and
// removes the definitions. Definitions without a link are left in place.
func ConvertFootnotes(html string) string {
	visible := cdataSection.ReplaceAllString(html, "")
	for _, m := range footnoteDef.FindAllStringSubmatch(visible, -1) {
		def, id := m[1], m[2]
		if def == "" {
			def, id = m[3], m[4]
		}
		def = paraTags.Replace(def)

		href := hrefAttr.FindStringSubmatch(def)
		if href == nil {
			continue
		}

		remove := def
		if wrapped := "<p>" + def + "</p>"; strings.Contains(visible, wrapped) {
			remove = wrapped
		}
		sup := `<a id="test" href="` + href[1] + `"><sup>` + id + `</sup></a>`
		html = replaceOutsideCDATA(html, func(s string) string {
			s = strings.ReplaceAll(s, remove, "")
			return strings.ReplaceAll(s, "[^"+id+"]", sup)
		})
	}
	return html
}
