package md

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ConvertOptions configures the storage to markdown conversion.
type ConvertOptions struct {
	// ShowMacros shows placeholder text for macros that have no markdown form
	// instead of stripping them.
	ShowMacros bool
}

// FromConfluenceStorage converts Confluence storage format (XHTML) to markdown.
func FromConfluenceStorage(storage string) (string, error) {
	return FromConfluenceStorageWithOptions(storage, ConvertOptions{})
}

// FromConfluenceStorageWithOptions converts Confluence storage format (XHTML)
// to markdown with configurable options. Code, callout and anchor markup
// produced by Convert is mapped back to its markdown form.
func FromConfluenceStorageWithOptions(storage string, opts ConvertOptions) (string, error) {
	if storage == "" {
		return "", nil
	}

	s := &storageReader{showMacros: opts.ShowMacros}
	prepared := s.prepare(storage)

	markdown, err := htmltomarkdown.ConvertString(prepared)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(s.restore(markdown)), nil
}

const (
	macroPlaceholderPrefix = "CFMACRO"
	macroPlaceholderSuffix = "END"
	macroClose             = "</ac:structured-macro>"
)

// FormatPlaceholder returns the marker that stands in for macro text while
// the document passes through the markdown converter.
func FormatPlaceholder(id int) string {
	return macroPlaceholderPrefix + strconv.Itoa(id) + macroPlaceholderSuffix
}

var (
	codeMacro        = regexp.MustCompile(`(?s)<ac:structured-macro[^>]*ac:name="code"[^>]*>(.*?)<ac:plain-text-body>(.*?)</ac:plain-text-body>\s*</ac:structured-macro>`)
	selfClosingMacro = regexp.MustCompile(`<ac:structured-macro[^>]*ac:name="([^"]*)"[^>]*/>`)
	macroName        = regexp.MustCompile(`^<ac:structured-macro[^>]*ac:name="([^"]*)"`)
	macroParam       = regexp.MustCompile(`(?s)<ac:parameter ac:name="([^"]*)"\s*>(.*?)</ac:parameter>`)
	macroParamEmpty  = regexp.MustCompile(`<ac:parameter[^>]*/>`)
	richTextBody     = regexp.MustCompile(`(?s)<ac:rich-text-body>(.*)</ac:rich-text-body>`)
	cdataContent     = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	anchorLink       = regexp.MustCompile(`(?s)<ac:link ac:anchor="([^"]*)"[^>]*>(.*?)</ac:link>`)
	otherLink        = regexp.MustCompile(`(?s)<ac:link[^>]*>(.*?)</ac:link>`)
	linkBody         = regexp.MustCompile(`(?s)<ac:(?:plain-text-)?link-body>(.*?)</ac:(?:plain-text-)?link-body>`)
	attachedImage    = regexp.MustCompile(`(?s)<ac:image[^>]*>.*?<ri:attachment ri:filename="([^"]*)"[^>]*/>.*?</ac:image>`)
	remoteImage      = regexp.MustCompile(`(?s)<ac:image[^>]*>.*?<ri:url ri:value="([^"]*)"[^>]*/>.*?</ac:image>`)
	placeholderElem  = regexp.MustCompile(`(?s)<ac:placeholder>.*?</ac:placeholder>`)
	resourceRef      = regexp.MustCompile(`<ri:[^>]*/?>`)
)

// callouts maps callout macro names to the label written in front of their
// body. Info callouts need none.
var callouts = map[string]string{
	"info":    "",
	"tip":     "",
	"note":    "Note",
	"warning": "Warning",
}

// storageReader rewrites storage markup into plain HTML the markdown
// converter understands, remembering placeholder text to restore afterwards.
type storageReader struct {
	showMacros   bool
	placeholders []string
}

func (s *storageReader) placeholder(text string) string {
	id := len(s.placeholders)
	s.placeholders = append(s.placeholders, text)
	return "<p>" + FormatPlaceholder(id) + "</p>"
}

func (s *storageReader) restore(markdown string) string {
	for id := len(s.placeholders) - 1; id >= 0; id-- {
		markdown = strings.ReplaceAll(markdown, FormatPlaceholder(id), s.placeholders[id])
	}
	return markdown
}

func (s *storageReader) prepare(storage string) string {
	// Code bodies may contain markup-like text, so they are escaped first.
	storage = codeMacro.ReplaceAllStringFunc(storage, func(match string) string {
		m := codeMacro.FindStringSubmatch(match)
		params := parseParams(m[1])
		return codeBlockHTML(params["language"], cdataText(m[2]))
	})

	storage = placeholderElem.ReplaceAllString(storage, "")
	storage = anchorLink.ReplaceAllStringFunc(storage, func(match string) string {
		m := anchorLink.FindStringSubmatch(match)
		return fmt.Sprintf(`<a href="#%s">%s</a>`, m[1], linkText(m[2]))
	})
	storage = otherLink.ReplaceAllStringFunc(storage, func(match string) string {
		return linkText(otherLink.FindStringSubmatch(match)[1])
	})
	storage = attachedImage.ReplaceAllString(storage, `<img src="$1" alt="$1"/>`)
	storage = remoteImage.ReplaceAllString(storage, `<img src="$1" alt=""/>`)

	storage = selfClosingMacro.ReplaceAllStringFunc(storage, func(match string) string {
		name := strings.ToLower(selfClosingMacro.FindStringSubmatch(match)[1])
		return s.renderMacro(name, nil, nil, "")
	})

	// Innermost macros first: the last opening tag is always closed by the
	// next closing tag.
	for {
		start := strings.LastIndex(storage, "<ac:structured-macro")
		if start < 0 {
			break
		}
		rel := strings.Index(storage[start:], macroClose)
		if rel < 0 {
			break
		}
		end := start + rel + len(macroClose)
		storage = storage[:start] + s.replaceMacro(storage[start:end]) + storage[end:]
	}

	storage = macroParam.ReplaceAllString(storage, "")
	storage = macroParamEmpty.ReplaceAllString(storage, "")
	return resourceRef.ReplaceAllString(storage, "")
}

func (s *storageReader) replaceMacro(macro string) string {
	var name string
	if m := macroName.FindStringSubmatch(macro); m != nil {
		name = strings.ToLower(m[1])
	}

	var body string
	if m := richTextBody.FindStringSubmatch(macro); m != nil {
		body = m[1]
		macro = strings.Replace(macro, m[0], "", 1)
	}

	names, values := parseParamList(macro)
	return s.renderMacro(name, names, values, body)
}

func (s *storageReader) renderMacro(name string, names []string, values map[string]string, body string) string {
	if label, ok := callouts[name]; ok {
		return calloutHTML(label, body)
	}
	if name == "html" {
		return ""
	}
	if !s.showMacros {
		return body
	}

	open := s.placeholder(bracketOpen(name, names, values))
	if strings.TrimSpace(body) == "" {
		return open
	}
	return open + body + s.placeholder("[/"+strings.ToUpper(name)+"]")
}

// bracketOpen renders [NAME k=v ...], quoting values that contain spaces.
func bracketOpen(name string, names []string, values map[string]string) string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(strings.ToUpper(name))
	for _, k := range names {
		v := values[k]
		sb.WriteString(" ")
		sb.WriteString(k)
		sb.WriteString("=")
		if strings.ContainsAny(v, " \t") {
			sb.WriteString(strconv.Quote(v))
		} else {
			sb.WriteString(v)
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// calloutHTML renders a callout body as a blockquote, writing the label in
// front of the first paragraph the way Convert expects to find it.
func calloutHTML(label, body string) string {
	body = strings.TrimSpace(body)
	if label != "" {
		prefix := "<strong>" + label + ":</strong> "
		if strings.HasPrefix(body, "<p>") {
			body = "<p>" + prefix + strings.TrimPrefix(body, "<p>")
		} else {
			body = "<p>" + prefix + "</p>" + body
		}
	}
	return "<blockquote>" + body + "</blockquote>"
}

func codeBlockHTML(lang, code string) string {
	class := ""
	if lang != "" && lang != "none" {
		class = ` class="language-` + html.EscapeString(lang) + `"`
	}
	return "<pre><code" + class + ">" + html.EscapeString(code) + "</code></pre>"
}

// cdataText joins the CDATA sections of a plain text body.
func cdataText(body string) string {
	var sb strings.Builder
	for _, m := range cdataContent.FindAllStringSubmatch(body, -1) {
		sb.WriteString(m[1])
	}
	return sb.String()
}

func linkText(inner string) string {
	if m := linkBody.FindStringSubmatch(inner); m != nil {
		if cd := cdataContent.FindStringSubmatch(m[1]); cd != nil {
			return html.EscapeString(strings.TrimSpace(cd[1]))
		}
		return m[1]
	}
	return ""
}

func parseParams(s string) map[string]string {
	_, values := parseParamList(s)
	return values
}

// parseParamList returns parameter names in document order and their values.
func parseParamList(s string) ([]string, map[string]string) {
	var names []string
	values := make(map[string]string)
	for _, m := range macroParam.FindAllStringSubmatch(s, -1) {
		if _, dup := values[m[1]]; !dup {
			names = append(names, m[1])
		}
		values[m[1]] = html.UnescapeString(strings.TrimSpace(m[2]))
	}
	return names, values
}
