package md

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Callout macro fragments. Marker and blockquote rewrites splice these around
// the existing paragraph content.
const (
	infoOpen    = `<p><ac:structured-macro ac:name="info"><ac:rich-text-body><p>`
	noteOpen    = `<p><ac:structured-macro ac:name="note"><ac:rich-text-body><p>`
	warningOpen = `<p><ac:structured-macro ac:name="warning"><ac:rich-text-body><p>`
	calloutEnd  = `</p></ac:rich-text-body></ac:structured-macro></p>`
)

// calloutMarkers maps inline paragraph markers to callout tags.
var calloutMarkers = []struct {
	open, close string
	tag         string
}{
	{"<p>~?", "?~</p>", infoOpen},
	{"<p>~!", "!~</p>", noteOpen},
	{"<p>~%", "%~</p>", warningOpen},
}

// calloutRule classifies a blockquote and strips its leading label.
type calloutRule struct {
	name    string
	open    string
	matches *regexp.Regexp
	strip   []*regexp.Regexp
}

// calloutRules are tried in order; a blockquote matching none becomes an info
// callout with its content left as is.
var calloutRules = []calloutRule{
	newCalloutRule("note", noteOpen, "Note"),
	newCalloutRule("warning", warningOpen, "Warning"),
}

func newCalloutRule(name, open, label string) calloutRule {
	return calloutRule{
		name:    name,
		open:    open,
		matches: regexp.MustCompile(`(?i)^(?:<[^>]+>)+\s*` + label),
		strip:   labelForms(label),
	}
}

// labelForms returns the surface forms a callout label may take, most
// specific first. Wrapped forms must precede plain ones so that a wrapped
// label never leaves empty emphasis tags behind.
func labelForms(label string) []*regexp.Regexp {
	const wrapOpen, wrapClose = `<(?:em|strong)>`, `</(?:em|strong)>`
	forms := []string{
		wrapOpen + label + `:\s` + wrapClose,
		wrapOpen + label + `\s:\s` + wrapClose,
		wrapOpen + label + `:` + wrapClose + `\s`,
		wrapOpen + label + `\s:` + wrapClose + `\s`,
		wrapOpen + label + wrapClose + `:\s`,
		wrapOpen + label + `\s` + wrapClose + `:\s`,
		label + `:\s`,
		label + `\s:\s`,
	}

	out := make([]*regexp.Regexp, len(forms))
	for i, f := range forms {
		out[i] = regexp.MustCompile(`(?i)^((?:<[^>]+>|\s)*)` + f)
	}
	return out
}

// stripLabel removes the label leading s. Only opening markup may precede
// it; a label later in the text is content.
func (r calloutRule) stripLabel(s string) string {
	for _, re := range r.strip {
		if loc := re.FindStringSubmatchIndex(s); loc != nil {
			return s[:loc[3]] + s[loc[1]:]
		}
	}
	return s
}

var (
	blockquote = regexp.MustCompile(`(?s)<blockquote>(.*?)</blockquote>`)
	anyTag     = regexp.MustCompile(`<.*?>`)
	doctoc     = regexp.MustCompile(`(?s)<!-- START doctoc.*?END doctoc.*?-->`)
)

// ConvertCallouts turns inline markers and blockquotes into info, note and
// warning macros, and replaces a doctoc comment block with a TOC macro.
//
// Each blockquote is rewritten where it stands, so identical blockquotes are
// converted independently.
func ConvertCallouts(html string) string {
	for _, m := range calloutMarkers {
		html = strings.ReplaceAll(html, m.open, m.tag)
		html = strings.ReplaceAll(html, m.close, calloutEnd)
	}

	html = blockquote.ReplaceAllStringFunc(html, func(match string) string {
		inner := blockquote.FindStringSubmatch(match)[1]
		return convertBlockquote(inner)
	})

	return convertDoctoc(html)
}

func convertBlockquote(inner string) string {
	content := strings.TrimSpace(inner)
	open := infoOpen

	for _, rule := range calloutRules {
		if rule.matches.MatchString(content) {
			content = capitalizeAfterFirstTag(rule.stripLabel(content))
			open = rule.open
			break
		}
	}

	content = strings.ReplaceAll(content, "<p>", open)
	content = strings.ReplaceAll(content, "</p>", calloutEnd)
	return strings.TrimSpace(content)
}

// capitalizeAfterFirstTag upper-cases the first character following the
// first HTML tag in s.
func capitalizeAfterFirstTag(s string) string {
	loc := anyTag.FindStringIndex(s)
	if loc == nil || loc[1] >= len(s) {
		return s
	}
	r, size := utf8.DecodeRuneInString(s[loc[1]:])
	upper := unicode.ToUpper(r)
	if upper == r {
		return s
	}
	return s[:loc[1]] + string(upper) + s[loc[1]+size:]
}

func convertDoctoc(html string) string {
	toc := "<p>" + RenderMacroToXML(&MacroNode{
		Name: "toc",
		Parameters: []Parameter{
			{"printable", "true"},
			{"style", "disc"},
			{"maxLevel", "7"},
			{"minLevel", "1"},
			{"type", "list"},
			{"outline", "clear"},
			{"include", ".*"},
		},
	}) + "</p>"
	return doctoc.ReplaceAllLiteralString(html, toc)
}
