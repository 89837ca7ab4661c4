package md

import (
	"regexp"
	"strings"
)

var cdataSection = regexp.MustCompile(`(?s)<!\[CDATA\[.*?\]\]>`)

// outsideCDATA applies fn to every part of html that is not inside a CDATA
// section and reassembles the result. CDATA sections are copied verbatim.
func outsideCDATA(html string, fn func(string) (string, error)) (string, error) {
	locs := cdataSection.FindAllStringIndex(html, -1)
	if len(locs) == 0 {
		return fn(html)
	}

	var sb strings.Builder
	last := 0
	for _, loc := range locs {
		out, err := fn(html[last:loc[0]])
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
		sb.WriteString(html[loc[0]:loc[1]])
		last = loc[1]
	}

	out, err := fn(html[last:])
	if err != nil {
		return "", err
	}
	sb.WriteString(out)

	return sb.String(), nil
}

// replaceOutsideCDATA is outsideCDATA for rewrites that cannot fail.
func replaceOutsideCDATA(html string, fn func(string) string) string {
	out, _ := outsideCDATA(html, func(s string) (string, error) {
		return fn(s), nil
	})
	return out
}
