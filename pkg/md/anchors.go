package md

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Source is the markdown dialect a document was written for. It decides how
// in-page anchors are spelled.
type Source string

const (
	SourceDefault   Source = "default"
	SourceBitbucket Source = "bitbucket"
)

var anchorPrefixes = map[Source]string{
	SourceDefault:   "#",
	SourceBitbucket: "#markdown-header-",
}

// anchorPostfix disambiguates repeated headings.
const anchorPostfix = "_%d"

// KnownSource reports whether anchors can be resolved for src.
func KnownSource(src Source) bool {
	_, ok := anchorPrefixes[src]
	return ok
}

var (
	htmlTag    = regexp.MustCompile(`<[^>]+>`)
	htmlEntity = regexp.MustCompile(`&[a-z]+;`)
	nonSlug    = regexp.MustCompile(`[^a-zA-Z0-9-]`)
)

// Slug converts heading text to an anchor slug.
func Slug(s string, lowercase bool) string {
	if lowercase {
		s = strings.ToLower(s)
	}
	s = htmlTag.ReplaceAllString(s, "")
	s = htmlEntity.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	return nonSlug.ReplaceAllString(s, "")
}

// HeaderMap maps an in-page anchor as written in markdown to the anchor
// Confluence generates for the same heading.
type HeaderMap map[string]string

var (
	heading       = regexp.MustCompile(`(?s)<h\d+>(.*?)</h\d+>`)
	tagsAndSpaces = regexp.MustCompile(`(<.+?>|[ ])`)
	localLink     = regexp.MustCompile(`<a href="(#[^"]+)">(.+?)</a>`)
	spacedTag     = regexp.MustCompile(`( *<.+?> *)`)
)

const legacyAnchorFmt = `<ac:link ac:anchor="%s"><ac:plain-text-link-body><![CDATA[%s]]></ac:plain-text-link-body></ac:link>`

// BuildHeaderMap scans the headings of html. Keys are the dialect prefix
// plus the lower-cased slug; values follow the target markup version.
// Repeated headings get an alternate key with a "_N" suffix and a value with
// a ".N" suffix, counting from 1 per key.
func BuildHeaderMap(html string, src Source, version int) (HeaderMap, error) {
	prefix, ok := anchorPrefixes[src]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, src)
	}

	headers := make(HeaderMap)
	counts := make(map[string]int)

	for _, m := range heading.FindAllStringSubmatch(cdataSection.ReplaceAllString(html, ""), -1) {
		text := m[1]
		key := prefix + Slug(text, true)

		var value string
		if version == 1 {
			value = tagsAndSpaces.ReplaceAllString(text, "")
		} else {
			value = Slug(text, false)
		}

		if n, seen := counts[key]; seen {
			headers[key+fmt.Sprintf(anchorPostfix, n)] = fmt.Sprintf("%s.%d", value, n)
			counts[key] = n + 1
			continue
		}
		headers[key] = value
		counts[key] = 1
	}

	return headers, nil
}

// AnchorOptions configures ResolveLocalAnchors.
type AnchorOptions struct {
	Source  Source
	Version int
	// PageURL is the absolute URL of the published page, used for version 2
	// links.
	PageURL string
}

// PageURL builds the canonical URL of a page from its space and title.
func PageURL(baseURL, spaceKey, pageID, title string) string {
	return fmt.Sprintf("%s/spaces/%s/pages/%s/%s",
		strings.TrimSuffix(baseURL, "/"), spaceKey, pageID, strings.Join(strings.Fields(title), "+"))
}

// ResolveLocalAnchors rewrites in-page links to headings. Version 1 emits
// ac:link anchors, version 2 absolute links to the page. A link that matches
// no heading fails with ErrUnresolvedAnchor.
func ResolveLocalAnchors(html string, opts AnchorOptions) (string, error) {
	headers, err := BuildHeaderMap(html, opts.Source, opts.Version)
	if err != nil {
		return "", err
	}
	if len(headers) == 0 {
		return html, nil
	}

	return outsideCDATA(html, func(s string) (string, error) {
		var resolveErr error
		out := localLink.ReplaceAllStringFunc(s, func(match string) string {
			if resolveErr != nil {
				return match
			}
			m := localLink.FindStringSubmatch(match)
			ref, alt := m[1], m[2]

			anchor, ok := headers[ref]
			if !ok {
				resolveErr = fmt.Errorf("%w: %s (markdown source %q)", ErrUnresolvedAnchor, ref, opts.Source)
				return match
			}

			if opts.Version == 1 {
				text := strings.TrimSpace(spacedTag.ReplaceAllString(alt, " "))
				return fmt.Sprintf(legacyAnchorFmt, anchor, text)
			}
			return fmt.Sprintf(`<a href="%s#%s" title="%s">%s</a>`, opts.PageURL, anchor, titleAttr(alt), alt)
		})
		return out, resolveErr
	})
}

// titleAttr renders link body markup as plain text safe for a quoted
// attribute value.
func titleAttr(body string) string {
	return escapeXML(html.UnescapeString(htmlTag.ReplaceAllString(body, "")))
}
