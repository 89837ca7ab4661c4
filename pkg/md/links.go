package md

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// PageMapping ties a link prefix used in markdown to the local directory that
// holds the linked documents.
type PageMapping struct {
	BaseURL string
	Dir     string
}

// ParsePageMapping parses a "base=dir" pair.
func ParsePageMapping(s string) (PageMapping, error) {
	base, dir, ok := strings.Cut(s, "=")
	if !ok || base == "" || dir == "" {
		return PageMapping{}, fmt.Errorf("invalid page mapping %q: expected base=dir", s)
	}
	return PageMapping{BaseURL: base, Dir: dir}, nil
}

// PageResolver returns the published URL of the document at path. ok is
// false when the link should be left unchanged.
type PageResolver func(ctx context.Context, path string) (link string, ok bool, err error)

var mdLink = regexp.MustCompile(`<a href="([^"]+?\.md)">(.+?)</a>`)

// ResolvePageLinks rewrites links to other markdown documents into links to
// their published pages. The first mapping whose base URL prefixes the href
// decides the local path handed to resolve.
func ResolvePageLinks(ctx context.Context, html string, mappings []PageMapping, resolve PageResolver) (string, error) {
	if len(mappings) == 0 {
		return html, nil
	}

	return outsideCDATA(html, func(s string) (string, error) {
		var resolveErr error
		out := mdLink.ReplaceAllStringFunc(s, func(match string) string {
			if resolveErr != nil {
				return match
			}
			m := mdLink.FindStringSubmatch(match)
			ref, alt := m[1], m[2]

			for _, mapping := range mappings {
				if !strings.HasPrefix(ref, mapping.BaseURL) {
					continue
				}

				rest := ref[len(mapping.BaseURL):]
				if unescaped, err := url.PathUnescape(rest); err == nil {
					rest = unescaped
				}

				link, ok, err := resolve(ctx, filepath.Join(mapping.Dir, rest))
				if err != nil {
					resolveErr = fmt.Errorf("resolve link %s: %w", ref, err)
					return match
				}
				if !ok {
					return match
				}
				return fmt.Sprintf(`<a href="%s" title="%s">%s</a>`, link, titleAttr(alt), alt)
			}
			return match
		})
		return out, resolveErr
	})
}
