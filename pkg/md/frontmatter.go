package md

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
)

// FrontMatter holds the optional metadata header of a markdown document.
type FrontMatter struct {
	Title      string            `yaml:"title"`
	Labels     []string          `yaml:"labels"`
	Properties map[string]string `yaml:"properties"`
}

// PropertyKeys returns the property keys in sorted order.
func (f FrontMatter) PropertyKeys() []string {
	keys := make([]string, 0, len(f.Properties))
	for k := range f.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SplitFrontMatter separates a leading front matter block from the markdown
// body. Documents without front matter are returned unchanged with an empty
// FrontMatter.
func SplitFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse front matter: %w", err)
	}

	return meta, body, nil
}

// FirstLineTitle returns the document's first line with any heading markers
// removed.
func FirstLineTitle(body []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(scanner.Text(), "#"))
}

// DocumentTitle returns the front matter title when present, else the
// first line of the body.
func DocumentTitle(source []byte) (string, error) {
	meta, body, err := SplitFrontMatter(source)
	if err != nil {
		return "", err
	}
	if meta.Title != "" {
		return meta.Title, nil
	}
	return FirstLineTitle(body), nil
}
