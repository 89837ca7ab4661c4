package md

// Options selects the optional passes of Convert.
type Options struct {
	// StripTitle drops the first rendered line, used when the page title
	// came from the document's first line.
	StripTitle bool
	// Details are rendered as a details macro at the top of the page.
	Details     []Detail
	HideDetails bool
	// RemoveEmojis strips emoji for targets whose database cannot store them.
	RemoveEmojis bool
	// AddContents prepends a contents macro.
	AddContents bool
}

// Pass is a single HTML rewrite.
type Pass func(string) string

// Pipeline returns the rewrite passes selected by opts in the order they
// must run.
func Pipeline(opts Options) []Pass {
	var passes []Pass
	if opts.StripTitle {
		passes = append(passes, StripFirstLine)
	}
	if len(opts.Details) > 0 {
		details, hidden := opts.Details, opts.HideDetails
		passes = append(passes, func(html string) string {
			return PrependDetails(html, details, hidden)
		})
	}
	passes = append(passes,
		ReplaceTOC,
		ConvertCallouts,
		ConvertComments,
		ConvertCodeBlocks,
		ConvertIframes,
	)
	if opts.RemoveEmojis {
		passes = append(passes, RemoveEmojis)
	}
	if opts.AddContents {
		passes = append(passes, AddContents)
	}
	return append(passes, ConvertFootnotes)
}

// Convert rewrites rendered HTML into storage format.
func Convert(html string, opts Options) string {
	for _, pass := range Pipeline(opts) {
		html = pass(html)
	}
	return html
}

// ToConfluenceStorage renders markdown and converts it with opts.
func ToConfluenceStorage(markdown []byte, opts Options) (string, error) {
	html, err := Render(markdown)
	if err != nil {
		return "", err
	}
	return Convert(html, opts), nil
}
