package md

import "errors"

// Sentinel errors for conversion failures.
var (
	// ErrUnresolvedAnchor is returned when an in-page link targets a heading
	// that does not exist under the selected markdown source dialect.
	ErrUnresolvedAnchor = errors.New("unresolved local anchor")
	// ErrUnknownSource is returned for a markdown source dialect with no
	// anchor prefix rule.
	ErrUnknownSource = errors.New("unknown markdown source")
)
