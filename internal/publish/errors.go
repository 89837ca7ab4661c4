package publish

import "errors"

var (
	// ErrMissingFile is returned when the markdown file does not exist.
	ErrMissingFile = errors.New("markdown file not found")
	// ErrMissingTitle is returned when no title was given and the document
	// has neither front matter title nor a first line.
	ErrMissingTitle = errors.New("page title could not be determined")
	// ErrParentNotFound is returned when the requested ancestor page does not
	// exist in the target space.
	ErrParentNotFound = errors.New("parent page not found")
	// ErrLinkedPageNotFound is returned when a linked markdown document exists
	// locally but has not been published.
	ErrLinkedPageNotFound = errors.New("linked page not found")
)
