package portal

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("element not found")

// Selector addresses DOM elements by CSS query or XPath.
type Selector struct {
	Query string
	XPath bool
}

func CSS(q string) Selector   { return Selector{Query: q} }
func XPath(q string) Selector { return Selector{Query: q, XPath: true} }

// Last addresses the last element matched by a selector.
const Last = -1

// Browser is the small set of DOM operations the page objects need. Every
// method waits up to the implementation's timeout for its elements.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	WaitVisible(ctx context.Context, sel Selector) error
	WaitGone(ctx context.Context, sel Selector) error
	WaitCount(ctx context.Context, sel Selector, n int) error
	Count(ctx context.Context, sel Selector) (int, error)
	Text(ctx context.Context, sel Selector) (string, error)
	// Click and Type act on the nth match (Last for the final one). When
	// child is non-empty the action targets the first child matching that
	// CSS query inside the nth match.
	Click(ctx context.Context, sel Selector, nth int, child string) error
	Type(ctx context.Context, sel Selector, nth int, child, text string) error
	Clear(ctx context.Context, sel Selector, nth int, child string) error
	Screenshot(ctx context.Context, name string) error
}
