// Package browser drives a real browser session for portals that only
// render through javascript. Scrapers depend on the Driver interface
// so their flow logic stays testable without a browser.
package browser

import (
	"context"
	"time"
)

// Driver is one interactive browser session. Selectors are xpath
// expressions. Implementations are not safe for concurrent use; run
// one flow per session.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until the selector matches a visible node
	// or the timeout passes.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Click(ctx context.Context, selector string) error
	// SendKeys clears the matched input and types value into it.
	SendKeys(ctx context.Context, selector, value string) error
	// Attribute returns the named attribute of the first matched
	// node. ok is false when the node lacks the attribute.
	Attribute(ctx context.Context, selector, name string) (value string, ok bool, err error)
	PageSource(ctx context.Context) (string, error)
	Back(ctx context.Context) error
	Close() error
}
