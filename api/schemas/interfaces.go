// File: api/schemas/interfaces.go
package schemas

import (
	"context"
	"time"
)

// PanelSession is one live, exclusively-owned browser session against
// the admin panel. Selectors are XPath expressions. Every method
// respects the passed context in addition to the session's own
// lifecycle; implementations must make Close idempotent.
type PanelSession interface {
	// ID returns the session's unique identifier.
	ID() string

	// Navigate loads the given absolute URL.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the element is present and visible, or
	// the timeout elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// WaitClickable blocks until the element is visible and enabled,
	// or the timeout elapses.
	WaitClickable(ctx context.Context, selector string, timeout time.Duration) error

	// Click clicks the first element matching the selector.
	Click(ctx context.Context, selector string) error

	// SendKeys types text into the element matching the selector.
	SendKeys(ctx context.Context, selector, text string) error

	// Clear empties the value of the input matching the selector.
	Clear(ctx context.Context, selector string) error

	// ScrollIntoView scrolls the element into the viewport.
	ScrollIntoView(ctx context.Context, selector string) error

	// TextContents returns the rendered text of every element matching
	// the selector, in document order. A selector matching nothing
	// yields an empty slice, not an error.
	TextContents(ctx context.Context, selector string) ([]string, error)

	// NodeCount reports how many elements currently match the selector.
	NodeCount(ctx context.Context, selector string) (int, error)

	// Screenshot captures the current viewport as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// PageSource returns the serialized markup of the current page.
	PageSource(ctx context.Context) (string, error)

	// Close tears the session down. Safe to call more than once.
	Close(ctx context.Context) error
}

// SessionFactory provisions a fresh PanelSession per request. The
// engine owns the returned session until it calls Close.
type SessionFactory interface {
	NewSession(ctx context.Context) (PanelSession, error)
}

// CredentialResolver maps a panel base URL to an administrator
// identity. Implementations return credentials.ErrNotFound (wrapped or
// bare) when no entry matches.
type CredentialResolver interface {
	Resolve(panelURL string) (AdminIdentity, error)
}

// ArtifactSink receives diagnostic artifacts captured on step failure.
// It is write-only from the engine's perspective; sink errors are
// logged by callers and never alter control flow.
type ArtifactSink interface {
	Capture(ctx context.Context, artifact DiagnosticArtifact) error
}

// TransactionJournal records finished runs for offline auditing. The
// engine tolerates a nil journal and journal write failures alike.
type TransactionJournal interface {
	Record(ctx context.Context, requestID string, req TransactionRequest, res TransactionResult) error
}
