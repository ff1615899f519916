// File: internal/browser/session_test.go
package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineContext(t *testing.T) {
	t.Parallel()

	t.Run("cancels when secondary context is canceled", func(t *testing.T) {
		t.Parallel()
		parent := context.Background()
		secondary, cancelSecondary := context.WithCancel(context.Background())

		combined, cancel := CombineContext(parent, secondary)
		defer cancel()

		cancelSecondary()

		select {
		case <-combined.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("combined context was not canceled after secondary cancellation")
		}
	})

	t.Run("cancels when parent context is canceled", func(t *testing.T) {
		t.Parallel()
		parent, cancelParent := context.WithCancel(context.Background())
		combined, cancel := CombineContext(parent, context.Background())
		defer cancel()

		cancelParent()

		select {
		case <-combined.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("combined context was not canceled after parent cancellation")
		}
	})

	t.Run("explicit cancel releases the watcher goroutine", func(t *testing.T) {
		t.Parallel()
		combined, cancel := CombineContext(context.Background(), context.Background())
		cancel()
		require.Error(t, combined.Err())
	})
}

func TestJSONEncode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"plain"`, jsonEncode("plain"))
	// Quotes and backslashes must be escaped so XPath strings survive
	// injection into an Evaluate script.
	assert.Equal(t, `"//a[contains(text(), 'Client List')]"`, jsonEncode("//a[contains(text(), 'Client List')]"))
	assert.Equal(t, `"with \"quotes\""`, jsonEncode(`with "quotes"`))
}
