// File: internal/artifacts/sink_test.go
package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
)

func testArtifact(tag string) schemas.DiagnosticArtifact {
	return schemas.DiagnosticArtifact{
		Tag:        tag,
		Screenshot: []byte{0x89, 'P', 'N', 'G'},
		PageSource: "<html><body>failure state</body></html>",
		CapturedAt: time.UnixMilli(1700000000000),
	}
}

func TestFSSinkCapture(t *testing.T) {
	t.Parallel()

	t.Run("writes screenshot and page source", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		sink := NewFSSink(dir, zap.NewNop())

		require.NoError(t, sink.Capture(context.Background(), testArtifact("timeout")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		png := filepath.Join(dir, "timeout_1700000000000.png")
		html := filepath.Join(dir, "timeout_1700000000000.html")
		pngData, err := os.ReadFile(png)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, pngData)
		htmlData, err := os.ReadFile(html)
		require.NoError(t, err)
		assert.Contains(t, string(htmlData), "failure state")
	})

	t.Run("creates the directory lazily", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "nested", "errors")
		sink := NewFSSink(dir, zap.NewNop())
		require.NoError(t, sink.Capture(context.Background(), testArtifact("bob")))
		assert.DirExists(t, dir)
	})

	t.Run("skips empty halves", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		sink := NewFSSink(dir, zap.NewNop())

		artifact := testArtifact("alice")
		artifact.Screenshot = nil
		require.NoError(t, sink.Capture(context.Background(), artifact))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestSanitizeTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"alice99", "alice99"},
		{"bob_deposit", "bob_deposit"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"user name", "user_name"},
		{"", "untagged"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, sanitizeTag(tc.in), "input %q", tc.in)
	}
}
