// File: internal/credentials/resolver_test.go
package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCredFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewResolver(t *testing.T) {
	t.Parallel()

	t.Run("loads entries and trims url keys", func(t *testing.T) {
		t.Parallel()
		path := writeCredFile(t, `[
			{"weburl": "  https://panel.example/admin  ", "username": "root", "password": "hunter2"},
			{"weburl": "https://other.example", "username": "admin", "password": "pw"}
		]`)

		r, err := NewResolver(path, zap.NewNop())
		require.NoError(t, err)

		id, err := r.Resolve("https://panel.example/admin")
		require.NoError(t, err)
		assert.Equal(t, "root", id.Username)
		assert.Equal(t, "hunter2", id.Password)
	})

	t.Run("skips entries with empty weburl", func(t *testing.T) {
		t.Parallel()
		path := writeCredFile(t, `[
			{"weburl": "", "username": "ghost", "password": "x"},
			{"weburl": "https://real.example", "username": "admin", "password": "pw"}
		]`)

		r, err := NewResolver(path, zap.NewNop())
		require.NoError(t, err)
		assert.Len(t, r.byURL, 1)
	})

	t.Run("missing file errors", func(t *testing.T) {
		t.Parallel()
		_, err := NewResolver(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("malformed json errors", func(t *testing.T) {
		t.Parallel()
		path := writeCredFile(t, `{"not": "an array"}`)
		_, err := NewResolver(path, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()
	path := writeCredFile(t, `[{"weburl": "https://panel.example/admin", "username": "root", "password": "pw"}]`)
	r, err := NewResolver(path, zap.NewNop())
	require.NoError(t, err)

	t.Run("trims lookup key", func(t *testing.T) {
		t.Parallel()
		_, err := r.Resolve(" https://panel.example/admin ")
		assert.NoError(t, err)
	})

	t.Run("unknown url yields ErrNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := r.Resolve("https://unknown.example")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "https://unknown.example")
	})
}
