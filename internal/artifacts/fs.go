// File: internal/artifacts/fs.go
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
)

// FSSink writes diagnostic artifacts to a local directory: one PNG
// screenshot and one HTML dump per capture, named by the failure tag.
type FSSink struct {
	dir    string
	logger *zap.Logger
}

var _ schemas.ArtifactSink = (*FSSink)(nil)

// NewFSSink creates a filesystem sink rooted at dir. The directory is
// created lazily on first capture.
func NewFSSink(dir string, logger *zap.Logger) *FSSink {
	return &FSSink{dir: dir, logger: logger.Named("artifacts")}
}

// Capture persists the artifact pair. A partial write still stores
// whatever half succeeded; the first error is returned for logging.
func (s *FSSink) Capture(_ context.Context, artifact schemas.DiagnosticArtifact) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory %q: %w", s.dir, err)
	}

	base := fmt.Sprintf("%s_%d", sanitizeTag(artifact.Tag), artifact.CapturedAt.UnixMilli())
	var firstErr error

	if len(artifact.Screenshot) > 0 {
		path := filepath.Join(s.dir, base+".png")
		if err := os.WriteFile(path, artifact.Screenshot, 0o644); err != nil {
			firstErr = fmt.Errorf("failed to write screenshot %q: %w", path, err)
		}
	}
	if artifact.PageSource != "" {
		path := filepath.Join(s.dir, base+".html")
		if err := os.WriteFile(path, []byte(artifact.PageSource), 0o644); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to write page source %q: %w", path, err)
		}
	}

	if firstErr == nil {
		s.logger.Debug("Diagnostic artifact stored.", zap.String("tag", artifact.Tag), zap.String("base", base))
	}
	return firstErr
}

// sanitizeTag keeps tags filesystem-safe. Client usernames come from
// untrusted request input.
func sanitizeTag(tag string) string {
	if tag == "" {
		return "untagged"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, tag)
}
