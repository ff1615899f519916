// File: internal/artifacts/redis.go
package artifacts

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
)

// RedisSink stores diagnostic artifacts as expiring Redis values, for
// deployments where bot workers have no durable local disk. Keys:
//
//	artifacts:<tag>:<unix_ms>:screenshot  (PNG bytes)
//	artifacts:<tag>:<unix_ms>:source      (HTML text)
type RedisSink struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

var _ schemas.ArtifactSink = (*RedisSink)(nil)

// NewRedisSink connects a sink to the Redis instance described by the
// URL (redis://host:port/db).
func NewRedisSink(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisSink, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url %q: %w", redisURL, err)
	}
	return newRedisSink(redis.NewClient(opt), ttl, logger), nil
}

func newRedisSink(rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *RedisSink {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSink{rdb: rdb, ttl: ttl, logger: logger.Named("artifacts_redis")}
}

// Capture writes both halves of the artifact; the first error wins but
// does not stop the second write.
func (s *RedisSink) Capture(ctx context.Context, artifact schemas.DiagnosticArtifact) error {
	prefix := fmt.Sprintf("artifacts:%s:%d", sanitizeTag(artifact.Tag), artifact.CapturedAt.UnixMilli())
	var firstErr error

	if len(artifact.Screenshot) > 0 {
		if err := s.rdb.Set(ctx, prefix+":screenshot", artifact.Screenshot, s.ttl).Err(); err != nil {
			firstErr = fmt.Errorf("failed to store screenshot under %s: %w", prefix, err)
		}
	}
	if artifact.PageSource != "" {
		if err := s.rdb.Set(ctx, prefix+":source", artifact.PageSource, s.ttl).Err(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to store page source under %s: %w", prefix, err)
		}
	}

	if firstErr == nil {
		s.logger.Debug("Diagnostic artifact stored in Redis.", zap.String("key_prefix", prefix))
	}
	return firstErr
}
