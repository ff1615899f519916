// File: cmd/bootstrap.go
package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
	"github.com/panelops/teller/internal/artifacts"
	"github.com/panelops/teller/internal/browser"
	"github.com/panelops/teller/internal/config"
	"github.com/panelops/teller/internal/credentials"
	"github.com/panelops/teller/internal/engine"
	"github.com/panelops/teller/internal/store"
)

// buildEngine assembles the full engine stack from configuration. The
// returned cleanup releases the browser allocator and, when journaling
// is enabled, the database pool.
func buildEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) (*engine.Engine, func(), error) {
	resolver, err := credentials.NewResolver(cfg.Credentials.File, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load credential store: %w", err)
	}

	sink, err := buildSink(cfg.Artifacts, logger)
	if err != nil {
		return nil, nil, err
	}

	manager := browser.NewManager(ctx, cfg.Browser, logger)
	cleanup := manager.Shutdown

	var journal schemas.TransactionJournal
	if cfg.Journal.Enabled {
		pool, err := pgxpool.New(ctx, cfg.Journal.URL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to open journal pool: %w", err)
		}

		st, err := store.New(ctx, pool, logger)
		if err != nil {
			pool.Close()
			cleanup()
			return nil, nil, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			cleanup()
			return nil, nil, err
		}
		journal = st

		base := cleanup
		cleanup = func() {
			base()
			pool.Close()
		}
	}

	eng, err := engine.New(resolver, manager, sink, journal, cfg.Browser, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}

func buildSink(cfg config.ArtifactsConfig, logger *zap.Logger) (schemas.ArtifactSink, error) {
	switch cfg.Mode {
	case "redis":
		sink, err := artifacts.NewRedisSink(cfg.RedisURL, cfg.RedisTTL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis artifact sink: %w", err)
		}
		return sink, nil
	default:
		return artifacts.NewFSSink(cfg.Dir, logger), nil
	}
}
