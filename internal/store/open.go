package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/config"
	"github.com/fishblog/fishblog/internal/db"
)

// Open builds the backend selected by cfg.Store.Driver. The returned
// cleanup closes whatever connection the backend holds.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, func(), error) {
	switch cfg.Store.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Paths.Database), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
		database, err := db.Open(cfg.Paths.Database, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("store opened", zap.String("driver", "sqlite"), zap.String("path", cfg.Paths.Database))
		return NewSQLite(database), func() { _ = database.Close() }, nil

	case "redis":
		r, err := NewRedis(ctx, cfg.Store.RedisURL, cfg.Store.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		log.Info("store opened", zap.String("driver", "redis"), zap.String("prefix", cfg.Store.RedisPrefix))
		return r, func() { _ = r.Close() }, nil

	case "postgres":
		p, err := NewPostgres(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info("store opened", zap.String("driver", "postgres"))
		return p, func() { _ = p.Close() }, nil

	case "memory":
		log.Warn("store opened in memory; nothing will be kept after exit")
		return NewMemory(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
