// Package app assembles the services shared by the gaiachat binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gaiachat/internal/config"
	"github.com/kailas-cloud/gaiachat/internal/db"
	dbRedis "github.com/kailas-cloud/gaiachat/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/gaiachat/internal/db/sqlite"
	"github.com/kailas-cloud/gaiachat/internal/domain/adql"
	"github.com/kailas-cloud/gaiachat/internal/domain/kinematics"
	"github.com/kailas-cloud/gaiachat/internal/domain/population"
	"github.com/kailas-cloud/gaiachat/internal/metrics"
	"github.com/kailas-cloud/gaiachat/internal/transport/tap"
	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
)

// NewArchive creates the TAP client for the configured archive.
func NewArchive(cfg *config.Config, logger *zap.Logger) *tap.Client {
	return tap.New(&tap.Config{
		BaseURL: cfg.Archive.TAPURL,
		Timeout: time.Duration(cfg.Archive.TimeoutSec) * time.Second,
		Logger:  logger,
	})
}

// NewCatalog wires the catalog service to archive with the default frame and populations.
func NewCatalog(cfg *config.Config, archive catalog.Archive, logger *zap.Logger) *catalog.Service {
	transformer := kinematics.NewTransformer(kinematics.DefaultFrame(), metrics.KinematicsRowsTotal, logger)
	return catalog.New(archive, transformer, population.DefaultRegistry(), catalog.Config{
		Table: cfg.Archive.Table,
		Limits: adql.Limits{
			Default: cfg.Query.DefaultLimit,
			Max:     cfg.Query.MaxLimit,
		},
	}, metrics.SelectionKeptRowsTotal)
}

// OpenStore connects the session store for the configured driver and waits
// until it answers. The sqlite store also gets a janitor goroutine that purges
// expired sessions until ctx is done.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Database.Driver {
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
	case config.DriverSQLite:
		var s *dbSQLite.Store
		s, err = dbSQLite.Open(cfg.Database.SQLitePath)
		if err == nil {
			store = s
			go purgeLoop(ctx, s, time.Duration(cfg.Session.PurgeIntervalSec)*time.Second, logger)
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

func purgeLoop(ctx context.Context, p purger, every time.Duration, logger *zap.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("Session purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("Purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}
