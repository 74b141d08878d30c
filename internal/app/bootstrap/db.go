// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/ovaview/internal/app/system/foldertree"
	"github.com/dalemusser/ovaview/internal/app/system/indexes"
	"github.com/dalemusser/ovaview/internal/app/system/ovaclient"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ConnectDB opens the viewer-data database and builds the OVA client that
// every later hook shares, so the backend rate limit is applied once per
// process.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	pool := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		pool.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		pool.MinPoolSize = appCfg.MongoMinPoolSize
	}
	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, pool)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect viewer store: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("viewer store connected",
		zap.String("database", db.Name()),
		zap.Uint64("pool_max", pool.MaxPoolSize),
		zap.Uint64("pool_min", pool.MinPoolSize),
	)

	ova, err := NewOVAClient(appCfg, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, err
	}
	logger.Info("configured OVA backend client",
		zap.String("base_url", ova.BaseURL()),
		zap.Duration("timeout", appCfg.OVATimeout),
		zap.Float64("rate_limit", appCfg.OVARateLimit),
	)

	coll := NewCollator(appCfg)

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		OVA:           ova,
		Folders:       foldertree.NewFetching(ova, coll, logger),
		Collator:      coll,
	}, nil
}

// NewOVAClient builds the backend client from configuration. Both shells use
// it.
func NewOVAClient(appCfg AppConfig, logger *zap.Logger) (*ovaclient.Client, error) {
	ova, err := ovaclient.New(ovaclient.Config{
		BaseURL:    appCfg.OVABaseURL,
		Token:      appCfg.OVAAPIToken,
		Timeout:    appCfg.OVATimeout,
		RatePerSec: appCfg.OVARateLimit,
		Burst:      appCfg.OVARateBurst,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("ova client: %w", err)
	}
	return ova, nil
}

// EnsureSchema creates the viewer collections with their JSON-schema
// validators, then their indexes. ctx is bounded by coreCfg.IndexBootTimeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	steps := []struct {
		name string
		run  func(context.Context, *mongo.Database) error
	}{
		{"validators", validators.EnsureAll},
		{"indexes", indexes.EnsureAll},
	}
	for _, step := range steps {
		if err := step.run(ctx, deps.MongoDatabase); err != nil {
			logger.Error("schema step failed", zap.String("step", step.name), zap.Error(err))
			return fmt.Errorf("ensure %s: %w", step.name, err)
		}
	}
	logger.Info("viewer schema ready")
	return nil
}
