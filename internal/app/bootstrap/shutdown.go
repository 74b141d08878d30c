// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown runs once the HTTP server has drained. ctx carries the shutdown
// deadline; both steps are attempted even if the first fails.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var errs []error

	if taskRunner != nil {
		if err := taskRunner.Stop(ctx); err != nil {
			logger.Warn("maintenance jobs still running at shutdown", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop jobs: %w", err))
		}
	}

	if deps.MongoClient != nil {
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("mongo disconnect failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("disconnect mongo: %w", err))
		}
	}

	logger.Info("ovaview shut down", zap.Bool("clean", len(errs) == 0))
	return errors.Join(errs...)
}
