// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	preferencestore "github.com/dalemusser/ovaview/internal/app/store/preferences"
	savedvideostore "github.com/dalemusser/ovaview/internal/app/store/savedvideos"
	savedviewstore "github.com/dalemusser/ovaview/internal/app/store/savedviews"
	"github.com/dalemusser/ovaview/internal/app/system/tasks"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// It starts the background task runner. The folder refresh job runs
// immediately, so the first requests may see the tree in its loading state.
// A backend that is down at boot does not abort startup; the tree stays on
// an empty root until a refresh succeeds.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	taskRunner.Register(tasks.FolderTreeRefreshJob(deps.Folders, timeouts.Refresh(), appCfg.FolderRefreshInterval))

	if appCfg.ViewerDataRetention > 0 {
		prefs := preferencestore.New(deps.MongoDatabase)
		taskRunner.Register(tasks.ViewerDataPruneJob(prefs, viewerPurger(deps.MongoDatabase, logger), appCfg.ViewerDataRetention, logger))
	}

	taskRunner.Start()
	logger.Info("background jobs started", zap.Strings("jobs", taskRunner.Jobs()))
}

// viewerPurger deletes a viewer's saved videos, saved views, and preferences
// in one transaction where the deployment allows it. Preferences go last:
// they are what marks a viewer as stale, so without a transaction a partial
// failure is retried on the next run.
func viewerPurger(db *mongo.Database, logger *zap.Logger) tasks.ViewerPurger {
	videos := savedvideostore.New(db)
	views := savedviewstore.New(db)
	prefs := preferencestore.New(db)

	return func(ctx context.Context, viewerID string) error {
		return txn.Run(ctx, db, logger, func(ctx context.Context) error {
			if _, err := videos.DeleteAllForViewer(ctx, viewerID); err != nil {
				return fmt.Errorf("saved videos: %w", err)
			}
			if _, err := views.DeleteAllForViewer(ctx, viewerID); err != nil {
				return fmt.Errorf("saved views: %w", err)
			}
			if err := prefs.Delete(ctx, viewerID); err != nil {
				return fmt.Errorf("preferences: %w", err)
			}
			return nil
		})
	}
}
