package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"techrank/internal/bootstrap/config"
	"techrank/internal/bootstrap/logging"
	"techrank/internal/errs"
	"techrank/internal/infrastructure/jobregistry"
	"techrank/internal/infrastructure/metrics"
	"techrank/internal/infrastructure/persistence/gormstore/model"
	"techrank/internal/infrastructure/persistence/schema"
)

// App is what commands receive once the fx graph is up.
type App struct {
	Config  config.Config
	DB      *gorm.DB
	Metrics *metrics.Metrics
	// Jobs is the local stand-in for the external job registry.
	Jobs *jobregistry.DatabaseRegistry
}

// InitSchema migrates the engine tables plus the local job registry table.
func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.app")
	logging.Info(logCtx, "start schema migration")

	models := append(model.All(), &schema.ServiceJob{})
	if err := a.DB.WithContext(ctx).AutoMigrate(models...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migration completed", slog.Int("tables", len(models)))
	return nil
}
