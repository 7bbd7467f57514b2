package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"techrank/internal/bootstrap/config"
	"techrank/internal/bootstrap/database"
	"techrank/internal/bootstrap/logging"
	"techrank/internal/errs"
	cacheinfra "techrank/internal/infrastructure/cache"
	"techrank/internal/infrastructure/jobregistry"
	"techrank/internal/infrastructure/metrics"
	"techrank/internal/infrastructure/notify"
	"techrank/internal/infrastructure/persistence/gormstore/repository"
	"techrank/internal/infrastructure/persistence/gormstore/uow"
	"techrank/internal/ports"
	"techrank/internal/usecase/performance"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			repository.NewPerformanceRepository,
			fx.As(new(ports.PerformanceRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			uow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideCache),
	fx.Provide(jobregistry.NewDatabaseRegistry),
	fx.Provide(func(r *jobregistry.DatabaseRegistry) ports.JobRegistry { return r }),
	fx.Provide(providePublisher),
	fx.Provide(metrics.New),
	fx.Provide(func(m *metrics.Metrics) ports.Metrics { return m }),
	fx.Provide(provideServiceOptions),
	fx.Provide(performance.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithComponent(p.Ctx, "bootstrap.fx")
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB, m *metrics.Metrics, jobs *jobregistry.DatabaseRegistry) *App {
	return &App{
		Config:  cfg,
		DB:      db,
		Metrics: m,
		Jobs:    jobs,
	}
}

// provideCache picks the level cache backend. The database cache needs no
// extra infrastructure; redis shares the ladder across engine instances.
func provideCache(lc fx.Lifecycle, ctx context.Context, cfg config.Config, db *gorm.DB) (ports.Cache, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	if !strings.EqualFold(cfg.Cache.Driver, "redis") {
		logging.Info(logCtx, "level cache ready", slog.String("driver", "database"))
		return cacheinfra.NewDatabaseCache(db), nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Cache.Redis.Addr},
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if err := client.Ping(startCtx).Err(); err != nil {
				return errs.Wrap(err, "ping redis")
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	logging.Info(logCtx, "level cache ready", slog.String("driver", "redis"), slog.String("addr", cfg.Cache.Redis.Addr))
	return cacheinfra.NewRedisCache(client, cfg.App.Name), nil
}

func providePublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.NotificationPublisher, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	url := strings.TrimSpace(cfg.Notifications.NATSURL)
	if url == "" {
		logging.Info(logCtx, "notification publishing disabled, nats_url is empty")
		return notify.NoopPublisher{}, nil
	}

	publisher, err := notify.Connect(url, cfg.Notifications.SubjectPrefix)
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	logging.Info(logCtx, "notification publisher connected", slog.String("subject_prefix", cfg.Notifications.SubjectPrefix))
	return publisher, nil
}

func provideServiceOptions(cfg config.Config) (performance.Options, error) {
	policy, err := performance.LoadAwardPolicy(cfg.Points.PolicyFile)
	if err != nil {
		return performance.Options{}, err
	}
	return performance.Options{
		LevelTTL:        cfg.Cache.LevelTTL,
		RegistryTimeout: cfg.Ranking.RegistryTimeout,
		RetentionDays:   cfg.Notifications.RetentionDays,
		Policy:          policy,
	}, nil
}
