package performance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"techrank/internal/bootstrap/logging"
	"techrank/internal/errs"
	"techrank/internal/ports"
)

const (
	defaultLevelTTL        = 30 * time.Second
	defaultRegistryTimeout = 3 * time.Second
	defaultRetentionDays   = 30
)

// Options carries the tunables of the engine; zero values fall back to defaults.
type Options struct {
	LevelTTL        time.Duration
	RegistryTimeout time.Duration
	RetentionDays   int
	Policy          AwardPolicy
	Now             func() time.Time
}

type Service struct {
	repo      ports.PerformanceRepository
	uow       ports.UnitOfWork
	cache     ports.Cache
	registry  ports.JobRegistry
	publisher ports.NotificationPublisher
	metrics   ports.Metrics
	validate  *inputValidator

	levelTTL        time.Duration
	registryTimeout time.Duration
	retentionDays   int
	now             func() time.Time

	policyMu sync.RWMutex
	policy   AwardPolicy
}

// NewService wires the engine. cache, publisher and metrics may be nil.
func NewService(
	repo ports.PerformanceRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	registry ports.JobRegistry,
	publisher ports.NotificationPublisher,
	metrics ports.Metrics,
	opts Options,
) *Service {
	s := &Service{
		repo:            repo,
		uow:             uow,
		cache:           cache,
		registry:        registry,
		publisher:       publisher,
		metrics:         metrics,
		validate:        newInputValidator(),
		levelTTL:        opts.LevelTTL,
		registryTimeout: opts.RegistryTimeout,
		retentionDays:   opts.RetentionDays,
		policy:          opts.Policy,
		now:             opts.Now,
	}
	if s.levelTTL <= 0 {
		s.levelTTL = defaultLevelTTL
	}
	if s.registryTimeout <= 0 {
		s.registryTimeout = defaultRegistryTimeout
	}
	if s.retentionDays <= 0 {
		s.retentionDays = defaultRetentionDays
	}
	if s.policy.isZero() {
		s.policy = DefaultAwardPolicy()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	return s
}

func (s *Service) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("performance repository is required")
	}
	if s.uow == nil {
		return errors.New("performance unit of work is required")
	}
	return nil
}

func (s *Service) nowUTC() time.Time {
	return s.now().UTC()
}

func (s *Service) logCtx(ctx context.Context, companyID string, userID string) context.Context {
	return logging.WithScope(logging.WithComponent(ctx, "usecase.performance"), companyID, userID)
}

func newID() string {
	return uuid.NewString()
}

func requireText(field string, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errs.Validationf("%s is required", field)
	}
	return trimmed, nil
}

func optionalText(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func logFailure(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.Any("err", errs.Loggable(err)))
	logging.Warn(ctx, msg, attrs...)
}

type noopMetrics struct{}

func (noopMetrics) PointsAwarded(string)                         {}
func (noopMetrics) RankingRequest(string, string, time.Duration) {}
func (noopMetrics) Notification(string, string)                  {}
func (noopMetrics) LevelCache(string)                            {}
