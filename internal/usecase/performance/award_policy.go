package performance

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"techrank/internal/bootstrap/logging"
	"techrank/internal/errs"
)

// AwardPolicy maps job registry events to base ledger points.
type AwardPolicy struct {
	Points      policyPoints      `toml:"points"`
	RatingBonus policyRatingBonus `toml:"rating_bonus"`
	SpeedBonus  policySpeedBonus  `toml:"speed_bonus"`
}

type policyPoints struct {
	ServiceCompleted int64 `toml:"service_completed"`
	ServiceDelivered int64 `toml:"service_delivered"`
}

type policyRatingBonus struct {
	Points    int64   `toml:"points"`
	MinRating float64 `toml:"min_rating"`
}

type policySpeedBonus struct {
	Points   int64   `toml:"points"`
	MaxHours float64 `toml:"max_hours"`
}

func DefaultAwardPolicy() AwardPolicy {
	return AwardPolicy{
		Points: policyPoints{
			ServiceCompleted: 100,
			ServiceDelivered: 50,
		},
		RatingBonus: policyRatingBonus{Points: 25, MinRating: 4.5},
		SpeedBonus:  policySpeedBonus{Points: 20, MaxHours: 24},
	}
}

func (p AwardPolicy) isZero() bool {
	return p == AwardPolicy{}
}

// LoadAwardPolicy reads a TOML policy. Keys missing from the file keep their
// default; an empty path yields the default policy.
func LoadAwardPolicy(path string) (AwardPolicy, error) {
	policy := DefaultAwardPolicy()
	path = strings.TrimSpace(path)
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return AwardPolicy{}, errs.Wrapf(err, "read award policy %s", path)
	}
	if err := toml.Unmarshal(raw, &policy); err != nil {
		return AwardPolicy{}, errs.Wrapf(err, "parse award policy %s", path)
	}
	if err := policy.Validate(); err != nil {
		return AwardPolicy{}, err
	}
	return policy, nil
}

// Validate rejects negative values. A bonus with zero points is disabled.
func (p AwardPolicy) Validate() error {
	if p.Points.ServiceCompleted <= 0 {
		return errs.Validationf("points.service_completed must be > 0")
	}
	if p.Points.ServiceDelivered <= 0 {
		return errs.Validationf("points.service_delivered must be > 0")
	}
	if p.RatingBonus.Points < 0 {
		return errs.Validationf("rating_bonus.points must be >= 0")
	}
	if p.RatingBonus.MinRating < 0 || p.RatingBonus.MinRating > 5 {
		return errs.Validationf("rating_bonus.min_rating must be within [0,5]")
	}
	if p.SpeedBonus.Points < 0 {
		return errs.Validationf("speed_bonus.points must be >= 0")
	}
	if p.SpeedBonus.MaxHours < 0 {
		return errs.Validationf("speed_bonus.max_hours must be >= 0")
	}
	return nil
}

func (p AwardPolicy) ratingBonusFor(rating *float64) int64 {
	if rating == nil || p.RatingBonus.Points == 0 || *rating < p.RatingBonus.MinRating {
		return 0
	}
	return p.RatingBonus.Points
}

func (p AwardPolicy) speedBonusFor(hours *float64) int64 {
	if hours == nil || p.SpeedBonus.Points == 0 || *hours > p.SpeedBonus.MaxHours {
		return 0
	}
	return p.SpeedBonus.Points
}

func (s *Service) awardPolicy() AwardPolicy {
	s.policyMu.RLock()
	defer s.policyMu.RUnlock()
	return s.policy
}

// ReloadAwardPolicy swaps in the policy at path. On any error the current
// policy stays in effect.
func (s *Service) ReloadAwardPolicy(ctx context.Context, path string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	policy, err := LoadAwardPolicy(path)
	if err != nil {
		logging.Warn(logging.WithComponent(ctx, "usecase.performance"), "award policy rejected, keeping current",
			slog.String("path", path), slog.Any("err", errs.Loggable(err)))
		return err
	}

	s.policyMu.Lock()
	s.policy = policy
	s.policyMu.Unlock()

	logging.Info(logging.WithComponent(ctx, "usecase.performance"), "award policy reloaded",
		slog.String("path", path),
		slog.Int64("service_completed", policy.Points.ServiceCompleted),
		slog.Int64("service_delivered", policy.Points.ServiceDelivered))
	return nil
}
