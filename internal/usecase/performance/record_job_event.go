package performance

import (
	"context"
	"log/slog"
	"strings"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/ports"
)

const (
	JobCompleted = "completed"
	JobDelivered = "delivered"
)

// JobEventInput is the job registry's inbound notice that a job finished.
type JobEventInput struct {
	UserID          string   `json:"userId" validate:"required"`
	CompanyID       string   `json:"companyId" validate:"required"`
	ServiceID       string   `json:"serviceId" validate:"required,max=64"`
	Kind            string   `json:"kind" validate:"required,oneof=completed delivered"`
	Rating          *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	CompletionHours *float64 `json:"completionHours" validate:"omitempty,gte=0"`
	Actor           string   `json:"actor"`
}

// RecordJobEvent turns one job transition into ledger awards per the award
// policy and folds rating and completion time into the profile. All writes
// commit together; replaying the same event is a conflict.
func (s *Service) RecordJobEvent(ctx context.Context, input JobEventInput) ([]domain.LedgerEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	input.Kind = strings.ToLower(strings.TrimSpace(input.Kind))
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	multiplier, err := s.currentMultiplier(ctx, input.CompanyID, input.UserID)
	if err != nil {
		return nil, err
	}

	policy := s.awardPolicy()
	now := s.nowUTC()
	serviceID := strings.TrimSpace(input.ServiceID)
	actor := actorOrDefault(input.Actor, "job-registry")
	newEntry := func(entryType domain.EntryType, base int64, description string) domain.LedgerEntry {
		return domain.LedgerEntry{
			ID:              newID(),
			UserID:          input.UserID,
			CompanyID:       input.CompanyID,
			Type:            entryType,
			Points:          domain.ApplyMultiplier(base, multiplier),
			BonusMultiplier: multiplier,
			Description:     description,
			ServiceID:       &serviceID,
			Actor:           actor,
			CreatedAt:       now,
		}
	}

	var entries []domain.LedgerEntry
	outcome := ports.ServiceOutcome{Rating: input.Rating, At: now}
	switch input.Kind {
	case JobCompleted:
		entries = append(entries, newEntry(domain.EntryServiceCompleted, policy.Points.ServiceCompleted, "service "+serviceID+" completed"))
		outcome.Completed = true
		outcome.CompletionHours = input.CompletionHours
		if bonus := policy.speedBonusFor(input.CompletionHours); bonus > 0 {
			entries = append(entries, newEntry(domain.EntrySpeedBonus, bonus, "service "+serviceID+" completed quickly"))
		}
	case JobDelivered:
		entries = append(entries, newEntry(domain.EntryServiceDelivered, policy.Points.ServiceDelivered, "service "+serviceID+" delivered"))
	default:
		return nil, errs.Validationf("unknown job event kind %q", input.Kind)
	}
	if bonus := policy.ratingBonusFor(input.Rating); bonus > 0 {
		entries = append(entries, newEntry(domain.EntryRatingBonus, bonus, "service "+serviceID+" rated highly"))
	}

	saved := make([]domain.LedgerEntry, 0, len(entries))
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		for _, entry := range entries {
			stored, err := s.appendEntryTx(txCtx, entry)
			if err != nil {
				return err
			}
			saved = append(saved, stored)
		}
		if outcome.Completed || outcome.Rating != nil {
			return s.repo.RecordServiceOutcome(txCtx, input.CompanyID, input.UserID, outcome)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	var total int64
	for _, entry := range saved {
		s.metrics.PointsAwarded(string(entry.Type))
		total += entry.Points
	}
	logging.Info(s.logCtx(ctx, input.CompanyID, input.UserID), "job event recorded",
		slog.String("service_id", serviceID),
		slog.String("kind", input.Kind),
		slog.Int("entries", len(saved)),
		slog.Int64("points", total),
	)
	return saved, nil
}
