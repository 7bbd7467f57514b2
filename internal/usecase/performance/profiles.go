package performance

import (
	"context"
	"log/slog"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/ports"
)

type CreateProfileInput struct {
	UserID            string `json:"userId" validate:"required,max=64"`
	CompanyID         string `json:"companyId" validate:"required,max=64"`
	BranchID          string `json:"branchId" validate:"required,max=64"`
	MaxConcurrentJobs int    `json:"maxConcurrentJobs" validate:"gt=0"`
}

type UpdateProfileInput struct {
	UserID            string  `json:"userId" validate:"required"`
	CompanyID         string  `json:"companyId" validate:"required"`
	IsAvailable       *bool   `json:"isAvailable"`
	MaxConcurrentJobs *int    `json:"maxConcurrentJobs" validate:"omitempty,gt=0"`
	BranchID          *string `json:"branchId" validate:"omitempty,min=1,max=64"`
}

// CreateProfile registers a technician in a branch. The profile starts on the
// lowest tier of the company ladder when one exists.
func (s *Service) CreateProfile(ctx context.Context, input CreateProfileInput) (domain.TechnicianProfile, error) {
	if err := s.ready(ctx); err != nil {
		return domain.TechnicianProfile{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.TechnicianProfile{}, err
	}

	logCtx := s.logCtx(ctx, input.CompanyID, input.UserID)
	now := s.nowUTC()

	var created domain.TechnicianProfile
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetBranch(txCtx, input.CompanyID, input.BranchID); err != nil {
			return err
		}

		levels, err := s.repo.ListLevels(txCtx, input.CompanyID)
		if err != nil {
			return err
		}

		profile := domain.TechnicianProfile{
			UserID:            input.UserID,
			CompanyID:         input.CompanyID,
			BranchID:          input.BranchID,
			IsAvailable:       true,
			MaxConcurrentJobs: input.MaxConcurrentJobs,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if lowest, ok := domain.LowestLevel(levels); ok {
			profile.CurrentLevelID = &lowest.ID
		}

		created, err = s.repo.CreateProfile(txCtx, profile)
		return err
	}); err != nil {
		return domain.TechnicianProfile{}, err
	}

	logging.Info(logCtx, "technician profile created", slog.String("branch_id", created.BranchID))
	return created, nil
}

func (s *Service) GetProfile(ctx context.Context, companyID string, userID string) (domain.TechnicianProfile, error) {
	if err := s.ready(ctx); err != nil {
		return domain.TechnicianProfile{}, err
	}
	if companyID == "" || userID == "" {
		return domain.TechnicianProfile{}, errs.Validationf("companyId and userId are required")
	}
	return s.repo.GetProfile(ctx, companyID, userID)
}

// UpdateProfile changes availability, capacity or branch. Profiles are never
// deleted; IsAvailable=false is the soft disable.
func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (domain.TechnicianProfile, error) {
	if err := s.ready(ctx); err != nil {
		return domain.TechnicianProfile{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.TechnicianProfile{}, err
	}
	if input.IsAvailable == nil && input.MaxConcurrentJobs == nil && input.BranchID == nil {
		return domain.TechnicianProfile{}, errs.Validationf("nothing to update")
	}

	var updated domain.TechnicianProfile
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if input.BranchID != nil {
			if _, err := s.repo.GetBranch(txCtx, input.CompanyID, *input.BranchID); err != nil {
				return err
			}
		}

		var err error
		updated, err = s.repo.UpdateProfile(txCtx, input.CompanyID, input.UserID, ports.ProfileUpdate{
			IsAvailable:       input.IsAvailable,
			MaxConcurrentJobs: input.MaxConcurrentJobs,
			BranchID:          input.BranchID,
		}, s.nowUTC())
		return err
	}); err != nil {
		return domain.TechnicianProfile{}, err
	}

	logging.Info(s.logCtx(ctx, input.CompanyID, input.UserID), "technician profile updated",
		slog.Bool("is_available", updated.IsAvailable),
		slog.Int("max_concurrent_jobs", updated.MaxConcurrentJobs),
	)
	return updated, nil
}
