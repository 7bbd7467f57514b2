package performance

import (
	"context"
	"log/slog"
	"strings"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
)

type AddSkillInput struct {
	UserID            string             `json:"userId" validate:"required"`
	CompanyID         string             `json:"companyId" validate:"required"`
	ServiceCategoryID string             `json:"serviceCategoryId" validate:"required,max=64"`
	Proficiency       domain.Proficiency `json:"proficiencyLevel" validate:"min=1,max=4"`
	VerifiedBy        string             `json:"verifiedBy"`
}

type UpdateSkillInput struct {
	SkillID     string              `json:"skillId" validate:"required"`
	CompanyID   string              `json:"companyId" validate:"required"`
	Proficiency *domain.Proficiency `json:"proficiencyLevel" validate:"omitempty,min=1,max=4"`
	Verify      bool                `json:"verify"`
	VerifiedBy  string              `json:"verifiedBy"`
}

// AddSkill registers a service category for a technician. Passing VerifiedBy
// creates the skill already verified.
func (s *Service) AddSkill(ctx context.Context, input AddSkillInput) (domain.Skill, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Skill{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.Skill{}, err
	}

	now := s.nowUTC()
	skill := domain.Skill{
		ID:                newID(),
		UserID:            input.UserID,
		CompanyID:         input.CompanyID,
		ServiceCategoryID: strings.TrimSpace(input.ServiceCategoryID),
		Proficiency:       input.Proficiency,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if verifier := optionalText(input.VerifiedBy); verifier != nil {
		skill.IsVerified = true
		skill.VerifiedBy = verifier
		skill.VerifiedAt = &now
	}

	var created domain.Skill
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetProfile(txCtx, input.CompanyID, input.UserID); err != nil {
			return err
		}
		var err error
		created, err = s.repo.CreateSkill(txCtx, skill)
		return err
	}); err != nil {
		return domain.Skill{}, err
	}

	logging.Info(s.logCtx(ctx, input.CompanyID, input.UserID), "skill added",
		slog.String("skill_id", created.ID),
		slog.String("category_id", created.ServiceCategoryID),
		slog.String("proficiency", created.Proficiency.String()),
	)
	return created, nil
}

// UpdateSkill changes proficiency and/or verifies the skill. Verification
// needs a verifier identity and is never undone here.
func (s *Service) UpdateSkill(ctx context.Context, input UpdateSkillInput) (domain.Skill, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Skill{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.Skill{}, err
	}
	verifier := optionalText(input.VerifiedBy)
	if input.Verify && verifier == nil {
		return domain.Skill{}, errs.Validationf("verifiedBy is required to verify a skill")
	}
	if !input.Verify && verifier != nil {
		return domain.Skill{}, errs.Validationf("verifiedBy is only accepted together with verify")
	}
	if input.Proficiency == nil && !input.Verify {
		return domain.Skill{}, errs.Validationf("nothing to update")
	}

	now := s.nowUTC()
	var saved domain.Skill
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		skill, err := s.repo.GetSkill(txCtx, input.CompanyID, input.SkillID)
		if err != nil {
			return err
		}
		if input.Proficiency != nil {
			skill.Proficiency = *input.Proficiency
		}
		if input.Verify {
			skill.IsVerified = true
			skill.VerifiedBy = verifier
			skill.VerifiedAt = &now
		}
		skill.UpdatedAt = now

		saved, err = s.repo.SaveSkill(txCtx, skill)
		return err
	}); err != nil {
		return domain.Skill{}, err
	}

	logging.Info(s.logCtx(ctx, saved.CompanyID, saved.UserID), "skill updated",
		slog.String("skill_id", saved.ID),
		slog.String("proficiency", saved.Proficiency.String()),
		slog.Bool("is_verified", saved.IsVerified),
	)
	return saved, nil
}

func (s *Service) RemoveSkill(ctx context.Context, companyID string, skillID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if companyID == "" || skillID == "" {
		return errs.Validationf("companyId and skillId are required")
	}
	if err := s.repo.DeleteSkill(ctx, companyID, skillID); err != nil {
		return err
	}
	logging.Info(s.logCtx(ctx, companyID, ""), "skill removed", slog.String("skill_id", skillID))
	return nil
}

func (s *Service) ListSkills(ctx context.Context, companyID string, userID string) ([]domain.Skill, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if companyID == "" || userID == "" {
		return nil, errs.Validationf("companyId and userId are required")
	}
	return s.repo.ListSkills(ctx, companyID, []string{userID})
}
