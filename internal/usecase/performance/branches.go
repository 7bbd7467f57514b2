package performance

import (
	"context"
	"log/slog"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
)

type RegisterBranchInput struct {
	CompanyID string `json:"companyId" validate:"required,max=64"`
	BranchID  string `json:"branchId" validate:"required,max=64"`
	Name      string `json:"name"`
}

// RegisterBranch adds a branch to the ranking scope; re-registering renames it.
func (s *Service) RegisterBranch(ctx context.Context, input RegisterBranchInput) (domain.Branch, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Branch{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.Branch{}, err
	}

	name := input.Name
	if name == "" {
		name = input.BranchID
	}

	branch, err := s.repo.UpsertBranch(ctx, domain.Branch{
		CompanyID: input.CompanyID,
		BranchID:  input.BranchID,
		Name:      name,
		CreatedAt: s.nowUTC(),
	})
	if err != nil {
		return domain.Branch{}, err
	}

	logging.Info(s.logCtx(ctx, input.CompanyID, ""), "branch registered", slog.String("branch_id", branch.BranchID))
	return branch, nil
}

func (s *Service) ListBranches(ctx context.Context, companyID string) ([]domain.Branch, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	companyID, err := requireText("companyId", companyID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBranches(ctx, companyID)
}
