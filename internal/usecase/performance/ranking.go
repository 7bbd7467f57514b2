package performance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/ports"
)

type CandidateQuery struct {
	CompanyID     string `json:"companyId" validate:"required"`
	BranchID      string `json:"branchId" validate:"required"`
	CategoryID    string `json:"categoryId"`
	AvailableOnly bool   `json:"availableOnly"`
	SortBy        string `json:"sortBy"`
}

// GetCandidates ranks the technicians of one branch for a job assignment.
// Open job counts come live from the job registry in a single batched call;
// if that call fails or times out the whole request fails.
func (s *Service) GetCandidates(ctx context.Context, query CandidateQuery) ([]domain.Candidate, error) {
	started := time.Now()
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(query); err != nil {
		return nil, err
	}
	sortBy, err := domain.ParseSortStrategy(query.SortBy)
	if err != nil {
		return nil, err
	}

	candidates, err := s.rankCandidates(ctx, query, sortBy)
	result := "ok"
	switch {
	case err == nil:
	case errs.IsDependencyTimeout(err):
		result = "timeout"
	default:
		result = "error"
	}
	s.metrics.RankingRequest(string(sortBy), result, time.Since(started))
	return candidates, err
}

func (s *Service) rankCandidates(ctx context.Context, query CandidateQuery, sortBy domain.SortStrategy) ([]domain.Candidate, error) {
	logCtx := logging.WithAttrs(s.logCtx(ctx, query.CompanyID, ""), slog.String("branch_id", query.BranchID))

	levels, err := s.ladder(ctx, query.CompanyID)
	if err != nil {
		return nil, err
	}

	var (
		profiles []domain.TechnicianProfile
		skills   []domain.Skill
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetBranch(txCtx, query.CompanyID, query.BranchID); err != nil {
			return err
		}
		profiles, err = s.repo.ListProfiles(txCtx, ports.ProfileFilter{
			CompanyID:     query.CompanyID,
			BranchID:      query.BranchID,
			AvailableOnly: query.AvailableOnly,
			CategoryID:    query.CategoryID,
		})
		if err != nil || len(profiles) == 0 {
			return err
		}
		skills, err = s.repo.ListSkills(txCtx, query.CompanyID, profileIDs(profiles))
		return err
	}); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return []domain.Candidate{}, nil
	}

	openJobs, err := s.countOpenJobs(ctx, query.CompanyID, query.BranchID, profileIDs(profiles))
	if err != nil {
		logFailure(logCtx, "job registry unavailable, ranking aborted", err, slog.Int("technicians", len(profiles)))
		return nil, err
	}

	skillsByUser := make(map[string][]domain.Skill, len(profiles))
	for _, skill := range skills {
		skillsByUser[skill.UserID] = append(skillsByUser[skill.UserID], skill)
	}

	candidates := make([]domain.Candidate, 0, len(profiles))
	for _, profile := range profiles {
		var level *domain.Level
		if profile.CurrentLevelID != nil {
			if found, ok := domain.FindLevel(levels, *profile.CurrentLevelID); ok {
				level = &found
			}
		}
		userSkills := skillsByUser[profile.UserID]
		if userSkills == nil {
			userSkills = []domain.Skill{}
		}
		candidates = append(candidates, domain.NewCandidate(profile, level, userSkills, openJobs[profile.UserID]))
	}
	domain.SortCandidates(candidates, sortBy)

	logging.Debug(logCtx, "candidates ranked",
		slog.String("sort_by", string(sortBy)),
		slog.String("category_id", query.CategoryID),
		slog.Int("count", len(candidates)),
	)
	return candidates, nil
}

type openJobsResult struct {
	counts map[string]int
	err    error
}

// countOpenJobs bounds the registry call by the configured timeout even when
// the registry ignores its context.
func (s *Service) countOpenJobs(ctx context.Context, companyID string, branchID string, technicianIDs []string) (map[string]int, error) {
	if s.registry == nil {
		return nil, errs.DependencyTimeout("job registry", errors.New("job registry is not configured"))
	}

	callCtx, cancel := context.WithTimeout(ctx, s.registryTimeout)
	defer cancel()

	done := make(chan openJobsResult, 1)
	go func() {
		counts, err := s.registry.CountOpenJobs(callCtx, companyID, branchID, technicianIDs)
		done <- openJobsResult{counts: counts, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if ctx.Err() != nil {
				return nil, errs.Wrap(ctx.Err(), "count open jobs")
			}
			return nil, errs.DependencyTimeout("job registry", res.err)
		}
		if res.counts == nil {
			return map[string]int{}, nil
		}
		return res.counts, nil
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return nil, errs.Wrap(ctx.Err(), "count open jobs")
		}
		return nil, errs.DependencyTimeout("job registry", callCtx.Err())
	}
}

func profileIDs(profiles []domain.TechnicianProfile) []string {
	ids := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		ids = append(ids, profile.UserID)
	}
	return ids
}
