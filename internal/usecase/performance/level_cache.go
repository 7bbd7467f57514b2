package performance

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	domain "techrank/internal/domain/performance"
	"techrank/internal/ports"
)

type cachedLevel struct {
	ID               string    `json:"id"`
	CompanyID        string    `json:"companyId"`
	Name             string    `json:"name"`
	Code             string    `json:"code"`
	MinPoints        int64     `json:"minPoints"`
	MaxPoints        *int64    `json:"maxPoints"`
	PointsMultiplier float64   `json:"pointsMultiplier"`
	IncentivePercent float64   `json:"incentivePercent"`
	SortOrder        int       `json:"sortOrder"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// generationTTL outlives any ladder snapshot by a wide margin. An expired
// generation is replaced by a fresh one, so it only costs a cache miss.
const generationTTL = 24 * time.Hour

func levelGenerationKey(companyID string) string {
	return "levels:gen:" + companyID
}

func levelCacheKey(companyID string, generation string) string {
	return "levels:" + companyID + ":" + generation
}

// ladder returns the company's tiers sorted by sort order. Outside a
// transaction it reads through the cache; inside one it always reads the
// store so the caller sees its own writes.
//
// Snapshots are keyed by the company's ladder generation, read before the
// store. A reader that loaded the ladder before a write committed can only
// store its snapshot under the generation that write retired.
func (s *Service) ladder(ctx context.Context, companyID string) ([]domain.Level, error) {
	if s.cache == nil || ports.TxFromContext(ctx) != nil {
		return s.repo.ListLevels(ctx, companyID)
	}

	logCtx := s.logCtx(ctx, companyID, "")
	generation, err := s.ladderGeneration(ctx, companyID)
	if err != nil {
		s.metrics.LevelCache("error")
		logFailure(logCtx, "level cache generation read failed", err)
		return s.repo.ListLevels(ctx, companyID)
	}
	key := levelCacheKey(companyID, generation)

	raw, found, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.LevelCache("error")
		logFailure(logCtx, "level cache read failed", err)
	case found:
		var cached []cachedLevel
		decodeErr := json.Unmarshal([]byte(raw), &cached)
		if decodeErr == nil {
			s.metrics.LevelCache("hit")
			return fromCachedLevels(cached), nil
		}
		s.metrics.LevelCache("error")
		logFailure(logCtx, "level cache entry is corrupt", decodeErr, slog.String("key", key))
	default:
		s.metrics.LevelCache("miss")
	}

	levels, err := s.repo.ListLevels(ctx, companyID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(toCachedLevels(levels))
	if err == nil {
		err = s.cache.Set(ctx, key, string(payload), s.levelTTL)
	}
	if err != nil {
		logFailure(logCtx, "level cache write failed", err)
	}
	return levels, nil
}

// ladderGeneration returns the current generation, starting a new one when
// none is stored.
func (s *Service) ladderGeneration(ctx context.Context, companyID string) (string, error) {
	generation, found, err := s.cache.Get(ctx, levelGenerationKey(companyID))
	if err != nil {
		return "", err
	}
	if found && generation != "" {
		return generation, nil
	}
	generation = newID()
	if err := s.cache.Set(ctx, levelGenerationKey(companyID), generation, generationTTL); err != nil {
		return "", err
	}
	return generation, nil
}

// invalidateLadder must run after the level write committed and before the
// write returns to its caller. It retires the current generation; the old
// snapshot is deleted as well so it does not linger until expiry.
func (s *Service) invalidateLadder(ctx context.Context, companyID string) error {
	if s.cache == nil {
		return nil
	}
	previous, found, err := s.cache.Get(ctx, levelGenerationKey(companyID))
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, levelGenerationKey(companyID), newID(), generationTTL); err != nil {
		return err
	}
	if found && previous != "" {
		return s.cache.Delete(ctx, levelCacheKey(companyID, previous))
	}
	return nil
}

func toCachedLevels(levels []domain.Level) []cachedLevel {
	out := make([]cachedLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, cachedLevel{
			ID:               l.ID,
			CompanyID:        l.CompanyID,
			Name:             l.Name,
			Code:             l.Code,
			MinPoints:        l.MinPoints,
			MaxPoints:        l.MaxPoints,
			PointsMultiplier: l.PointsMultiplier,
			IncentivePercent: l.IncentivePercent,
			SortOrder:        l.SortOrder,
			CreatedAt:        l.CreatedAt,
			UpdatedAt:        l.UpdatedAt,
		})
	}
	return out
}

func fromCachedLevels(cached []cachedLevel) []domain.Level {
	out := make([]domain.Level, 0, len(cached))
	for _, c := range cached {
		out = append(out, domain.Level{
			ID:               c.ID,
			CompanyID:        c.CompanyID,
			Name:             c.Name,
			Code:             c.Code,
			MinPoints:        c.MinPoints,
			MaxPoints:        c.MaxPoints,
			PointsMultiplier: c.PointsMultiplier,
			IncentivePercent: c.IncentivePercent,
			SortOrder:        c.SortOrder,
			CreatedAt:        c.CreatedAt,
			UpdatedAt:        c.UpdatedAt,
		})
	}
	return domain.SortLevels(out)
}
