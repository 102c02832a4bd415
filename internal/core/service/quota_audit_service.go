package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// QuotaAuditService looks for free users holding more likes than allowed.
// With the per-user lock in place the report should stay empty; entries
// point at writes that bypassed the service.
type QuotaAuditService struct {
	likes   ports.LikeRepository
	premium PremiumChecker
	limit   int64
	logger  zerolog.Logger
	now     func() time.Time
}

func NewQuotaAuditService(likes ports.LikeRepository, premium PremiumChecker, freeLimit int64, logger zerolog.Logger) *QuotaAuditService {
	if freeLimit <= 0 {
		freeLimit = domain.DefaultFreeLikeLimit
	}
	return &QuotaAuditService{likes: likes, premium: premium, limit: freeLimit, logger: logger, now: time.Now}
}

func (s *QuotaAuditService) Audit(ctx context.Context) (*ports.QuotaReport, error) {
	over, err := s.likes.CountsAtLeast(ctx, s.limit+1)
	if err != nil {
		return nil, domain.Remote("count likes per user", err)
	}

	report := &ports.QuotaReport{
		Limit:      s.limit,
		Violations: []domain.UserLikeCount{},
		CheckedAt:  s.now().UTC(),
	}
	for _, uc := range over {
		premium, err := s.premium.IsPremium(ctx, uc.UserID)
		if err != nil {
			return nil, err
		}
		if premium {
			continue
		}
		report.Violations = append(report.Violations, uc)
		s.logger.Warn().
			Str("user_id", uc.UserID).
			Int64("likes", uc.Count).
			Int64("limit", s.limit).
			Msg("free-tier quota exceeded")
	}
	return report, nil
}
