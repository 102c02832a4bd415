package ports

import (
	"context"
	"time"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// QuotaReport lists non-premium users holding more likes than the free limit.
type QuotaReport struct {
	Limit      int64
	Violations []domain.UserLikeCount
	CheckedAt  time.Time
}

// QuotaAuditor scans the likes relation for free-tier violations.
type QuotaAuditor interface {
	Audit(ctx context.Context) (*QuotaReport, error)
}
