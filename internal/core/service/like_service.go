package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// BadgeAwarder is the part of the badge evaluator the like flow triggers.
type BadgeAwarder interface {
	CheckAndAward(ctx context.Context, userID string, trigger domain.TriggerType, value *int64) (*domain.Badge, error)
}

// PremiumChecker resolves whether a user is exempt from the free-tier limit.
type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// LikeService toggles likes under the free-tier quota.
type LikeService struct {
	likes   ports.LikeRepository
	cheats  ports.CheatRepository
	premium PremiumChecker
	badges  BadgeAwarder
	locker  ports.UserLocker
	limit   int64
	logger  zerolog.Logger
	now     func() time.Time
}

// NewLikeService returns a LikeService enforcing freeLimit for non-premium
// users. A non-positive freeLimit falls back to domain.DefaultFreeLikeLimit.
func NewLikeService(
	likes ports.LikeRepository,
	cheats ports.CheatRepository,
	premium PremiumChecker,
	badges BadgeAwarder,
	locker ports.UserLocker,
	freeLimit int64,
	logger zerolog.Logger,
) *LikeService {
	if freeLimit <= 0 {
		freeLimit = domain.DefaultFreeLikeLimit
	}
	return &LikeService{
		likes:   likes,
		cheats:  cheats,
		premium: premium,
		badges:  badges,
		locker:  locker,
		limit:   freeLimit,
		logger:  logger,
		now:     time.Now,
	}
}

// Limit returns the free-tier like limit.
func (s *LikeService) Limit() int64 { return s.limit }

// ToggleLike flips the liked state of cheatID for userID.
//
// The read-check-write sequence runs under the user's lock so two toggles
// from the same account cannot both pass the quota check. With a lock that
// lapses on its own the sequence is cut off at the lock's hold limit.
func (s *LikeService) ToggleLike(ctx context.Context, userID string, cheatID int64) (*ports.ToggleLikeResult, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := s.cheats.FindByID(ctx, cheatID); err != nil {
		if errors.Is(err, domain.ErrCheatNotFound) {
			return nil, err
		}
		return nil, domain.Remote("find cheat", err)
	}

	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrBusy) {
			return nil, err
		}
		return nil, domain.Remote("lock user", err)
	}
	defer unlock()

	if lease, ok := s.locker.(ports.LeaseLocker); ok {
		if hold := lease.HoldLimit(); hold > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, hold)
			defer cancel()
		}
	}

	liked, userTotal, err := s.currentState(ctx, userID, cheatID)
	if err != nil {
		return nil, err
	}

	var (
		inserted bool
		premium  bool
	)
	if liked {
		if _, err := s.likes.Delete(ctx, userID, cheatID); err != nil {
			return nil, domain.Remote("delete like", err)
		}
	} else {
		premium, err = s.premium.IsPremium(ctx, userID)
		if err != nil {
			return nil, domain.Remote("premium lookup", err)
		}
		if !premium && userTotal >= s.limit {
			s.logger.Debug().
				Str("user_id", userID).
				Int64("cheat_id", cheatID).
				Int64("likes", userTotal).
				Msg("like refused, free-tier limit reached")
			return nil, domain.ErrQuotaExceeded
		}

		err = s.likes.Insert(ctx, &domain.Like{UserID: userID, CheatID: cheatID, CreatedAt: s.now().UTC()})
		switch {
		case err == nil:
			inserted = true
		case errors.Is(err, domain.ErrAlreadyLiked):
			// Another session of the same user got there first.
		default:
			return nil, domain.Remote("insert like", err)
		}
	}

	result, err := s.fetchResult(ctx, userID, cheatID)
	if err != nil {
		return nil, err
	}
	if inserted {
		result.NewBadges = s.awardBadges(ctx, userID, result.UserLikes, premium)
	}

	s.logger.Info().
		Str("user_id", userID).
		Int64("cheat_id", cheatID).
		Bool("liked", result.IsLiked).
		Int64("user_likes", result.UserLikes).
		Msg("like toggled")

	return result, nil
}

// LikeStatus reports the popularity of a cheat and whether userID likes it.
// Anonymous callers always get IsLiked=false.
func (s *LikeService) LikeStatus(ctx context.Context, userID string, cheatID int64) (*ports.LikeStatus, error) {
	status := &ports.LikeStatus{CheatID: cheatID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.likes.CountByCheat(gctx, cheatID)
		if err != nil {
			return domain.Remote("count cheat likes", err)
		}
		status.LikesCount = n
		return nil
	})
	if userID != "" {
		g.Go(func() error {
			ok, err := s.likes.Exists(gctx, userID, cheatID)
			if err != nil {
				return domain.Remote("read like status", err)
			}
			status.IsLiked = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return status, nil
}

func (s *LikeService) currentState(ctx context.Context, userID string, cheatID int64) (liked bool, userTotal int64, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := s.likes.Exists(gctx, userID, cheatID)
		if err != nil {
			return domain.Remote("read like status", err)
		}
		liked = ok
		return nil
	})
	g.Go(func() error {
		n, err := s.likes.CountByUser(gctx, userID)
		if err != nil {
			return domain.Remote("count user likes", err)
		}
		userTotal = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return false, 0, err
	}
	return liked, userTotal, nil
}

func (s *LikeService) fetchResult(ctx context.Context, userID string, cheatID int64) (*ports.ToggleLikeResult, error) {
	status, err := s.LikeStatus(ctx, userID, cheatID)
	if err != nil {
		return nil, err
	}
	userTotal, err := s.likes.CountByUser(ctx, userID)
	if err != nil {
		return nil, domain.Remote("count user likes", err)
	}
	return &ports.ToggleLikeResult{
		CheatID:    cheatID,
		IsLiked:    status.IsLiked,
		LikesCount: status.LikesCount,
		UserLikes:  userTotal,
	}, nil
}

// awardBadges evaluates the like triggers after a new like. Failures are
// logged only: the like itself already succeeded.
func (s *LikeService) awardBadges(ctx context.Context, userID string, userTotal int64, premium bool) []domain.Badge {
	triggers := []domain.TriggerType{domain.TriggerFirstLike, domain.TriggerLikeCount}
	if !premium && userTotal >= s.limit {
		triggers = append(triggers, domain.TriggerLikeLimit)
	}

	var awarded []domain.Badge
	for _, trigger := range triggers {
		badge, err := s.badges.CheckAndAward(ctx, userID, trigger, &userTotal)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("user_id", userID).
				Str("trigger", string(trigger)).
				Msg("badge evaluation failed")
			continue
		}
		if badge != nil {
			awarded = append(awarded, *badge)
		}
	}
	return awarded
}
