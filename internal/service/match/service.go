package match

import (
	"context"
	"fmt"
	"time"

	"github.com/avelin/pairwise/internal/app"
	svcErr "github.com/avelin/pairwise/internal/errors"
	"github.com/avelin/pairwise/internal/repository"
)

// dailyLikeLimit is the fixed policy constant: a liker gets this many
// likes per rolling 24h window.
const (
	dailyLikeLimit = 5
	quotaWindow    = 24 * time.Hour
)

// LikeRecord is the typed result of a successful like insert.
type LikeRecord struct {
	LikerID   uint64    `json:"liker_id"`
	LikeeID   uint64    `json:"likee_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Service owns the like/match business rules: daily quota enforcement,
// like creation, mutual-like detection.
type Service struct {
	appCtx *app.AppContext
	uow    *repository.UnitOfWork
}

// NewService creates a match service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		uow:    repository.NewUnitOfWork(appCtx.DB),
	}
}

// CheckDailyLimit reports whether the liker has reached the daily like
// quota. Cache-first for the common under-limit answer: the cached
// counter is an upper bound on the rolling-window count (inserts bump
// it, aging out only shrinks the real count), so a counter under the
// limit settles the check without touching the store. A counter at the
// limit is re-verified against the store, otherwise a liker would stay
// denied for the cache TTL after the last like aged out of the window.
// No side effects on like rows.
func (s *Service) CheckDailyLimit(ctx context.Context, likerID uint64) (bool, error) {
	if n, err := s.appCtx.RedisCache.GetLikeQuota(ctx, likerID); err == nil && n < dailyLikeLimit {
		return false, nil
	}

	var count int64
	err := s.uow.Do(ctx, func(r *repository.Repos) error {
		var err error
		count, err = r.Likes.CountSince(ctx, likerID, time.Now().UTC().Add(-quotaWindow))
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%w: count likes: %v", svcErr.ErrPersistence, err)
	}

	if err := s.appCtx.RedisCache.SetLikeQuota(ctx, likerID, count, s.appCtx.Cfg.Cache.QuotaTTL); err != nil {
		s.appCtx.Logger.Warn("failed to cache like quota", "liker", likerID, "err", err)
	}

	return count >= dailyLikeLimit, nil
}

// CreateLike records liker -> likee interest in one transaction.
//
// Behavior:
//   - ErrDuplicateLike if the exact ordered pair already exists (the
//     pair-unique index backstops the pre-check under races).
//   - ErrPersistence on store failure; the transaction rolls back, so
//     either the row exists afterward or nothing does.
func (s *Service) CreateLike(ctx context.Context, likerID, likeeID uint64) (*LikeRecord, error) {
	var rec *LikeRecord
	err := s.uow.Do(ctx, func(r *repository.Repos) error {
		existing, err := r.Likes.Find(ctx, likerID, likeeID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("like %d->%d: %w", likerID, likeeID, svcErr.ErrDuplicateLike)
		}

		like, err := r.Likes.Insert(ctx, likerID, likeeID)
		if err != nil {
			return err
		}
		rec = &LikeRecord{
			LikerID:   like.LikerID,
			LikeeID:   like.LikeeID,
			CreatedAt: like.CreatedAt,
		}
		return nil
	})
	if err != nil {
		if svcErr.Is(err, svcErr.ErrDuplicateLike) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create like: %v", svcErr.ErrPersistence, err)
	}

	// keep the cached quota counter in step with the insert
	if err := s.appCtx.RedisCache.IncrLikeQuota(ctx, likerID, s.appCtx.Cfg.Cache.QuotaTTL); err != nil {
		s.appCtx.Logger.Warn("failed to bump like quota", "liker", likerID, "err", err)
	}

	return rec, nil
}

// CheckMutualLike reports whether both (a->b) and (b->a) like rows
// exist. Both lookups run inside one transaction so the answer is one
// consistent logical read. Symmetric in its arguments.
func (s *Service) CheckMutualLike(ctx context.Context, aID, bID uint64) (bool, error) {
	var mutual bool
	err := s.uow.Do(ctx, func(r *repository.Repos) error {
		ab, err := r.Likes.Find(ctx, aID, bID)
		if err != nil {
			return err
		}
		ba, err := r.Likes.Find(ctx, bID, aID)
		if err != nil {
			return err
		}
		mutual = ab != nil && ba != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: mutual check: %v", svcErr.ErrPersistence, err)
	}
	return mutual, nil
}

// Like runs the end-to-end flow: existence checks, quota check, like
// insert, mutual-like detection. Returns whether the like completed a
// mutual match.
//
// The quota check and the insert are separate transactions, so
// concurrent requests from the same liker can both pass the check and
// land past the limit. Known gap, kept to match the quota's advisory
// nature; the quota tests document it.
func (s *Service) Like(ctx context.Context, likerID, likeeID uint64) (bool, error) {
	s.appCtx.Logger.Debug("like requested", "liker", likerID, "likee", likeeID)

	err := s.uow.Do(ctx, func(r *repository.Repos) error {
		for _, id := range []uint64{likerID, likeeID} {
			client, err := r.Clients.FindByID(ctx, id)
			if err != nil {
				return fmt.Errorf("%w: find client: %v", svcErr.ErrPersistence, err)
			}
			if client == nil {
				return fmt.Errorf("client %d: %w", id, svcErr.ErrNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	limited, err := s.CheckDailyLimit(ctx, likerID)
	if err != nil {
		return false, err
	}
	if limited {
		return false, fmt.Errorf("liker %d: %w", likerID, svcErr.ErrQuotaExceeded)
	}

	if _, err := s.CreateLike(ctx, likerID, likeeID); err != nil {
		return false, err
	}

	matched, err := s.CheckMutualLike(ctx, likerID, likeeID)
	if err != nil {
		return false, err
	}
	if matched {
		s.appCtx.Logger.Info("mutual match", "a", likerID, "b", likeeID)
	}
	return matched, nil
}
