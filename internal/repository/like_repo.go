package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/avelin/pairwise/internal/db"
	svcErr "github.com/avelin/pairwise/internal/errors"
)

// LikeRepository provides data access methods for the Like model.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Find returns the like for the exact ordered (liker, likee) pair, or
// (nil, nil) when there is none.
func (r *LikeRepository) Find(ctx context.Context, likerID, likeeID uint64) (*db.Like, error) {
	var like db.Like
	err := r.db.WithContext(ctx).
		Where("liker_id = ? AND likee_id = ?", likerID, likeeID).
		First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// Insert creates a like row for the ordered pair with the current
// timestamp. The pair-unique index is the backstop against duplicates;
// a violation surfaces as ErrDuplicateLike.
func (r *LikeRepository) Insert(ctx context.Context, likerID, likeeID uint64) (*db.Like, error) {
	like := db.Like{LikerID: likerID, LikeeID: likeeID}
	err := r.db.WithContext(ctx).Create(&like).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("like %d->%d: %w", likerID, likeeID, svcErr.ErrDuplicateLike)
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// CountSince returns how many likes the liker created at or after the
// given instant. Serves the daily-quota check.
func (r *LikeRepository) CountSince(ctx context.Context, likerID uint64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("liker_id = ? AND created_at >= ?", likerID, since).
		Count(&count).Error
	return count, err
}
