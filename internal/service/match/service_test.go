package match_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avelin/pairwise/internal/app"
	"github.com/avelin/pairwise/internal/cache"
	"github.com/avelin/pairwise/internal/config"
	"github.com/avelin/pairwise/internal/db"
	svcErr "github.com/avelin/pairwise/internal/errors"
	"github.com/avelin/pairwise/internal/service/match"
)

// setupService spins up an in-memory SQLite DB, applies migrations,
// seeds ten clients, starts a miniredis, and wires everything into a
// match service. Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) (*match.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(&db.Client{}, &db.Like{}))

	var clients []db.Client
	for i := 1; i <= 10; i++ {
		clients = append(clients, db.Client{
			ID:           uint64(i),
			Name:         fmt.Sprintf("client%d", i),
			Email:        fmt.Sprintf("c%d@test.com", i),
			Gender:       db.GenderOther,
			PasswordHash: "x",
			Active:       true,
		})
	}
	require.NoError(t, dbase.Create(&clients).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(cfg, dbase, redisCache, nil, logger)
	return match.NewService(appCtx), dbase
}

func TestCreateLikeDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	rec, err := svc.CreateLike(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.LikerID)
	assert.Equal(t, uint64(2), rec.LikeeID)
	assert.False(t, rec.CreatedAt.IsZero())

	_, err = svc.CreateLike(ctx, 1, 2)
	assert.ErrorIs(t, err, svcErr.ErrDuplicateLike)
}

func TestCheckDailyLimitBoundary(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// 4 likes within the window: under the limit
	for likee := uint64(2); likee <= 5; likee++ {
		_, err := svc.CreateLike(ctx, 1, likee)
		require.NoError(t, err)
	}
	limited, err := svc.CheckDailyLimit(ctx, 1)
	require.NoError(t, err)
	assert.False(t, limited, "4 likes must not reach the limit")

	// exactly 5: limit reached
	_, err = svc.CreateLike(ctx, 1, 6)
	require.NoError(t, err)
	limited, err = svc.CheckDailyLimit(ctx, 1)
	require.NoError(t, err)
	assert.True(t, limited, "5 likes must reach the limit")
}

func TestCheckDailyLimitIgnoresOldLikes(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	// likes older than 24h do not count against the quota; the check
	// runs before any cache entry exists so it counts from the store
	old := time.Now().UTC().Add(-25 * time.Hour)
	for likee := uint64(2); likee <= 7; likee++ {
		like := db.Like{LikerID: 1, LikeeID: likee, CreatedAt: old}
		require.NoError(t, dbase.Create(&like).Error)
	}

	limited, err := svc.CheckDailyLimit(ctx, 1)
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestCheckDailyLimitFreesUpAsLikesAge(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	for likee := uint64(2); likee <= 6; likee++ {
		_, err := svc.CreateLike(ctx, 1, likee)
		require.NoError(t, err)
	}

	// prime the cached counter at the limit
	limited, err := svc.CheckDailyLimit(ctx, 1)
	require.NoError(t, err)
	require.True(t, limited)

	// every like ages out of the window while the counter is cached;
	// the denial must be re-verified against the store, not answered
	// from the stale counter
	old := time.Now().UTC().Add(-25 * time.Hour)
	require.NoError(t, dbase.Model(&db.Like{}).
		Where("liker_id = ?", uint64(1)).
		Update("created_at", old).Error)

	limited, err = svc.CheckDailyLimit(ctx, 1)
	require.NoError(t, err)
	assert.False(t, limited, "likes outside the 24h window must not count")
}

func TestCheckMutualLike(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// one-way like is not mutual
	_, err := svc.CreateLike(ctx, 1, 2)
	require.NoError(t, err)
	mutual, err := svc.CheckMutualLike(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, mutual)

	// reciprocal like closes the match
	_, err = svc.CreateLike(ctx, 2, 1)
	require.NoError(t, err)

	ab, err := svc.CheckMutualLike(ctx, 1, 2)
	require.NoError(t, err)
	ba, err := svc.CheckMutualLike(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, ab)
	assert.Equal(t, ab, ba, "mutual check must be symmetric")
}

func TestLikeFlowReportsMatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	matched, err := svc.Like(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, matched)

	matched, err = svc.Like(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestLikeFlowUnknownClient(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Like(ctx, 1, 999)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = svc.Like(ctx, 999, 1)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestLikeFlowQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	for likee := uint64(2); likee <= 6; likee++ {
		_, err := svc.Like(ctx, 1, likee)
		require.NoError(t, err)
	}

	// the 6th like of the day bounces before any insert
	_, err := svc.Like(ctx, 1, 7)
	assert.ErrorIs(t, err, svcErr.ErrQuotaExceeded)

	mutual, err := svc.CheckMutualLike(ctx, 1, 7)
	require.NoError(t, err)
	assert.False(t, mutual, "rejected like must leave no row behind")
}

// TestQuotaCheckNotAtomicWithInsert documents a known gap: the daily
// limit check and the like insert run in separate transactions, so
// CreateLike on its own never enforces the quota and two concurrent
// Like calls from one liker can both pass the check and land past the
// limit. The quota is advisory, enforced only by the Like flow's
// pre-check.
func TestQuotaCheckNotAtomicWithInsert(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	for likee := uint64(2); likee <= 6; likee++ {
		_, err := svc.CreateLike(ctx, 1, likee)
		require.NoError(t, err)
	}

	limited, err := svc.CheckDailyLimit(ctx, 1)
	require.NoError(t, err)
	require.True(t, limited)

	// the limit is reached, yet a bare insert still succeeds
	_, err = svc.CreateLike(ctx, 1, 7)
	assert.NoError(t, err)
}
