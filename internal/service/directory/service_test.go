package directory_test

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
	"github.com/avelin/pairwise/internal/geo"
	"github.com/avelin/pairwise/internal/service/directory"
)

// fakeGeocoder resolves every place to a fixed point, or fails.
type fakeGeocoder struct {
	lat, lon float64
	err      error
}

func (f *fakeGeocoder) Resolve(ctx context.Context, place string) (float64, float64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.lat, f.lon, nil
}

func ptr(v float64) *float64 { return &v }

// Moscow and Saint Petersburg, ~634 km apart.
const (
	moscowLat = 55.7558
	moscowLon = 37.6173
	spbLat    = 59.9343
	spbLon    = 30.3351
)

// setupService wires an in-memory SQLite DB, a miniredis, and a fake
// geocoder into a directory service, seeded with:
//   - Anna (Moscow), Joanna (Moscow), Pyotr (St Petersburg)
//   - Boris with no coordinates at all
func setupService(t *testing.T, gc geo.Geocoder) (*directory.Service, *gorm.DB, *miniredis.Miniredis) {
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

	clients := []db.Client{
		{Name: "Anna", Surname: "Petrova", Email: "anna@test.com", Gender: db.GenderFemale, PasswordHash: "x", Active: true,
			Latitude: ptr(moscowLat), Longitude: ptr(moscowLon)},
		{Name: "Joanna", Surname: "Smith", Email: "joanna@test.com", Gender: db.GenderFemale, PasswordHash: "x", Active: true,
			Latitude: ptr(moscowLat + 0.01), Longitude: ptr(moscowLon + 0.01)},
		{Name: "Pyotr", Surname: "Ivanov", Email: "pyotr@test.com", Gender: db.GenderMale, PasswordHash: "x", Active: true,
			Latitude: ptr(spbLat), Longitude: ptr(spbLon)},
		{Name: "Boris", Surname: "Nowhere", Email: "boris@test.com", Gender: db.GenderMale, PasswordHash: "x", Active: true},
	}
	require.NoError(t, dbase.Create(&clients).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(cfg, dbase, redisCache, gc, logger)
	return directory.NewService(appCtx), dbase, mr
}

func names(summaries []directory.ClientSummary) []string {
	out := make([]string, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.Name)
	}
	return out
}

func TestListClientsNameFilter(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, nil)

	got, err := svc.ListClients(ctx, directory.ListParams{NameSubstr: "Anna"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Anna", "Joanna"}, names(got))
}

func TestListClientsSort(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, nil)

	got, err := svc.ListClients(ctx, directory.ListParams{SortField: "name", SortDir: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pyotr", "Joanna", "Boris", "Anna"}, names(got))
}

func TestListClientsNeverLeaksSecrets(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, nil)

	got, err := svc.ListClients(ctx, directory.ListParams{})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, s := range got {
		assert.NotZero(t, s.ID)
		assert.NotEmpty(t, s.Email)
	}
}

func TestListClientsRadiusZero(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, nil)

	// radius 0 keeps only the candidate sitting exactly on the
	// reference point
	got, err := svc.ListClients(ctx, directory.ListParams{
		Location: &directory.LocationFilter{
			Lat: ptr(moscowLat), Lon: ptr(moscowLon), MaxDistanceKm: 0,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna"}, names(got))
}

func TestListClientsDistanceFilter(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, &fakeGeocoder{lat: moscowLat, lon: moscowLon})

	// 100 km around Moscow: both Moscow clients, not Pyotr; Boris has
	// no coordinate and is excluded from any distance-filtered result
	got, err := svc.ListClients(ctx, directory.ListParams{
		Location: &directory.LocationFilter{Place: "Moscow", MaxDistanceKm: 100},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Anna", "Joanna"}, names(got))

	// 700 km reaches Saint Petersburg too
	got, err = svc.ListClients(ctx, directory.ListParams{
		Location: &directory.LocationFilter{Place: "Moscow", MaxDistanceKm: 700},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Anna", "Joanna", "Pyotr"}, names(got))
}

func TestListClientsGeocodeUnresolved(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, &fakeGeocoder{err: svcErr.ErrGeocodeUnresolved})

	_, err := svc.ListClients(ctx, directory.ListParams{
		Location: &directory.LocationFilter{Place: "Nowhereville", MaxDistanceKm: 50},
	})
	assert.ErrorIs(t, err, svcErr.ErrGeocodeUnresolved)
}

func TestListClientsLocationWithoutPoint(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, nil)

	_, err := svc.ListClients(ctx, directory.ListParams{
		Location: &directory.LocationFilter{MaxDistanceKm: 10},
	})
	assert.ErrorIs(t, err, svcErr.ErrInvalidLocation)
	assert.NotErrorIs(t, err, svcErr.ErrGeocodeUnresolved)
}

func TestListClientsCacheKeyDelimiterSafe(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, &fakeGeocoder{lat: moscowLat, lon: moscowLon})

	// a place name containing the odd character must not share a cache
	// entry with a tuple that merely concatenates to the same string
	first, err := svc.ListClients(ctx, directory.ListParams{
		Location: &directory.LocationFilter{Place: "1|2|3", MaxDistanceKm: 4},
	})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// explicit coordinates far from anyone
	second, err := svc.ListClients(ctx, directory.ListParams{
		Location: &directory.LocationFilter{Place: "1", Lat: ptr(2), Lon: ptr(3), MaxDistanceKm: 4},
	})
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestListClientsCacheBoundsStaleness(t *testing.T) {
	ctx := context.Background()
	svc, dbase, mr := setupService(t, nil)

	params := directory.ListParams{SortField: "name", SortDir: "asc"}

	first, err := svc.ListClients(ctx, params)
	require.NoError(t, err)

	// the store changes underneath the cache
	newcomer := db.Client{Name: "Zoya", Email: "zoya@test.com", Gender: db.GenderFemale, PasswordHash: "x", Active: true}
	require.NoError(t, dbase.Create(&newcomer).Error)

	// within the TTL the cached result comes back unchanged
	second, err := svc.ListClients(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, first, second, "cache hit must return the prior result")

	// once the TTL lapses the newcomer shows up
	mr.FastForward(time.Hour)
	third, err := svc.ListClients(ctx, params)
	require.NoError(t, err)
	assert.Contains(t, names(third), "Zoya")
}

func TestListClientsCacheKeyIncludesLocation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, nil)

	// an unfiltered listing must not satisfy a distance-filtered one
	all, err := svc.ListClients(ctx, directory.ListParams{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	near, err := svc.ListClients(ctx, directory.ListParams{
		Location: &directory.LocationFilter{
			Lat: ptr(moscowLat), Lon: ptr(moscowLon), MaxDistanceKm: 100,
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Anna", "Joanna"}, names(near))
}
