package directory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/avelin/pairwise/internal/app"
	svcErr "github.com/avelin/pairwise/internal/errors"
	"github.com/avelin/pairwise/internal/geo"
	"github.com/avelin/pairwise/internal/repository"
)

// ClientSummary is the listing projection of a client. Never carries
// the avatar or the password hash.
type ClientSummary struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	Surname   string   `json:"surname,omitempty"`
	Email     string   `json:"email"`
	Gender    string   `json:"gender"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// LocationFilter narrows a listing to candidates within MaxDistanceKm
// of a reference point. The point is either explicit coordinates or a
// free-text place resolved through the geocoder.
type LocationFilter struct {
	Place         string
	Lat, Lon      *float64
	MaxDistanceKm float64
}

// ListParams is the full parameter tuple for ListClients. Every field
// participates in the cache key.
type ListParams struct {
	NameSubstr    string
	SurnameSubstr string
	Gender        string
	SortField     string
	SortDir       string
	Location      *LocationFilter
}

// Service builds filtered, sorted, optionally distance-narrowed client
// listings and caches them in Redis under a deterministic key.
type Service struct {
	appCtx  *app.AppContext
	clients *repository.ClientRepository
}

// NewService creates a directory service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		clients: repository.NewClientRepository(appCtx.DB),
	}
}

// cacheKey derives the deterministic cache key for a parameter tuple.
// The tuple is serialized as JSON before hashing, so distinct tuples
// never collide on a delimiter. Location parameters are part of the
// tuple, so distance-filtered listings never collide with unfiltered
// ones.
func (s *Service) cacheKey(p ListParams) string {
	raw, _ := json.Marshal(p)
	sum := sha256.Sum256(raw)
	return s.appCtx.RedisCache.KeyForClientList(hex.EncodeToString(sum[:]))
}

// ListClients returns client summaries matching p.
//
// Cache-first: a hit returns the prior result without touching the
// store, so the result may lag writes by up to the configured TTL.
// On a miss the store is queried, the location filter applied, and the
// result cached. A place name that the geocoder cannot resolve fails
// the request with ErrGeocodeUnresolved; a location filter with
// neither a place nor coordinates fails with ErrInvalidLocation.
func (s *Service) ListClients(ctx context.Context, p ListParams) ([]ClientSummary, error) {
	key := s.cacheKey(p)

	if cached, err := s.appCtx.RedisCache.Get(ctx, key); err == nil {
		var out []ClientSummary
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			s.appCtx.Logger.Debug("directory cache hit", "key", key)
			return out, nil
		}
		// corrupt entry: fall through and recompute
		_ = s.appCtx.RedisCache.Del(ctx, key)
	}

	var refLat, refLon float64
	if loc := p.Location; loc != nil {
		switch {
		case loc.Lat != nil && loc.Lon != nil:
			refLat, refLon = *loc.Lat, *loc.Lon
		case loc.Place != "":
			var err error
			refLat, refLon, err = s.appCtx.Geocoder.Resolve(ctx, loc.Place)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("location filter: %w", svcErr.ErrInvalidLocation)
		}
	}

	clients, err := s.clients.Query(ctx, repository.ClientQuery{
		NameSubstr:    p.NameSubstr,
		SurnameSubstr: p.SurnameSubstr,
		Gender:        p.Gender,
		SortField:     p.SortField,
		SortDir:       p.SortDir,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query clients: %v", svcErr.ErrPersistence, err)
	}

	summaries := make([]ClientSummary, 0, len(clients))
	for _, c := range clients {
		summaries = append(summaries, ClientSummary{
			ID:        c.ID,
			Name:      c.Name,
			Surname:   c.Surname,
			Email:     c.Email,
			Gender:    c.Gender,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		})
	}

	if p.Location != nil {
		summaries = filterByDistance(summaries, refLat, refLon, p.Location.MaxDistanceKm)
	}

	if data, err := json.Marshal(summaries); err == nil {
		if err := s.appCtx.RedisCache.Set(ctx, key, data, s.appCtx.Cfg.Cache.ListTTL); err != nil {
			s.appCtx.Logger.Warn("failed to cache directory listing", "err", err)
		}
	}

	return summaries, nil
}

// filterByDistance keeps candidates within maxKm (inclusive) of the
// reference point. Candidates lacking a coordinate are dropped.
// Distances for all candidates are computed in one parallel batch.
func filterByDistance(in []ClientSummary, refLat, refLon, maxKm float64) []ClientSummary {
	located := make([]ClientSummary, 0, len(in))
	pairs := make([]geo.CoordPair, 0, len(in))
	for _, c := range in {
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		located = append(located, c)
		pairs = append(pairs, geo.CoordPair{
			Lat1: refLat, Lon1: refLon,
			Lat2: *c.Latitude, Lon2: *c.Longitude,
		})
	}

	distances := geo.DistanceBatch(pairs)

	out := make([]ClientSummary, 0, len(located))
	for i, c := range located {
		if distances[i] <= maxKm {
			out = append(out, c)
		}
	}
	return out
}
