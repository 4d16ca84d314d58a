package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/avelin/pairwise/internal/config"
	svcErr "github.com/avelin/pairwise/internal/errors"
)

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (lat, lon float64, err error)
}

// NominatimGeocoder resolves place names against a Nominatim-compatible
// search endpoint. The HTTP client carries its own timeout since this
// is a blocking call out of process.
type NominatimGeocoder struct {
	baseURL string
	client  *http.Client
}

// NewNominatimGeocoder builds a geocoder from config.
func NewNominatimGeocoder(cfg *config.Config) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL: cfg.Geocoder.BaseURL,
		client:  &http.Client{Timeout: cfg.Geocoder.Timeout},
	}
}

// nominatim returns lat/lon as JSON strings, not numbers.
type nominatimHit struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve looks up the first search hit for place. An empty result set
// maps to ErrGeocodeUnresolved; transport failures are returned as-is.
func (g *NominatimGeocoder) Resolve(ctx context.Context, place string) (float64, float64, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoder request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoder lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoder lookup: unexpected status %d", resp.StatusCode)
	}

	var hits []nominatimHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return 0, 0, fmt.Errorf("geocoder response: %w", err)
	}
	if len(hits) == 0 {
		return 0, 0, fmt.Errorf("%w: %q", svcErr.ErrGeocodeUnresolved, place)
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoder response: bad latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoder response: bad longitude: %w", err)
	}
	return lat, lon, nil
}
