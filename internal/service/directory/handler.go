package directory

import (
	"net/http"
	"strconv"

	"github.com/avelin/pairwise/internal/server"
)

type handler struct {
	svc *Service
}

// list handles GET /clients.
//
// Query params: name, surname, gender, sort, dir, place, lat, lon,
// radius_km. A location filter needs radius_km plus either place or
// both lat and lon.
func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := ListParams{
		NameSubstr:    q.Get("name"),
		SurnameSubstr: q.Get("surname"),
		Gender:        q.Get("gender"),
		SortField:     q.Get("sort"),
		SortDir:       q.Get("dir"),
	}

	if radiusStr := q.Get("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius < 0 {
			server.WriteBadRequest(w, "radius_km must be a non-negative number")
			return
		}
		loc := &LocationFilter{Place: q.Get("place"), MaxDistanceKm: radius}

		latStr, lonStr := q.Get("lat"), q.Get("lon")
		if latStr != "" || lonStr != "" {
			lat, errLat := strconv.ParseFloat(latStr, 64)
			lon, errLon := strconv.ParseFloat(lonStr, 64)
			if errLat != nil || errLon != nil {
				server.WriteBadRequest(w, "lat and lon must both be valid numbers")
				return
			}
			loc.Lat, loc.Lon = &lat, &lon
		}
		if loc.Place == "" && loc.Lat == nil {
			server.WriteBadRequest(w, "location filter needs place or lat/lon")
			return
		}
		params.Location = loc
	}

	summaries, err := h.svc.ListClients(r.Context(), params)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, summaries)
}
