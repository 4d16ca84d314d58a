package match

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avelin/pairwise/internal/server"
)

type likeRequest struct {
	LikeeID uint64 `json:"likee_id"`
}

type likeResponse struct {
	Matched bool `json:"matched"`
}

type quotaResponse struct {
	LimitReached bool `json:"limit_reached"`
}

type handler struct {
	svc *Service
}

// like handles POST /clients/{id}/like.
func (h *handler) like(w http.ResponseWriter, r *http.Request) {
	likerID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		server.WriteBadRequest(w, "client id must be a valid uint64")
		return
	}

	var req likeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LikeeID == 0 {
		server.WriteBadRequest(w, "body must carry a non-zero likee_id")
		return
	}
	if req.LikeeID == likerID {
		server.WriteBadRequest(w, "cannot like yourself")
		return
	}

	matched, err := h.svc.Like(r.Context(), likerID, req.LikeeID)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, likeResponse{Matched: matched})
}

// quota handles GET /clients/{id}/quota.
func (h *handler) quota(w http.ResponseWriter, r *http.Request) {
	likerID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		server.WriteBadRequest(w, "client id must be a valid uint64")
		return
	}

	limited, err := h.svc.CheckDailyLimit(r.Context(), likerID)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, quotaResponse{LimitReached: limited})
}
