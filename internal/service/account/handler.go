package account

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avelin/pairwise/internal/db"
	"github.com/avelin/pairwise/internal/server"
)

// maxAvatarBytes bounds the multipart form memory for registration.
const maxAvatarBytes = 8 << 20

type handler struct {
	svc *Service
}

// register handles POST /clients (multipart form).
func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		server.WriteBadRequest(w, "expected multipart form")
		return
	}

	params := RegisterParams{
		Name:     r.FormValue("name"),
		Surname:  r.FormValue("surname"),
		Email:    r.FormValue("email"),
		Gender:   r.FormValue("gender"),
		Password: r.FormValue("password"),
	}
	if params.Name == "" || params.Email == "" || params.Password == "" {
		server.WriteBadRequest(w, "name, email and password are required")
		return
	}
	if !db.ValidGender(params.Gender) {
		server.WriteBadRequest(w, "gender must be male, female or other")
		return
	}

	if latStr := r.FormValue("lat"); latStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(r.FormValue("lon"), 64)
		if errLat != nil || errLon != nil {
			server.WriteBadRequest(w, "lat and lon must both be valid numbers")
			return
		}
		params.Latitude, params.Longitude = &lat, &lon
	}

	if file, _, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		avatar, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
		if err != nil {
			server.WriteBadRequest(w, "failed to read avatar")
			return
		}
		params.Avatar = avatar
	}

	summary, err := h.svc.Register(r.Context(), params)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, summary)
}

// login handles POST /clients/login (form email/password).
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		server.WriteBadRequest(w, "expected form body")
		return
	}
	email, password := r.FormValue("email"), r.FormValue("password")
	if email == "" || password == "" {
		server.WriteBadRequest(w, "email and password are required")
		return
	}

	token, summary, err := h.svc.Login(r.Context(), email, password)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"client": summary,
	})
}

// avatar handles GET /clients/{id}/avatar.
func (h *handler) avatar(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		server.WriteBadRequest(w, "client id must be a valid uint64")
		return
	}

	blob, err := h.svc.Avatar(r.Context(), clientID)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}
