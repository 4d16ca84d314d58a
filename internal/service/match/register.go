package match

import (
	"github.com/go-chi/chi/v5"

	"github.com/avelin/pairwise/internal/app"
)

// Registrar ties the match service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the match service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the match endpoints to the router.
func (reg *Registrar) Register(r chi.Router) {
	h := &handler{svc: NewService(reg.appCtx)}
	r.Post("/clients/{id}/like", h.like)
	r.Get("/clients/{id}/quota", h.quota)
}
