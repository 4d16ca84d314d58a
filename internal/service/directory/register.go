package directory

import (
	"github.com/go-chi/chi/v5"

	"github.com/avelin/pairwise/internal/app"
)

// Registrar ties the directory service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the directory service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the directory endpoints to the router.
func (reg *Registrar) Register(r chi.Router) {
	h := &handler{svc: NewService(reg.appCtx)}
	r.Get("/clients", h.list)
}
