package account

import (
	"github.com/go-chi/chi/v5"

	"github.com/avelin/pairwise/internal/app"
)

// Registrar ties the account service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the account service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the account endpoints to the router.
func (reg *Registrar) Register(r chi.Router) {
	h := &handler{svc: NewService(reg.appCtx)}
	r.Post("/clients", h.register)
	r.Post("/clients/login", h.login)
	r.Get("/clients/{id}/avatar", h.avatar)
}
