package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/avelin/pairwise/internal/config"
)

// Registrar is a common interface for wiring a service's routes into
// the router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the chi router with the shared middleware stack and
// registers all provided services.
func NewRouter(registrars ...Registrar) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	r.Use(RequestID)
	r.Use(RequestLogger)

	for _, reg := range registrars {
		reg.Register(r)
	}

	return r
}

// StartHTTPServer boots the HTTP server and blocks until it exits.
func StartHTTPServer(cfg *config.Config, registrars ...Registrar) error {
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(registrars...),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	return srv.ListenAndServe()
}
