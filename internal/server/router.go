// Package server собирает HTTP-роутер сервиса: общие middleware, /healthz
// и маршруты фич.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/server/middleware"
)

const healthTimeout = 2 * time.Second

// Routes — фича, умеющая подключить свои маршруты.
type Routes interface {
	Register(r chi.Router)
}

// RouterDeps — зависимости роутера.
type RouterDeps struct {
	CORSOrigins []string
	RateLimiter *middleware.RateLimiter     // nil — без ограничения
	Health      func(context.Context) error // nil — всегда ok
	Features    []Routes
}

// NewRouter создаёт chi-роутер со всеми маршрутами.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.Recover)
	r.Use(middleware.LogRequest)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware)
	}

	r.Get("/healthz", healthHandler(deps.Health))

	for _, f := range deps.Features {
		f.Register(r)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.WriteError(w, http.StatusNotFound, "Not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	})

	return r
}

func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				log.WithError(err).Warn("healthz: база недоступна")
				common.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
