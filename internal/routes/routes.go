// internal/routes/routes.go
package routes

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"todolist/internal/config"
	"todolist/internal/session"
)

func SetupRoutes(db *sql.DB, cfg *config.Config, sessions session.Store) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// The frontend sends the session cookie cross-origin, so credentials
	// must be allowed and the origin cannot be a wildcard.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "todolist api"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"status": "ok"}
		dbStatus := map[string]any{"status": "ok"}
		code := http.StatusOK

		if err := db.PingContext(r.Context()); err != nil {
			dbStatus["status"] = "down"
			dbStatus["error"] = err.Error()
			resp["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
		resp["db"] = dbStatus

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	})

	RegisterUserRoutes(r, db, cfg, sessions)
	RegisterTodoRoutes(r, db, sessions)
	RegisterTransactionRoutes(r, db, sessions)
	RegisterSwaggerRoutes(r)

	return r
}
