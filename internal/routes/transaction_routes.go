package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"todolist/internal/handlers"
	"todolist/internal/middleware"
	"todolist/internal/repository"
	"todolist/internal/session"
)

func RegisterTransactionRoutes(router chi.Router, db *sql.DB, sessions session.Store) {
	repo := repository.NewTransactionRepository(db)
	handler := handlers.NewTransactionHandler(repo)

	router.Route("/api/transactions", func(r chi.Router) {
		r.Use(middleware.SessionAuth(sessions))

		r.Get("/", handler.List)
		r.Get("/range", handler.ListByDateRange)
		r.Get("/category/{category}", handler.ListByCategory)
		r.Get("/summary", handler.Summary)
		r.Post("/", handler.Create)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
}
