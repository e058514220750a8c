package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"todolist/internal/handlers"
	"todolist/internal/middleware"
	"todolist/internal/repository"
	"todolist/internal/session"
)

func RegisterTodoRoutes(router chi.Router, db *sql.DB, sessions session.Store) {
	repo := repository.NewTodoRepository(db)
	handler := handlers.NewTodoHandler(repo)

	router.Route("/todolist", func(r chi.Router) {
		r.Use(middleware.SessionAuth(sessions))

		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
}
