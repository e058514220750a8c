package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"todolist/internal/config"
	"todolist/internal/handlers"
	"todolist/internal/middleware"
	"todolist/internal/repository"
	"todolist/internal/services"
	"todolist/internal/session"
)

func RegisterUserRoutes(router chi.Router, db *sql.DB, cfg *config.Config, sessions session.Store) {
	userRepo := repository.NewUserRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	mailer := &services.SMTPSender{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		User:   cfg.SMTPUser,
		Pass:   cfg.SMTPPassword,
		From:   cfg.SMTPFrom,
		UseTLS: cfg.SMTPUseTLS,
	}

	secureCookie := cfg.Environment == "production"
	userHandler := handlers.NewUserHandler(userRepo, sessions, cfg.SessionTTL, secureCookie)
	resetHandler := handlers.NewPasswordResetHandler(db, userRepo, resetRepo, mailer, cfg.AppBaseURL)

	router.Route("/api/users", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/logout", userHandler.Logout)

		r.Get("/exists/username/{username}", userHandler.UsernameExists)
		r.Get("/exists/email/{email}", userHandler.EmailExists)

		r.Post("/password-reset/request", resetHandler.Request)
		r.Get("/password-reset/validate", resetHandler.Validate)
		r.Post("/password-reset/reset", resetHandler.Reset)

		r.With(middleware.SessionAuth(sessions)).Get("/me", userHandler.Me)

		// Keep last so fixed segments above keep precedence.
		r.Get("/{username}", userHandler.GetByUsername)
	})
}
