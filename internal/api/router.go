package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lessonlab/lessonlab-be/internal/api/handlers"
	"github.com/lessonlab/lessonlab-be/internal/auth"
	"github.com/lessonlab/lessonlab-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(sessions *auth.Manager, userService services.UserServiceProvider, lessonService services.LessonServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for the browser client
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, sessions)
	lessonHandler := handlers.NewLessonHandler(lessonService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/signup", userHandler.Signup)
			r.Post("/login", userHandler.Login)
			r.Get("/login", userHandler.AutoLogin)
			r.Post("/logout", userHandler.Logout)
			r.Get("/", userHandler.GetAll)
			r.With(sessions.RequireSession).Patch("/", userHandler.UpdateProfile)

			r.Route("/bookmark", func(r chi.Router) {
				r.Use(sessions.RequireSession)
				r.Post("/{id}", userHandler.AddBookmark)
				r.Delete("/{id}", userHandler.RemoveBookmark)
			})
		})

		r.Route("/lesson", func(r chi.Router) {
			r.With(sessions.OptionalSession).Get("/", lessonHandler.GetAll)
			r.With(sessions.RequireSession).Post("/", lessonHandler.Create)
			r.With(sessions.RequireSession).Put("/", lessonHandler.Update)
		})
	})

	return r
}
