package api

import (
	"github.com/aboutme-website/aboutme-be/internal/api/handlers"
	"github.com/aboutme-website/aboutme-be/internal/auth"
	"github.com/aboutme-website/aboutme-be/internal/notify"
	"github.com/aboutme-website/aboutme-be/internal/services"
	"github.com/aboutme-website/aboutme-be/internal/site"
	"github.com/aboutme-website/aboutme-be/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	hub *websocket.Hub,
	authService services.AuthServiceProvider,
	profileService services.ProfileServiceProvider,
	postService services.PostServiceProvider,
	allocator *site.Allocator,
	pipeline *site.Pipeline,
	notifier notify.Notifier,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, notifier)
	profileHandler := handlers.NewProfileHandler(profileService, postService, authService, allocator, pipeline, notifier)
	postHandler := handlers.NewPostHandler(postService, profileService, pipeline, notifier)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoints for build status events
		r.Get("/ws", wsHandler.Serve)
		r.Get("/ws/sites/{slug}", wsHandler.Serve)

		// Phone registration and login
		r.Post("/register-phone", authHandler.RegisterPhone)
		r.Post("/verify-phone", authHandler.VerifyPhone)
		r.Put("/login", authHandler.Login)

		// Routes below require a valid access token
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())
			r.Post("/create-profile", profileHandler.CreateProfile)
			r.Post("/create-blog-post", postHandler.CreateBlogPost)
			r.Get("/user-directory", profileHandler.GetDirectory)
		})
	})

	return r
}
