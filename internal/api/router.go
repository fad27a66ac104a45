package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/tripscribe-be/internal/api/handlers"
	"github.com/isdelr/tripscribe-be/internal/auth"
	"github.com/isdelr/tripscribe-be/internal/services"
)

// RouterDeps bundles everything the HTTP layer needs.
type RouterDeps struct {
	Tokens         *auth.TokenManager
	UserService    services.UserServiceProvider
	StoryService   services.StoryServiceProvider
	AssetService   services.AssetServiceProvider
	UploadsDir     string
	AssetsDir      string
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.UserService, deps.Tokens)
	storyHandler := handlers.NewStoryHandler(deps.StoryService, deps.AssetService)
	imageHandler := handlers.NewImageHandler(deps.AssetService)
	healthHandler := handlers.NewHealthHandler(deps.UploadsDir)

	// Uploaded images and bundled assets (placeholder) are served read-only.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadsDir))))
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(deps.AssetsDir))))

	r.Get("/health", healthHandler.Status)

	// Public endpoints
	r.Post("/create-account", userHandler.Register)
	r.Post("/login", userHandler.Login)

	// Everything below requires a verified bearer token.
	r.Group(func(r chi.Router) {
		r.Use(deps.Tokens.Middleware())

		r.Get("/get-user", userHandler.GetMe)

		r.Post("/image-upload", imageHandler.Upload)
		r.Delete("/delete-image", imageHandler.Delete)

		r.Post("/add-travel-story", storyHandler.Add)
		r.Get("/get-all-stories", storyHandler.GetAll)
		r.Put("/edit-travel-story/{id}", storyHandler.Edit)
		r.Delete("/delete-travel-story/{id}", storyHandler.Delete)
		r.Put("/update-is-favourite/{id}", storyHandler.UpdateIsFavourite)
		r.Get("/search", storyHandler.Search)
		r.Get("/travel-stories/filter", storyHandler.Filter)
	})

	return r
}
