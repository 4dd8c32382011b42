package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shalevclinic/backend/app"
	"github.com/shalevclinic/backend/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMW := deps.AuthMiddleware

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealthz)
	r.Get("/readyz", deps.HealthHandler.HandleReadyz)

	// Uploaded images
	uploadsDir := http.Dir(deps.Store.Dir())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadsDir)))

	// Authentication
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", deps.AuthHandler.HandleRegister)
		r.Post("/login", deps.AuthHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Get("/me", deps.AuthHandler.HandleMe)
			r.Put("/change-password", deps.AuthHandler.HandleChangePassword)
		})
	})

	// Articles
	r.Route("/api/articles", func(r chi.Router) {
		r.Get("/", deps.ArticleHandler.HandleListPublished)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Get("/admin/all", deps.ArticleHandler.HandleListAll)
			r.Get("/stats/summary", deps.ArticleHandler.HandleStats)
			r.Get("/admin/{id}", deps.ArticleHandler.HandleGet)
			r.Post("/", deps.ArticleHandler.HandleCreate)
			r.Put("/{id}", deps.ArticleHandler.HandleUpdate)
			r.Delete("/{id}", deps.ArticleHandler.HandleDelete)
		})

		r.Get("/{id}", deps.ArticleHandler.HandleGetPublished)
	})

	// Gallery
	r.Route("/api/gallery", func(r chi.Router) {
		r.Get("/", deps.GalleryHandler.HandleListVisible)
		r.Get("/categories", deps.GalleryHandler.HandleCategories)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Get("/admin/all", deps.GalleryHandler.HandleListAll)
			r.Get("/stats/summary", deps.GalleryHandler.HandleStats)
			r.Post("/", deps.GalleryHandler.HandleUpload)
			r.With(authMW.RequireAdmin).Post("/bulk", deps.GalleryHandler.HandleBulk)
			r.Put("/{id}", deps.GalleryHandler.HandleUpdate)
			r.Delete("/{id}", deps.GalleryHandler.HandleDelete)
		})

		r.Get("/{id}", deps.GalleryHandler.HandleGet)
	})

	// Services
	r.Route("/api/services", func(r chi.Router) {
		r.Get("/", deps.ServiceHandler.HandleListActive)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Get("/admin/all", deps.ServiceHandler.HandleListAll)
			r.Get("/stats/summary", deps.ServiceHandler.HandleStats)
			r.Post("/", deps.ServiceHandler.HandleCreate)
			r.Put("/{id}", deps.ServiceHandler.HandleUpdate)
			r.Delete("/{id}", deps.ServiceHandler.HandleDelete)
		})

		r.Get("/{id}", deps.ServiceHandler.HandleGet)
	})

	// Health declarations. Submission is public, everything else is
	// admin-only.
	r.Route("/api/health-declarations", func(r chi.Router) {
		r.Post("/", deps.DeclarationHandler.HandleSubmit)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Use(authMW.RequireAdmin)
			r.Get("/", deps.DeclarationHandler.HandleList)
			r.Get("/stats/summary", deps.DeclarationHandler.HandleStats)
			r.Get("/{id}", deps.DeclarationHandler.HandleGet)
			r.Delete("/{id}", deps.DeclarationHandler.HandleDelete)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found","message":"The requested resource does not exist"}`))
	})

	return r
}
