package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/aurora-be/internal/api/handlers"
	"github.com/isdelr/aurora-be/internal/auth"
	"github.com/isdelr/aurora-be/internal/monitoring"
	"github.com/isdelr/aurora-be/internal/repository"
	"github.com/isdelr/aurora-be/internal/services"
	"github.com/isdelr/aurora-be/internal/storage"
	"github.com/isdelr/aurora-be/internal/websocket"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Store          repository.Store
	Users          services.UserServiceProvider
	Posts          services.PostServiceProvider
	Events         services.EventServiceProvider
	Issuer         *auth.TokenIssuer
	Cookies        auth.CookiePolicy
	Images         storage.ImageStore
	UploadMaxBytes int64
	// UploadDir is served at /uploads when images are kept on local disk.
	UploadDir      string
	Hub            *websocket.Hub
	Stats          monitoring.StatsProvider
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Credentialed CORS so the SPA on another origin can send the session cookie
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Issuer, deps.Cookies)
	postHandler := handlers.NewPostHandler(deps.Posts)
	eventHandler := handlers.NewEventHandler(deps.Events)
	statusHandler := handlers.NewStatusHandler(deps.Store, deps.Stats)

	protect := auth.Middleware(deps.Issuer, deps.Users)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", statusHandler.Health)
		r.Get("/status", statusHandler.Status)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Get("/profile", authHandler.Profile)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.GetAll)
			r.Get("/{id}", postHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Post("/", postHandler.Create)
				r.Put("/{id}", postHandler.Update)
				r.Delete("/{id}", postHandler.Delete)
			})
		})

		r.With(protect).Get("/events", eventHandler.GetRecent)

		if deps.Images != nil {
			uploadHandler := handlers.NewUploadHandler(deps.Images, deps.UploadMaxBytes)
			r.With(protect).Post("/upload", uploadHandler.Upload)
		}

		if deps.Hub != nil {
			wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)
			r.Get("/ws", wsHandler.Serve)
			r.Get("/ws/posts/{id}", wsHandler.Serve)
		}
	})

	if deps.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir)))
		r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
			// No directory listings.
			if strings.HasSuffix(req.URL.Path, "/") {
				http.NotFound(w, req)
				return
			}
			fs.ServeHTTP(w, req)
		})
	}

	return r
}
