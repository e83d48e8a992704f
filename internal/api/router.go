package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/blog-backend/internal/api/handlers"
	"github.com/baharkarakas/blog-backend/internal/config"
	"github.com/baharkarakas/blog-backend/internal/metrics"
	"github.com/baharkarakas/blog-backend/internal/middleware"
	"github.com/baharkarakas/blog-backend/internal/services"
)

type RouterDeps struct {
	Cfg     config.Config
	Log     *slog.Logger
	AuthSvc *services.AuthService
	PostSvc *services.PostService
}

// baseMiddlewares wraps every route. Recover sits innermost so the logger
// and metrics see the 500 it writes for a panic.
func baseMiddlewares(log *slog.Logger) chi.Middlewares {
	return chi.Middlewares{
		middleware.RequestID,
		middleware.RequestLogger(log),
		middleware.HTTPMetrics,
		middleware.Recover,
	}
}

func NewRouter(d RouterDeps) http.Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	origins := d.Cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(baseMiddlewares(log)...)
	r.Use(middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.AuthSvc)
	postH := handlers.NewPostHandler(d.PostSvc)
	am := middleware.NewAuthMiddleware(d.AuthSvc)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postH.List)
			r.Get("/particular/{id}", postH.GetPublic)

			r.Group(func(r chi.Router) {
				r.Use(am.Auth)
				r.Post("/", postH.Create)
				r.Get("/my-blogs", postH.Mine)
				r.Get("/{id}", postH.Get)
				r.Put("/{id}", postH.Update)
				r.Delete("/{id}", postH.Delete)
			})
		})
	})

	return r
}
