package server

import (
	"log/slog"
	"net/http"
	"time"

	"loopr-backend/internal/handlers"
	"loopr-backend/internal/logging"
	"loopr-backend/internal/mailer"
	customMiddleware "loopr-backend/internal/middleware"
	"loopr-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Tokens both issues and verifies session tokens; *auth.TokenManager
// satisfies it.
type Tokens interface {
	handlers.TokenIssuer
	customMiddleware.TokenParser
}

// Deps is everything the HTTP layer needs from the rest of the process.
type Deps struct {
	Logger         *slog.Logger
	Transactions   handlers.TransactionStore
	Users          handlers.UserStore
	Tokens         Tokens
	Mailer         mailer.Mailer
	Health         *handlers.HealthHandler
	AuthLimiter    *customMiddleware.RateLimiter
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, d.Mailer)
	userHandler := handlers.NewUserHandler(d.Users, d.Mailer)
	txHandler := handlers.NewTransactionHandler(d.Transactions)
	exportHandler := handlers.NewExportHandler(d.Transactions)

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	health := d.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Export-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", health.Health)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.Timeout(timeout))
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Handler)
			}
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
		})

		// Protected routes (JWT required)
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Authenticate(d.Tokens, d.Users))

			// No request deadline: exports stream until the cursor is drained.
			r.Post("/export/csv", exportHandler.CSV)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(timeout))

				r.Route("/users", func(r chi.Router) {
					r.Get("/profile", userHandler.GetProfile)
					r.Put("/profile", userHandler.UpdateProfile)
					r.Put("/change-password", userHandler.ChangePassword)
					r.Put("/avatar", userHandler.UploadAvatar)
					r.Get("/avatar", userHandler.GetAvatar)
				})

				r.Route("/transactions", func(r chi.Router) {
					r.Get("/", txHandler.List)
					r.Post("/", txHandler.Create)
					r.Get("/analytics", txHandler.Analytics)
					r.Get("/filters", txHandler.Filters)
					r.Get("/{id}", txHandler.Get)

					r.Group(func(r chi.Router) {
						r.Use(customMiddleware.RequireRole(models.RoleAdmin))
						r.Put("/{id}", txHandler.Update)
						r.Delete("/{id}", txHandler.Delete)
					})
				})

				r.Get("/export/columns", exportHandler.Columns)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Route not found"}`))
	})

	return r
}
