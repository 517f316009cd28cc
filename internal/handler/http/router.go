package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// WelcomeMessage is served at the root path.
const WelcomeMessage = "Everything is good here 🙌"

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	ServiceName    string
	ProductService *service.ProductService
	ReviewService  *service.ReviewService
	UserService    *service.UserService
	TokenValidator middleware.TokenValidator
	Health         *health.Handler
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	registerRules()

	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: WelcomeMessage})
	})

	// Health check and metrics endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authenticated := middleware.Auth(cfg.TokenValidator)
	sellerOnly := middleware.RequireRole(middleware.RoleSeller)
	buyerOnly := middleware.RequireRole(middleware.RoleBuyer)

	// User account endpoints (public)
	userHandler := NewUserHandler(cfg.UserService, logger)
	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Get("/{userId}", userHandler.GetUser)
	})

	// Product endpoints: reads are public, writes need a seller token.
	productHandler := NewProductHandler(cfg.ProductService, logger)
	r.Route("/api/product", func(r chi.Router) {
		r.Get("/", productHandler.SearchProducts)
		r.Get("/all", productHandler.ListProducts)
		r.Get("/category/{category}", productHandler.ListByCategory)
		r.Get("/{productId}", productHandler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(authenticated, sellerOnly, middleware.RequestLogger(logger))

			r.Post("/", productHandler.AddProduct)
			r.Put("/{productId}", productHandler.UpdateProduct)
			r.Delete("/{productId}", productHandler.DeleteProduct)
		})
	})

	// Review endpoints: every route needs a token, adding one needs a buyer.
	reviewHandler := NewReviewHandler(cfg.ReviewService, logger)
	r.Route("/api/review", func(r chi.Router) {
		r.Use(authenticated, middleware.RequestLogger(logger))

		r.Get("/", reviewHandler.GetAllReviews)
		r.Get("/{productId}", reviewHandler.GetReviews)
		r.With(buyerOnly).Put("/{productId}", reviewHandler.AddReview)
	})

	return r
}
