package server

import (
	"fmt"
	"net/http"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	redisClient *redis.Client
}

// NewServer wires the catalog API. redisClient may be nil, in which case the
// snapshot cache and rate limiter are disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if redisClient == nil {
			custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"redis":  cache.Health(r.Context(), redisClient),
		})
	})

	// Initialize product source
	var source repository.ProductSource = repository.NewHTTPProductSource(
		cfg.Upstream.ProductsURL,
		repository.WithTimeout(cfg.Upstream.Timeout),
	)
	if redisClient != nil && cfg.Cache.TTL > 0 {
		source = repository.NewCachedProductSource(source, redisClient, cfg.Cache.TTL, logger)
		logger.Info("Catalog snapshot cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	// Initialize services
	catalogService := service.NewCatalogService(source, logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(catalogService, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		if redisClient != nil && cfg.RateLimit.Requests > 0 {
			r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "ratelimit:api",
			}, logger))
		}
		productHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: time.Minute,
		},
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close Redis connection
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
