package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"megashop/internal/config"
	"megashop/internal/database"
	custommiddleware "megashop/internal/middleware"
	"megashop/internal/repository"
	"megashop/internal/service"
	"megashop/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer assembles the API over an open database and Redis client. The
// server owns both from here on and releases them in Close.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.BaseStack()...)
	router.Use(custommiddleware.LoggingMiddleware(s.logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(s.logger))
	router.Use(custommiddleware.CORSMiddleware(s.config.CORS.AllowedOrigins, s.config.Server.IsDevelopment()))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithMessage(w, http.StatusOK, "MegaShop API is running")
	})
	router.Get("/health", s.health)

	db := s.db.DB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	cartRepo := repository.NewCartRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, s.config.JWT.Secret, s.config.JWT.Expiry)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	cartService := service.NewCartService(cartRepo)
	wishlistService := service.NewWishlistService(wishlistRepo)
	promoService := service.NewPromoService(promoRepo)
	orderService := service.NewOrderService(orderRepo, s.logger)

	authMiddleware := custommiddleware.AuthMiddleware(func(token string) (uuid.UUID, error) {
		claims, err := userService.ValidateToken(token)
		if err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}, s.logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(s.rateLimit("ratelimit:auth"))
		transport.NewUserHandler(userService, s.logger).RegisterRoutes(r, authMiddleware)
	})
	// Code guessing is limited per shopper rather than per address
	transport.NewPromoHandler(promoService, s.logger).RegisterRoutes(router, authMiddleware, s.rateLimit("ratelimit:promo"))
	transport.NewProductHandler(catalogService, s.logger).RegisterRoutes(router)
	transport.NewCartHandler(cartService, s.logger).RegisterRoutes(router, authMiddleware)
	transport.NewWishlistHandler(wishlistService, s.logger).RegisterRoutes(router, authMiddleware)
	transport.NewOrderHandler(orderService, s.logger).RegisterRoutes(router, authMiddleware)

	return router
}

func (s *Server) rateLimit(prefix string) func(http.Handler) http.Handler {
	return custommiddleware.RateLimitMiddleware(s.redis, custommiddleware.RateLimitConfig{
		RequestsPerWindow: s.config.RateLimit.Requests,
		Window:            s.config.RateLimit.Window,
		KeyPrefix:         prefix,
	}, s.logger)
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status   string            `json:"status"`
	Database map[string]string `json:"database"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	stats := s.db.Health(r.Context())
	if stats["status"] != "up" {
		custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: stats})
		return
	}
	custommiddleware.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: stats})
}

// Close releases the database pool and the Redis client
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	var firstErr error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
			firstErr = err
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.logger.Sync()
	return firstErr
}

// PingRedis reports whether the rate limit backend answers. The limiter fails
// open, so an unreachable Redis is logged rather than fatal.
func (s *Server) PingRedis(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
