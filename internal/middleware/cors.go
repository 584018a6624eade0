package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// corsOptions builds the browser policy. Development and an empty origin list
// open the API to any origin, which rules out credentialed requests.
func corsOptions(allowedOrigins []string, isDevelopment bool) cors.Options {
	origins := allowedOrigins
	if isDevelopment || len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		// Rate limit headers let clients back off before hitting 429
		ExposedHeaders:   []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}
}

// CORSMiddleware applies the shop's cross-origin policy
func CORSMiddleware(allowedOrigins []string, isDevelopment bool) func(http.Handler) http.Handler {
	return cors.Handler(corsOptions(allowedOrigins, isDevelopment))
}

// BaseStack is the chi middleware every request passes through before
// logging. Panics are recovered by ErrorHandlingMiddleware so the client
// still gets an error envelope.
func BaseStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.CleanPath,
		middleware.Compress(5, "application/json"),
	}
}
