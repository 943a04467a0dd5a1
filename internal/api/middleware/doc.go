// Package middleware provides HTTP middleware for the storage API.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for the shell's WebView origin
//   - RateLimit: Per-IP token bucket rate limiting with idle client eviction
//   - RequestID: X-Request-ID propagation and generation
//
// Example Usage:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
