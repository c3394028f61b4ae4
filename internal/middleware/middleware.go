// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request timing, bearer authentication, request logging,
// metrics, CORS, rate limiting, and panic recovery
package middleware
