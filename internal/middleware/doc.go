// Package middleware holds the chi middleware chain of the dashboard server:
// request IDs, structured request logging, rate limiting, request deadlines,
// CORS, security headers and OpenTelemetry instrumentation.
package middleware
