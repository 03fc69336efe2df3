// Package middleware provides net/http middleware for the devtools server.
//
// This package includes:
//   - OpenTelemetry request tracing
//   - Prometheus request metrics
//   - Structured request logging
//
// Each middleware has the standard func(http.Handler) http.Handler shape
// and works with chi or any other router:
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry())
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//	r.Use(middleware.Logger(logger))
//
// When the handler is mounted on a chi router, metrics and spans are
// labeled with the route pattern ("/watches/{id}") rather than the raw
// path, which keeps label cardinality bounded.
package middleware
