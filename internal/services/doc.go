// Package services implements the business logic layer of chartlens.
// It sits between the HTTP and websocket transports and the pure
// analytics functions, owning the loaded dataset and the cross-cutting
// concerns of a render: tracing, metrics and logging.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Interface-driven design so handlers can be tested with mocks
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for the logger, tracer and metrics
//
// # Available Services
//
//	- DashboardService: filters the dataset and computes dashboard views
//	- HealthService: liveness, readiness and version information
//
// # Error Handling
//
// Services return errors from the internal/errors package so handlers can
// render them as RFC 7807 problems without inspecting them:
//
//	view, err := svc.View(ctx, name, filter)
//	if err != nil {
//	    errorHandler.HandleError(w, r, err)
//	    return
//	}
//
// # Concurrency
//
// The dataset is immutable once loaded. Services read it from many
// goroutines without locking and never cache a computed view.
package services
