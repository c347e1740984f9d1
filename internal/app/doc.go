// Package app wires chartlens together and owns its lifecycle.
//
// NewApplication loads the chart export once, builds the dashboard service,
// the live session manager and the health service, and mounts them on a chi
// router:
//
//	GET  /                       dashboard page
//	GET  /ws                     live dashboard session
//	     /api/...                JSON API (dataset, filters, dashboard, views, tracks)
//	GET  /api/export/{view.fmt}  CSV or XLSX download
//	POST /api/log                client error reports
//	GET  /metrics                Prometheus scrape endpoint
//
// Run listens until the context is cancelled or SIGINT/SIGTERM arrives and
// optionally opens the dashboard in the default browser once the server
// answers its liveness check. Stop shuts down the HTTP server, closes open
// websocket sessions (they are hijacked and not covered by
// http.Server.Shutdown) and flushes telemetry.
//
// A load failure is fatal: NewApplication returns the *dataprocessing.LoadError
// unchanged in its error chain so the caller can report the path and reason.
package app
