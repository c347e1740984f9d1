// Package http implements the HTTP handlers of the chart dashboard. It is a
// thin layer between chi routing and the dashboard service: handlers parse
// the filter selection, call the service and render JSON or downloads.
//
// # Routes
//
//	GET  /                         dashboard page
//	GET  /api/health[/ready|/live] health checks
//	GET  /api/version              build information
//	GET  /api/dataset              dataset metadata
//	GET  /api/filters              filter widget options
//	GET  /api/dashboard            every view in one response
//	GET  /api/views/{view}         one view
//	GET  /api/tracks               paged filtered tracks
//	GET  /api/export/{view}.{fmt}  csv or xlsx download
//	POST /api/log                  client-side error reports
//
// Filter query parameters are parsed once by FilterCtx and read back with
// FilterFromContext.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Request validation failed",
//	    "instance": "/api/dashboard"
//	}
//
// A filter that matches nothing is not an error; the dashboard answers 200
// with "empty": true.
package http
