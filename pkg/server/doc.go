// Package server exposes the sort pipeline over HTTP.
//
// # Endpoints
//
//	POST /v1/sort    body: encoded image; query: sort options; returns the sorted image
//	POST /v1/stats   body: encoded image; query: by; returns a JSON score summary
//	GET  /healthz    returns build information
//
// The image may also be sent as multipart/form-data in a file field named
// "image"; the file name must be a plain base name.
//
// Query parameters use the CLI flag names: by, interval, reverse,
// coefficients, discretize, progressive, direction, shuffle, channel, step,
// seed, format, quality and refresh.
//
// Every response carries an X-Request-ID header. Errors are JSON objects:
//
//	{"code": "INVALID_CONFIG", "message": "interval must be >= 1, got 0", "request_id": "..."}
//
// Validation errors map to 400, unsupported traversals to 422, oversized
// bodies to 413 and everything else to 500.
package server
