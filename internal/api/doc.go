// Package api contains the HTTP handlers for the management API: feed CRUD
// and refresh, digest generation, background task inspection and control, and
// admin authentication. Handlers translate between HTTP and the service
// layer and never touch the stores directly.
package api
