// Package handler implements HTTP request handlers for the nutriapp API.
//
// # Handlers
//
// CatalogHandler serves ingredients, recipes, the recipe ingredient lines,
// and catalog import/export. Middleware provides request logging, panic
// recovery, and CORS support.
//
// # Writes
//
// Every write is queued on the service writer and the handler waits for
// its result before answering. Adding ?wait=false answers 202 Accepted with
// the pending operation instead. Failures are returned as JSON with
// {error, details}, where error is the user-facing failure message.
//
// Domain errors map onto status codes: not found is 404, invalid input is
// 400, and constraint violations (duplicate key, referenced row, missing
// reference) are 409.
//
// # Live Queries
//
// The /api/live/... endpoints hold a live query open as a Server-Sent
// Events stream. The current result is sent immediately as a "snapshot"
// event and again after every committed change to the tables it reads.
package handler
