// Package service implements the catalog's repository layer.
//
// CatalogService sits between callers (the HTTP handlers, the seed loader)
// and the store. It composes data access operations into the workflows the
// application needs and is the only place that opens transactions.
//
// # Writes
//
// Every write is queued on a Writer, which runs writes one at a time on a
// background goroutine. The caller gets an *Operation straight away; it
// starts Pending and resolves exactly once to Success or Failure with a
// short user-facing message. Callers that only care about the live queries
// may ignore it. Failures are logged either way.
//
// SaveRecipe is the composite write: in one transaction it deletes the
// existing recipe (cascading to its ingredient rows), reinserts it under the
// same id, and inserts the new ingredient list. Any error rolls everything
// back.
//
// # Reads
//
// The Observe methods return live subscriptions (see package live). After a
// write commits, the service notifies the registry of the tables it touched
// and publishes an Event on the EventBus for SSE clients.
//
// # Import and export
//
// ImportCatalog merges a portable catalog (see package codec) by name in a
// single transaction; ExportCatalog produces one from the store.
package service
