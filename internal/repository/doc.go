// Package repository defines the data access interfaces for NutriApp.
//
// This package provides the data access layer for the three catalog
// entities. The actual implementation is in the sqlite subpackage.
//
// # Data Access Objects
//
// IngredientDAO, RecipeDAO and RecipeIngredientDAO expose single-entity
// reads and writes. They never call each other; composition happens only
// in the service layer.
//
// # Transactions
//
// Store.WithTx runs a function against DAOs bound to one transaction. The
// transaction commits when the function returns nil and rolls back on any
// error, so multi-table writes are all-or-nothing.
//
// # Constraints
//
// Referential rules live in the schema, not in application code: deleting a
// recipe cascades to its recipe_ingredients rows, deleting an ingredient that
// is still used is rejected, and a recipe cannot list one ingredient twice.
// Violations surface as errors wrapping domain.ErrDuplicate or
// domain.ErrReferenced.
package repository
