// Package domain defines the core types of the NutriApp recipe and ingredient catalog.
//
// # Core Types
//
// Ingredient is a named food item with a calorie count and an optional image.
//
// Recipe is a named procedure (free-text steps) with an optional image. A
// recipe is composed of ingredients through RecipeIngredient join records,
// each carrying a free-text quantity such as "2 cups".
//
// IngredientWithQuantity is a read model pairing a full Ingredient with the
// quantity used by one recipe. It is never persisted.
//
// # Identity
//
// Ingredient and Recipe ids are assigned by the store on insert. Unsaved
// in-memory records carry id 0. A RecipeIngredient is identified by the pair
// (RecipeID, IngredientID); a recipe cannot reference the same ingredient twice.
//
// # Catalog
//
// Catalog is the portable form of the whole data set used for import, export
// and seed files. Recipes in a catalog reference ingredients by name so that
// catalogs stay valid across databases with different ids.
//
// # Errors
//
// ErrNotFound, ErrDuplicate, ErrReferenced, ErrMissingReference and
// ErrInvalid are the sentinel errors shared by the store and the service.
// Constraint violations raised by the store wrap one of ErrDuplicate,
// ErrReferenced or ErrMissingReference; IsConstraint matches all three.
package domain
