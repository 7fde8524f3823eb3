package repository

import (
	"context"

	"nutriapp/internal/domain"
)

// IngredientDAO defines data access for ingredients
type IngredientDAO interface {
	// Read operations, ordered by id
	All(ctx context.Context) ([]domain.Ingredient, error)
	ByPrefix(ctx context.Context, prefix string) ([]domain.Ingredient, error)
	ByName(ctx context.Context, name string) (*domain.Ingredient, error)
	ByID(ctx context.Context, id int64) (*domain.Ingredient, error)

	// Write operations
	Insert(ctx context.Context, ing *domain.Ingredient) (int64, error)
	Update(ctx context.Context, ing *domain.Ingredient) error
	Delete(ctx context.Context, id int64) error
}

// RecipeDAO defines data access for recipes
type RecipeDAO interface {
	All(ctx context.Context) ([]domain.Recipe, error)
	ByID(ctx context.Context, id int64) (*domain.Recipe, error)
	ByName(ctx context.Context, name string) (*domain.Recipe, error)
	Image(ctx context.Context, id int64) (string, error)

	Insert(ctx context.Context, recipe *domain.Recipe) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// RecipeIngredientDAO defines data access for the recipe/ingredient join
type RecipeIngredientDAO interface {
	ForRecipe(ctx context.Context, recipeID int64) ([]domain.IngredientWithQuantity, error)

	Insert(ctx context.Context, ri domain.RecipeIngredient) error
	Delete(ctx context.Context, recipeID, ingredientID int64) error
}

// DAOs groups the data access objects bound to one connection or transaction
type DAOs interface {
	Ingredients() IngredientDAO
	Recipes() RecipeDAO
	RecipeIngredients() RecipeIngredientDAO
}

// Store is the embedded catalog database
type Store interface {
	DAOs

	// WithTx runs fn in a single transaction. fn must only use the DAOs it
	// is given.
	WithTx(ctx context.Context, fn func(tx DAOs) error) error

	// Created reports whether the database was created when it was opened
	Created() bool

	// Close releases resources
	Close() error
}
