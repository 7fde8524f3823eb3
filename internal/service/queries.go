package service

import (
	"context"
	"fmt"

	"nutriapp/internal/domain"
	"nutriapp/internal/live"
)

// Live query names, used for logs and metrics
const (
	queryAllIngredients       = "all_ingredients"
	queryAllRecipes           = "all_recipes"
	queryIngredientsByPrefix  = "ingredients_by_prefix"
	queryIngredientByID       = "ingredient_by_id"
	queryRecipeByID           = "recipe_by_id"
	queryIngredientsForRecipe = "ingredients_for_recipe"
	queryRecipeImage          = "recipe_image"
)

// ObserveAllIngredients streams every ingredient in id order
func (s *CatalogService) ObserveAllIngredients(ctx context.Context) *live.Subscription[[]domain.Ingredient] {
	return live.Watch(ctx, s.registry, queryAllIngredients, s.ListIngredients,
		domain.TableIngredients)
}

// ObserveAllRecipes streams every recipe in id order
func (s *CatalogService) ObserveAllRecipes(ctx context.Context) *live.Subscription[[]domain.Recipe] {
	return live.Watch(ctx, s.registry, queryAllRecipes, s.ListRecipes,
		domain.TableRecipes)
}

// ObserveIngredientsByPrefix streams ingredients whose name starts with
// prefix, ignoring ASCII case
func (s *CatalogService) ObserveIngredientsByPrefix(ctx context.Context, prefix string) *live.Subscription[[]domain.Ingredient] {
	return live.Watch(ctx, s.registry, queryIngredientsByPrefix,
		func(ctx context.Context) ([]domain.Ingredient, error) {
			return s.SearchIngredients(ctx, prefix)
		},
		domain.TableIngredients)
}

// ObserveIngredientByID streams one ingredient, nil while it does not exist
func (s *CatalogService) ObserveIngredientByID(ctx context.Context, id int64) *live.Subscription[*domain.Ingredient] {
	return live.Watch(ctx, s.registry, queryIngredientByID,
		func(ctx context.Context) (*domain.Ingredient, error) {
			return s.store.Ingredients().ByID(ctx, id)
		},
		domain.TableIngredients)
}

// ObserveRecipeByID streams one recipe, nil while it does not exist
func (s *CatalogService) ObserveRecipeByID(ctx context.Context, id int64) *live.Subscription[*domain.Recipe] {
	return live.Watch(ctx, s.registry, queryRecipeByID,
		func(ctx context.Context) (*domain.Recipe, error) {
			return s.store.Recipes().ByID(ctx, id)
		},
		domain.TableRecipes)
}

// ObserveIngredientsForRecipe streams a recipe's ingredient list. It re-runs
// when the list changes and when any ingredient is edited.
func (s *CatalogService) ObserveIngredientsForRecipe(ctx context.Context, recipeID int64) *live.Subscription[[]domain.IngredientWithQuantity] {
	return live.Watch(ctx, s.registry, queryIngredientsForRecipe,
		func(ctx context.Context) ([]domain.IngredientWithQuantity, error) {
			return s.IngredientsForRecipe(ctx, recipeID)
		},
		domain.TableRecipeIngredients, domain.TableIngredients)
}

// ObserveRecipeImage streams a recipe's image URI, empty when it has none
func (s *CatalogService) ObserveRecipeImage(ctx context.Context, recipeID int64) *live.Subscription[string] {
	return live.Watch(ctx, s.registry, queryRecipeImage,
		func(ctx context.Context) (string, error) {
			return s.store.Recipes().Image(ctx, recipeID)
		},
		domain.TableRecipes)
}

// ListIngredients returns every ingredient in id order
func (s *CatalogService) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	return s.store.Ingredients().All(ctx)
}

// SearchIngredients returns ingredients whose name starts with prefix
func (s *CatalogService) SearchIngredients(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	return s.store.Ingredients().ByPrefix(ctx, prefix)
}

// GetIngredient retrieves a single ingredient by ID
func (s *CatalogService) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	ing, err := s.store.Ingredients().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, fmt.Errorf("ingredient %d: %w", id, domain.ErrNotFound)
	}
	return ing, nil
}

// ListRecipes returns every recipe in id order
func (s *CatalogService) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	return s.store.Recipes().All(ctx)
}

// GetRecipe retrieves a single recipe by ID
func (s *CatalogService) GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	recipe, err := s.store.Recipes().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, fmt.Errorf("recipe %d: %w", id, domain.ErrNotFound)
	}
	return recipe, nil
}

// IngredientsForRecipe returns the recipe's ingredients with quantities.
// A recipe without ingredients, or an unknown recipe, yields an empty list.
func (s *CatalogService) IngredientsForRecipe(ctx context.Context, recipeID int64) ([]domain.IngredientWithQuantity, error) {
	return s.store.RecipeIngredients().ForRecipe(ctx, recipeID)
}

// RecipeImage returns the recipe's image URI
func (s *CatalogService) RecipeImage(ctx context.Context, recipeID int64) (string, error) {
	return s.store.Recipes().Image(ctx, recipeID)
}
