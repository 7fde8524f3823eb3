package domain

import (
	"fmt"
	"strings"
)

// Recipe is a named procedure composed of ingredients
type Recipe struct {
	ID       int64  `json:"id" db:"id"`
	ImageURI string `json:"image_uri" db:"image_uri"`
	Name     string `json:"name" db:"name"`
	Steps    string `json:"steps" db:"steps"`
}

// NewRecipe creates an unsaved recipe
func NewRecipe(name, steps string) *Recipe {
	return &Recipe{
		Name:  name,
		Steps: steps,
	}
}

// IsNew reports whether the recipe has not been stored yet.
// Saving a new recipe skips the delete step of the composite save.
func (r *Recipe) IsNew() bool {
	return r.ID == 0
}

// Validate checks the fields the application requires
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: recipe name is required", ErrInvalid)
	}
	if r.ID < 0 {
		return fmt.Errorf("%w: recipe id must not be negative", ErrInvalid)
	}
	return nil
}

// RecipeIngredient links one recipe to one ingredient with a quantity
type RecipeIngredient struct {
	RecipeID     int64  `json:"recipe_id" db:"recipe_id"`
	IngredientID int64  `json:"ingredient_id" db:"ingredient_id"`
	Quantity     string `json:"quantity" db:"quantity"`
}

// Key returns the composite identity of the join record
func (ri RecipeIngredient) Key() string {
	return fmt.Sprintf("%d:%d", ri.RecipeID, ri.IngredientID)
}

// IngredientQuantity is one entry of the ingredient list passed to a recipe save
type IngredientQuantity struct {
	IngredientID int64  `json:"ingredient_id"`
	Quantity     string `json:"quantity"`
}

// IngredientWithQuantity pairs a full ingredient with the quantity a recipe uses
type IngredientWithQuantity struct {
	Ingredient Ingredient `json:"ingredient"`
	Quantity   string     `json:"quantity"`
}
