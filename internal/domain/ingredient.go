package domain

import (
	"fmt"
	"strings"
)

// Ingredient is a food item in the catalog
type Ingredient struct {
	ID       int64  `json:"id" db:"id"`
	ImageURI string `json:"image_uri" db:"image_uri"`
	Name     string `json:"name" db:"name"`
	Calories int    `json:"calories" db:"calories"`
}

// NewIngredient creates an unsaved ingredient
func NewIngredient(name string, calories int) *Ingredient {
	return &Ingredient{
		Name:     name,
		Calories: calories,
	}
}

// IsNew reports whether the ingredient has not been stored yet
func (i *Ingredient) IsNew() bool {
	return i.ID == 0
}

// Validate checks the fields the application requires.
// The store itself only enforces keys and references.
func (i *Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: ingredient name is required", ErrInvalid)
	}
	if i.Calories < 0 {
		return fmt.Errorf("%w: calories must not be negative", ErrInvalid)
	}
	if i.ID < 0 {
		return fmt.Errorf("%w: ingredient id must not be negative", ErrInvalid)
	}
	return nil
}
