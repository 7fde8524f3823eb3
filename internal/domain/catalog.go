package domain

import "fmt"

// Catalog is the portable form of the data set
type Catalog struct {
	Ingredients []Ingredient    `json:"ingredients"`
	Recipes     []CatalogRecipe `json:"recipes"`
}

// CatalogRecipe is a recipe whose ingredient list references ingredients by name
type CatalogRecipe struct {
	ImageURI    string            `json:"image_uri,omitempty"`
	Name        string            `json:"name"`
	Steps       string            `json:"steps"`
	Ingredients []CatalogQuantity `json:"ingredients,omitempty"`
}

// CatalogQuantity is one ingredient line of a catalog recipe
type CatalogQuantity struct {
	Ingredient string `json:"ingredient"`
	Quantity   string `json:"quantity"`
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		Ingredients: make([]Ingredient, 0),
		Recipes:     make([]CatalogRecipe, 0),
	}
}

// Validate checks that every record is valid and that names are unique
// within the catalog. Recipe lines may reference ingredients that are not
// in the catalog; those must already exist in the store at import time.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Ingredients))
	for i := range c.Ingredients {
		ing := c.Ingredients[i]
		ing.ID = 0
		if err := ing.Validate(); err != nil {
			return fmt.Errorf("ingredient %d: %w", i, err)
		}
		if seen[ing.Name] {
			return fmt.Errorf("%w: ingredient %q listed twice", ErrInvalid, ing.Name)
		}
		seen[ing.Name] = true
	}

	recipes := make(map[string]bool, len(c.Recipes))
	for i, cr := range c.Recipes {
		r := Recipe{Name: cr.Name, Steps: cr.Steps}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("recipe %d: %w", i, err)
		}
		if recipes[cr.Name] {
			return fmt.Errorf("%w: recipe %q listed twice", ErrInvalid, cr.Name)
		}
		recipes[cr.Name] = true
		for _, line := range cr.Ingredients {
			if line.Ingredient == "" {
				return fmt.Errorf("%w: recipe %q has a line without ingredient", ErrInvalid, cr.Name)
			}
		}
	}
	return nil
}
