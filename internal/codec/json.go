package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"nutriapp/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the HTTP media type for the format
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// jsonCatalog mirrors domain.Catalog without store ids
type jsonCatalog struct {
	Ingredients []jsonIngredient       `json:"ingredients"`
	Recipes     []domain.CatalogRecipe `json:"recipes"`
}

type jsonIngredient struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	ImageURI string `json:"image_uri,omitempty"`
}

// Parse imports a catalog from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Catalog, error) {
	var jc jsonCatalog
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&jc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	catalog := domain.NewCatalog()
	for _, ji := range jc.Ingredients {
		catalog.Ingredients = append(catalog.Ingredients, domain.Ingredient{
			Name:     ji.Name,
			Calories: ji.Calories,
			ImageURI: ji.ImageURI,
		})
	}
	if jc.Recipes != nil {
		catalog.Recipes = jc.Recipes
	}

	return catalog, nil
}

// Export exports a catalog to JSON
func (c *JSONCodec) Export(catalog *domain.Catalog, w io.Writer) error {
	jc := jsonCatalog{
		Ingredients: make([]jsonIngredient, 0, len(catalog.Ingredients)),
		Recipes:     catalog.Recipes,
	}
	if jc.Recipes == nil {
		jc.Recipes = make([]domain.CatalogRecipe, 0)
	}
	for _, ing := range catalog.Ingredients {
		jc.Ingredients = append(jc.Ingredients, jsonIngredient{
			Name:     ing.Name,
			Calories: ing.Calories,
			ImageURI: ing.ImageURI,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(jc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
