package codec

import (
	"errors"
	"fmt"
	"io"

	"nutriapp/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the HTTP media type for the format
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlCatalog represents the YAML structure for a catalog
type yamlCatalog struct {
	Ingredients []yamlIngredient `yaml:"ingredients"`
	Recipes     []yamlRecipe     `yaml:"recipes"`
}

type yamlIngredient struct {
	Name     string `yaml:"name"`
	Calories int    `yaml:"calories"`
	Image    string `yaml:"image,omitempty"`
}

type yamlRecipe struct {
	Name        string         `yaml:"name"`
	Image       string         `yaml:"image,omitempty"`
	Steps       string         `yaml:"steps"`
	Ingredients []yamlQuantity `yaml:"ingredients,omitempty"`
}

type yamlQuantity struct {
	Ingredient string `yaml:"ingredient"`
	Quantity   string `yaml:"quantity"`
}

// Parse imports a catalog from YAML. An empty document yields an empty catalog.
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Catalog, error) {
	var yc yamlCatalog
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&yc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	catalog := domain.NewCatalog()

	for _, yi := range yc.Ingredients {
		catalog.Ingredients = append(catalog.Ingredients, domain.Ingredient{
			Name:     yi.Name,
			Calories: yi.Calories,
			ImageURI: yi.Image,
		})
	}

	for _, yr := range yc.Recipes {
		cr := domain.CatalogRecipe{
			Name:     yr.Name,
			ImageURI: yr.Image,
			Steps:    yr.Steps,
		}
		for _, yq := range yr.Ingredients {
			cr.Ingredients = append(cr.Ingredients, domain.CatalogQuantity{
				Ingredient: yq.Ingredient,
				Quantity:   yq.Quantity,
			})
		}
		catalog.Recipes = append(catalog.Recipes, cr)
	}

	return catalog, nil
}

// Export exports a catalog to YAML
func (c *YAMLCodec) Export(catalog *domain.Catalog, w io.Writer) error {
	yc := yamlCatalog{
		Ingredients: make([]yamlIngredient, 0, len(catalog.Ingredients)),
		Recipes:     make([]yamlRecipe, 0, len(catalog.Recipes)),
	}

	for _, ing := range catalog.Ingredients {
		yc.Ingredients = append(yc.Ingredients, yamlIngredient{
			Name:     ing.Name,
			Calories: ing.Calories,
			Image:    ing.ImageURI,
		})
	}

	for _, cr := range catalog.Recipes {
		yr := yamlRecipe{
			Name:  cr.Name,
			Image: cr.ImageURI,
			Steps: cr.Steps,
		}
		for _, line := range cr.Ingredients {
			yr.Ingredients = append(yr.Ingredients, yamlQuantity{
				Ingredient: line.Ingredient,
				Quantity:   line.Quantity,
			})
		}
		yc.Recipes = append(yc.Recipes, yr)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
