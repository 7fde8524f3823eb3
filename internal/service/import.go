package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"nutriapp/internal/codec"
	"nutriapp/internal/domain"
	"nutriapp/internal/repository"
)

// ImportResult represents the result of an import operation
type ImportResult struct {
	IngredientsCreated int    `json:"ingredients_created"`
	IngredientsUpdated int    `json:"ingredients_updated"`
	RecipesCreated     int    `json:"recipes_created"`
	RecipesUpdated     int    `json:"recipes_updated"`
	Source             string `json:"source,omitempty"`
}

// ImportCatalog merges a catalog into the store in one transaction and waits
// for it to commit. Ingredients and recipes are matched by name: matches
// are replaced in place, the rest are inserted. Recipe lines may name
// ingredients from the catalog or already in the store.
func (s *CatalogService) ImportCatalog(ctx context.Context, catalog *domain.Catalog, source string) (*ImportResult, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	result := &ImportResult{Source: source}
	op := s.submit(write{
		name: opImportCatalog,
		tables: []domain.Table{
			domain.TableIngredients,
			domain.TableRecipes,
			domain.TableRecipeIngredients,
		},
		event:   EventCatalogImported,
		payload: func(int64) interface{} { return result },
		failure: formatted(msgImportFailed),
		run: func(ctx context.Context) (int64, error) {
			return 0, s.store.WithTx(ctx, func(tx repository.DAOs) error {
				return importCatalog(ctx, tx, catalog, result)
			})
		},
	})

	res, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("import did not finish: %w", err)
	}
	if !res.OK() {
		return nil, res.Err
	}

	log.Printf("Imported catalog from %s: %d/%d ingredients created/updated, %d/%d recipes created/updated",
		sourceOrDefault(source), result.IngredientsCreated, result.IngredientsUpdated,
		result.RecipesCreated, result.RecipesUpdated)
	return result, nil
}

// ImportFrom parses r with the named format and imports the result
func (s *CatalogService) ImportFrom(ctx context.Context, format string, r io.Reader, source string) (*ImportResult, error) {
	c, err := codec.Lookup(format)
	if err != nil {
		return nil, err
	}
	catalog, err := c.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	return s.ImportCatalog(ctx, catalog, source)
}

func importCatalog(ctx context.Context, tx repository.DAOs, catalog *domain.Catalog, result *ImportResult) error {
	ids := make(map[string]int64, len(catalog.Ingredients))

	for _, ing := range catalog.Ingredients {
		existing, err := tx.Ingredients().ByName(ctx, ing.Name)
		if err != nil {
			return err
		}

		if existing != nil {
			ing.ID = existing.ID
			if err := tx.Ingredients().Update(ctx, &ing); err != nil {
				return err
			}
			result.IngredientsUpdated++
		} else {
			ing.ID = 0
			id, err := tx.Ingredients().Insert(ctx, &ing)
			if err != nil {
				return err
			}
			ing.ID = id
			result.IngredientsCreated++
		}
		ids[ing.Name] = ing.ID
	}

	for _, cr := range catalog.Recipes {
		items := make([]domain.IngredientQuantity, 0, len(cr.Ingredients))
		for _, line := range cr.Ingredients {
			id, ok := ids[line.Ingredient]
			if !ok {
				stored, err := tx.Ingredients().ByName(ctx, line.Ingredient)
				if err != nil {
					return err
				}
				if stored == nil {
					return fmt.Errorf("recipe %q uses unknown ingredient %q: %w",
						cr.Name, line.Ingredient, domain.ErrMissingReference)
				}
				id = stored.ID
				ids[line.Ingredient] = id
			}
			items = append(items, domain.IngredientQuantity{IngredientID: id, Quantity: line.Quantity})
		}

		recipe := domain.Recipe{Name: cr.Name, Steps: cr.Steps, ImageURI: cr.ImageURI}
		existing, err := tx.Recipes().ByName(ctx, cr.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			recipe.ID = existing.ID
			result.RecipesUpdated++
		} else {
			result.RecipesCreated++
		}

		if _, err := saveRecipe(ctx, tx, recipe, items); err != nil {
			return fmt.Errorf("recipe %q: %w", cr.Name, err)
		}
	}

	return nil
}

// ExportCatalog reads the whole store as a portable catalog. The read runs in
// one transaction so the catalog is consistent.
func (s *CatalogService) ExportCatalog(ctx context.Context) (*domain.Catalog, error) {
	catalog := domain.NewCatalog()

	err := s.store.WithTx(ctx, func(tx repository.DAOs) error {
		ingredients, err := tx.Ingredients().All(ctx)
		if err != nil {
			return err
		}
		catalog.Ingredients = ingredients

		recipes, err := tx.Recipes().All(ctx)
		if err != nil {
			return err
		}
		for _, r := range recipes {
			items, err := tx.RecipeIngredients().ForRecipe(ctx, r.ID)
			if err != nil {
				return err
			}
			cr := domain.CatalogRecipe{ImageURI: r.ImageURI, Name: r.Name, Steps: r.Steps}
			for _, item := range items {
				cr.Ingredients = append(cr.Ingredients, domain.CatalogQuantity{
					Ingredient: item.Ingredient.Name,
					Quantity:   item.Quantity,
				})
			}
			catalog.Recipes = append(catalog.Recipes, cr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export catalog: %w", err)
	}

	return catalog, nil
}

// ExportTo writes the catalog in the named format
func (s *CatalogService) ExportTo(ctx context.Context, format string, w io.Writer) error {
	c, err := codec.Lookup(format)
	if err != nil {
		return err
	}
	catalog, err := s.ExportCatalog(ctx)
	if err != nil {
		return err
	}
	return c.Export(catalog, w)
}

func sourceOrDefault(source string) string {
	if source == "" {
		return "request"
	}
	return source
}
