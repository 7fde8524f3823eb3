package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nutriapp/internal/domain"

	"github.com/jmoiron/sqlx"
)

// RecipeDAO implements repository.RecipeDAO
type RecipeDAO struct {
	q sqlx.ExtContext
}

// All returns every recipe in id order
func (d *RecipeDAO) All(ctx context.Context) ([]domain.Recipe, error) {
	recipes := make([]domain.Recipe, 0)
	if err := sqlx.SelectContext(ctx, d.q, &recipes, `
		SELECT `+recipeColumns+` FROM recipes ORDER BY id
	`); err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	return recipes, nil
}

// ByID returns the recipe with id, or nil when there is none
func (d *RecipeDAO) ByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := sqlx.GetContext(ctx, d.q, &recipe, `
		SELECT `+recipeColumns+` FROM recipes WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe: %w", err)
	}
	return &recipe, nil
}

// ByName returns the first recipe with exactly this name, or nil
func (d *RecipeDAO) ByName(ctx context.Context, name string) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := sqlx.GetContext(ctx, d.q, &recipe, `
		SELECT `+recipeColumns+` FROM recipes WHERE name = ? ORDER BY id LIMIT 1
	`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe by name: %w", err)
	}
	return &recipe, nil
}

// Image returns the image URI of the recipe, or "" when there is no such recipe
func (d *RecipeDAO) Image(ctx context.Context, id int64) (string, error) {
	var uri string
	err := sqlx.GetContext(ctx, d.q, &uri, `SELECT image_uri FROM recipes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query recipe image: %w", err)
	}
	return uri, nil
}

// Insert stores recipe and returns its id. A non-zero id is kept, which is
// how a replaced recipe keeps its identity.
func (d *RecipeDAO) Insert(ctx context.Context, recipe *domain.Recipe) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if recipe.IsNew() {
		res, err = d.q.ExecContext(ctx, `
			INSERT INTO recipes (image_uri, name, steps) VALUES (?, ?, ?)
		`, recipe.ImageURI, recipe.Name, recipe.Steps)
	} else {
		res, err = d.q.ExecContext(ctx, `
			INSERT INTO recipes (id, image_uri, name, steps) VALUES (?, ?, ?, ?)
		`, recipe.ID, recipe.ImageURI, recipe.Name, recipe.Steps)
	}
	if err != nil {
		return 0, classify(err, "insert recipe", fkMissing)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read recipe id: %w", err)
	}
	return id, nil
}

// Delete removes the recipe with id.
// Its recipe_ingredients rows are removed by ON DELETE CASCADE.
func (d *RecipeDAO) Delete(ctx context.Context, id int64) error {
	res, err := d.q.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return classify(err, "delete recipe", fkReferenced)
	}
	return requireAffected(res, "recipe", id)
}
