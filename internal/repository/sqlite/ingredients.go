package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nutriapp/internal/domain"

	"github.com/jmoiron/sqlx"
)

// IngredientDAO implements repository.IngredientDAO
type IngredientDAO struct {
	q sqlx.ExtContext
}

// All returns every ingredient in id order
func (d *IngredientDAO) All(ctx context.Context) ([]domain.Ingredient, error) {
	ings := make([]domain.Ingredient, 0)
	if err := sqlx.SelectContext(ctx, d.q, &ings, `
		SELECT `+ingredientColumns+` FROM ingredients ORDER BY id
	`); err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	return ings, nil
}

// ByPrefix returns ingredients whose name starts with prefix.
// Matching is case-insensitive for ASCII letters.
func (d *IngredientDAO) ByPrefix(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	ings := make([]domain.Ingredient, 0)
	if err := sqlx.SelectContext(ctx, d.q, &ings, `
		SELECT `+ingredientColumns+` FROM ingredients
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY id
	`, likePrefix(prefix)); err != nil {
		return nil, fmt.Errorf("failed to query ingredients by prefix: %w", err)
	}
	return ings, nil
}

// ByName returns the first ingredient with exactly this name, or nil
func (d *IngredientDAO) ByName(ctx context.Context, name string) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := sqlx.GetContext(ctx, d.q, &ing, `
		SELECT `+ingredientColumns+` FROM ingredients WHERE name = ? ORDER BY id LIMIT 1
	`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredient by name: %w", err)
	}
	return &ing, nil
}

// ByID returns the ingredient with id, or nil when there is none
func (d *IngredientDAO) ByID(ctx context.Context, id int64) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := sqlx.GetContext(ctx, d.q, &ing, `
		SELECT `+ingredientColumns+` FROM ingredients WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredient: %w", err)
	}
	return &ing, nil
}

// Insert stores ing and returns its id. A zero id is assigned by the store;
// a non-zero id is kept.
func (d *IngredientDAO) Insert(ctx context.Context, ing *domain.Ingredient) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if ing.IsNew() {
		res, err = d.q.ExecContext(ctx, `
			INSERT INTO ingredients (image_uri, name, calories) VALUES (?, ?, ?)
		`, ing.ImageURI, ing.Name, ing.Calories)
	} else {
		res, err = d.q.ExecContext(ctx, `
			INSERT INTO ingredients (id, image_uri, name, calories) VALUES (?, ?, ?, ?)
		`, ing.ID, ing.ImageURI, ing.Name, ing.Calories)
	}
	if err != nil {
		return 0, classify(err, "insert ingredient", fkMissing)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read ingredient id: %w", err)
	}
	return id, nil
}

// Update replaces every field of the ingredient with ing.ID
func (d *IngredientDAO) Update(ctx context.Context, ing *domain.Ingredient) error {
	res, err := d.q.ExecContext(ctx, `
		UPDATE ingredients SET image_uri = ?, name = ?, calories = ? WHERE id = ?
	`, ing.ImageURI, ing.Name, ing.Calories, ing.ID)
	if err != nil {
		return classify(err, "update ingredient", fkMissing)
	}
	return requireAffected(res, "ingredient", ing.ID)
}

// Delete removes the ingredient with id. It fails with domain.ErrReferenced
// while any recipe still uses the ingredient.
func (d *IngredientDAO) Delete(ctx context.Context, id int64) error {
	res, err := d.q.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id)
	if err != nil {
		return classify(err, "delete ingredient", fkReferenced)
	}
	return requireAffected(res, "ingredient", id)
}
