package sqlite

import (
	"context"
	"fmt"

	"nutriapp/internal/domain"

	"github.com/jmoiron/sqlx"
)

// RecipeIngredientDAO implements repository.RecipeIngredientDAO
type RecipeIngredientDAO struct {
	q sqlx.ExtContext
}

// ForRecipe joins the recipe's rows to their ingredients, in the order the
// rows were inserted. A recipe without ingredients yields an empty slice.
func (d *RecipeIngredientDAO) ForRecipe(ctx context.Context, recipeID int64) ([]domain.IngredientWithQuantity, error) {
	var rows []ingredientQuantityRow
	if err := sqlx.SelectContext(ctx, d.q, &rows, `
		SELECT i.id, i.image_uri, i.name, i.calories, ri.quantity
		FROM recipe_ingredients ri
		JOIN ingredients i ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = ?
		ORDER BY ri.rowid
	`, recipeID); err != nil {
		return nil, fmt.Errorf("failed to query ingredients for recipe %d: %w", recipeID, err)
	}

	items := make([]domain.IngredientWithQuantity, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

// Insert links a recipe to an ingredient. A pair that already exists fails
// with domain.ErrDuplicate; it is never overwritten.
func (d *RecipeIngredientDAO) Insert(ctx context.Context, ri domain.RecipeIngredient) error {
	_, err := d.q.ExecContext(ctx, `
		INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity) VALUES (?, ?, ?)
	`, ri.RecipeID, ri.IngredientID, ri.Quantity)
	if err != nil {
		return classify(err, fmt.Sprintf("insert recipe ingredient %s", ri.Key()), fkMissing)
	}
	return nil
}

// Delete removes one join row by its composite key
func (d *RecipeIngredientDAO) Delete(ctx context.Context, recipeID, ingredientID int64) error {
	res, err := d.q.ExecContext(ctx, `
		DELETE FROM recipe_ingredients WHERE recipe_id = ? AND ingredient_id = ?
	`, recipeID, ingredientID)
	if err != nil {
		return classify(err, "delete recipe ingredient", fkReferenced)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recipe ingredient %d:%d: %w", recipeID, ingredientID, domain.ErrNotFound)
	}
	return nil
}
