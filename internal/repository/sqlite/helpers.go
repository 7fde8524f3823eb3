package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"nutriapp/internal/domain"

	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// ============================================================================
// Error Classification
// ============================================================================

// fkMeaning tells classify what a foreign key failure means for the statement
// that raised it: a delete hit a restricting reference, an insert pointed at
// a missing parent.
type fkMeaning int

const (
	fkReferenced fkMeaning = iota
	fkMissing
)

// classify wraps err with op context and maps SQLite constraint codes onto
// the domain sentinels so callers can use errors.Is
func classify(err error, op string, fk fkMeaning) error {
	if err == nil {
		return nil
	}

	switch constraintKind(err) {
	case sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlitelib.SQLITE_CONSTRAINT_UNIQUE:
		return fmt.Errorf("failed to %s: %w: %v", op, domain.ErrDuplicate, err)
	case sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY:
		if fk == fkMissing {
			return fmt.Errorf("failed to %s: %w: %v", op, domain.ErrMissingReference, err)
		}
		return fmt.Errorf("failed to %s: %w: %v", op, domain.ErrReferenced, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// constraintKind returns the extended SQLite constraint code for err, or 0
// when err is not a constraint violation
func constraintKind(err error) int {
	var se *moderncsqlite.Error
	if !errors.As(err, &se) {
		return 0
	}

	code := se.Code()
	switch code {
	case sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlitelib.SQLITE_CONSTRAINT_UNIQUE,
		sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return code
	}
	if code&0xff != sqlitelib.SQLITE_CONSTRAINT {
		return 0
	}

	// Primary result code only; fall back to the message
	msg := se.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY"):
		return sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY
	case strings.Contains(msg, "UNIQUE"), strings.Contains(msg, "PRIMARY KEY"):
		return sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return 0
}

// notFound builds the error returned when a keyed write matched no row
func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
}

// requireAffected turns a zero-row update or delete into ErrNotFound
func requireAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

// ============================================================================
// Query Helpers
// ============================================================================

// likePrefix builds a LIKE pattern matching names that start with prefix.
// Wildcards in the prefix match literally; queries must use ESCAPE '\'.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

// ingredientColumns is the SELECT column list for ingredient queries
const ingredientColumns = `id, image_uri, name, calories`

// recipeColumns is the SELECT column list for recipe queries
const recipeColumns = `id, image_uri, name, steps`

// ingredientQuantityRow scans one row of the recipe/ingredient join.
// sqlx flattens the embedded ingredient columns.
type ingredientQuantityRow struct {
	domain.Ingredient
	Quantity string `db:"quantity"`
}

func (r ingredientQuantityRow) toDomain() domain.IngredientWithQuantity {
	return domain.IngredientWithQuantity{
		Ingredient: r.Ingredient,
		Quantity:   r.Quantity,
	}
}
