package sqlite

import (
	"context"
	"fmt"
	"strings"

	"nutriapp/internal/repository"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Repository implements repository.Store using SQLite
type Repository struct {
	daos
	db      *sqlx.DB
	created bool
}

var _ repository.Store = (*Repository)(nil)

// New opens (and if needed creates) the catalog database at dbPath.
// Use ":memory:" for a throwaway database.
func New(dbPath string) (*Repository, error) {
	db, err := sqlx.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer. Readers queue behind an open transaction, so no reader
	// ever observes a half-applied recipe save.
	db.SetMaxOpenConns(1)

	repo := &Repository{daos: daos{q: db}, db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

// dsn appends the connection pragmas understood by the modernc driver.
// foreign_keys is per connection and must be on for cascade and restrict.
func dsn(path string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_txlock=immediate",
	}
	if !isMemory(path) {
		params = append(params, "_pragma=journal_mode(WAL)")
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:") || strings.Contains(path, "mode=memory")
}

const schema = `
CREATE TABLE IF NOT EXISTS ingredients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	image_uri TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	calories INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS recipes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	image_uri TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	steps TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
	recipe_id INTEGER NOT NULL,
	ingredient_id INTEGER NOT NULL,
	quantity TEXT NOT NULL,
	PRIMARY KEY (recipe_id, ingredient_id),
	FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE,
	FOREIGN KEY (ingredient_id) REFERENCES ingredients(id) ON DELETE RESTRICT
);

CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients(name);
CREATE INDEX IF NOT EXISTS idx_recipes_name ON recipes(name);
CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_ingredient ON recipe_ingredients(ingredient_id);
`

func (r *Repository) migrate() error {
	var existing int
	if err := r.db.Get(&existing, `
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'ingredients'
	`); err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	r.created = existing == 0

	if _, err := r.db.Exec(schema); err != nil {
		return err
	}

	var fk int
	if err := r.db.Get(&fk, `PRAGMA foreign_keys`); err != nil {
		return fmt.Errorf("failed to read foreign_keys pragma: %w", err)
	}
	if fk != 1 {
		return fmt.Errorf("foreign key enforcement is disabled")
	}
	return nil
}

// Created reports whether the schema was created by this open
func (r *Repository) Created() bool {
	return r.created
}

// WithTx runs fn inside one transaction. Any error from fn, or a panic,
// rolls the whole transaction back.
func (r *Repository) WithTx(ctx context.Context, fn func(tx repository.DAOs) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(daos{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for tests and diagnostics
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// daos binds the data access objects to a connection or a transaction
type daos struct {
	q sqlx.ExtContext
}

func (d daos) Ingredients() repository.IngredientDAO {
	return &IngredientDAO{q: d.q}
}

func (d daos) Recipes() repository.RecipeDAO {
	return &RecipeDAO{q: d.q}
}

func (d daos) RecipeIngredients() repository.RecipeIngredientDAO {
	return &RecipeIngredientDAO{q: d.q}
}
