package service

import (
	"context"
	"fmt"
	"log"

	"nutriapp/internal/domain"
	"nutriapp/internal/live"
	"nutriapp/internal/repository"
)

// Failure messages shown to the user
const (
	msgInsertionFailed = "Insertion failed"
	msgDeleteFailed    = "delete failed with error: %v"
	msgUpdateFailed    = "update failed with error: %v"
	msgInsertFailed    = "insert failed with error: %v"
	msgImportFailed    = "import failed with error: %v"
)

// Write operation names, used for logs and metrics
const (
	opInsertIngredient       = "insert_ingredient"
	opUpdateIngredient       = "update_ingredient"
	opDeleteIngredient       = "delete_ingredient"
	opSaveRecipe             = "save_recipe"
	opDeleteRecipe           = "delete_recipe"
	opInsertRecipeIngredient = "insert_recipe_ingredient"
	opDeleteRecipeIngredient = "delete_recipe_ingredient"
	opImportCatalog          = "import_catalog"
	opSeedDefaults           = "seed_defaults"
)

// CatalogService is the repository layer over the catalog store. Reads are
// served directly or as live queries; every write goes through the Writer
// and returns an Operation.
type CatalogService struct {
	store    repository.Store
	registry *live.Registry
	writer   *Writer
	eventBus *EventBus
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store repository.Store, registry *live.Registry, writer *Writer, eventBus *EventBus) *CatalogService {
	return &CatalogService{
		store:    store,
		registry: registry,
		writer:   writer,
		eventBus: eventBus,
	}
}

// write describes a queued change
type write struct {
	name    string
	tables  []domain.Table
	event   EventType
	payload func(id int64) interface{}
	failure func(err error) string
	run     func(ctx context.Context) (int64, error)
}

// submit queues w. Once it commits, live queries reading its tables re-run
// and an event is published.
func (s *CatalogService) submit(w write) *Operation {
	return s.writer.Submit(w.name, w.run, w.failure, func(id int64) {
		s.registry.Notify(w.tables...)

		var payload interface{}
		if w.payload != nil {
			payload = w.payload(id)
		}
		s.eventBus.Publish(Event{
			Type:    w.event,
			Tables:  w.tables,
			Payload: payload,
		})
	})
}

func formatted(format string) func(err error) string {
	return func(err error) string {
		return fmt.Sprintf(format, err)
	}
}

func constant(message string) func(err error) string {
	return func(error) string {
		return message
	}
}

func idPayload(key string) func(id int64) interface{} {
	return func(id int64) interface{} {
		return map[string]int64{key: id}
	}
}

// ============================================================================
// Ingredient writes
// ============================================================================

// InsertIngredient stores a new ingredient. The result carries the
// assigned id.
func (s *CatalogService) InsertIngredient(ing domain.Ingredient) *Operation {
	if err := ing.Validate(); err != nil {
		return s.writer.Reject(opInsertIngredient, fmt.Sprintf(msgInsertFailed, err), err)
	}

	return s.submit(write{
		name:    opInsertIngredient,
		tables:  []domain.Table{domain.TableIngredients},
		event:   EventIngredientCreated,
		payload: idPayload("ingredient_id"),
		failure: formatted(msgInsertFailed),
		run: func(ctx context.Context) (int64, error) {
			return s.store.Ingredients().Insert(ctx, &ing)
		},
	})
}

// UpdateIngredient replaces every field of the ingredient with the given id
func (s *CatalogService) UpdateIngredient(ing domain.Ingredient) *Operation {
	if err := validateStored(ing.ID, ing.Validate()); err != nil {
		return s.writer.Reject(opUpdateIngredient, fmt.Sprintf(msgUpdateFailed, err), err)
	}

	return s.submit(write{
		name:    opUpdateIngredient,
		tables:  []domain.Table{domain.TableIngredients},
		event:   EventIngredientUpdated,
		payload: idPayload("ingredient_id"),
		failure: formatted(msgUpdateFailed),
		run: func(ctx context.Context) (int64, error) {
			return ing.ID, s.store.Ingredients().Update(ctx, &ing)
		},
	})
}

// DeleteIngredient removes the ingredient. It fails while any recipe still
// uses it.
func (s *CatalogService) DeleteIngredient(ing domain.Ingredient) *Operation {
	if err := validateStored(ing.ID, nil); err != nil {
		return s.writer.Reject(opDeleteIngredient, fmt.Sprintf(msgDeleteFailed, err), err)
	}

	return s.submit(write{
		name:    opDeleteIngredient,
		tables:  []domain.Table{domain.TableIngredients},
		event:   EventIngredientDeleted,
		payload: idPayload("ingredient_id"),
		failure: formatted(msgDeleteFailed),
		run: func(ctx context.Context) (int64, error) {
			return ing.ID, s.store.Ingredients().Delete(ctx, ing.ID)
		},
	})
}

// ============================================================================
// Recipe writes
// ============================================================================

// SaveRecipe stores the recipe together with its complete ingredient list in
// one transaction. A recipe with a non-zero id replaces the stored one and
// keeps its id; its previous ingredient rows go with it. Any failure leaves
// the store unchanged.
func (s *CatalogService) SaveRecipe(recipe domain.Recipe, items []domain.IngredientQuantity) *Operation {
	if err := recipe.Validate(); err != nil {
		return s.writer.Reject(opSaveRecipe, msgInsertionFailed, err)
	}

	items = append([]domain.IngredientQuantity(nil), items...)
	return s.submit(write{
		name:    opSaveRecipe,
		tables:  []domain.Table{domain.TableRecipes, domain.TableRecipeIngredients},
		event:   EventRecipeSaved,
		payload: idPayload("recipe_id"),
		failure: constant(msgInsertionFailed),
		run: func(ctx context.Context) (int64, error) {
			var id int64
			err := s.store.WithTx(ctx, func(tx repository.DAOs) error {
				var err error
				id, err = saveRecipe(ctx, tx, recipe, items)
				return err
			})
			return id, err
		},
	})
}

// saveRecipe runs the composite save inside tx and returns the recipe id
func saveRecipe(ctx context.Context, tx repository.DAOs, recipe domain.Recipe, items []domain.IngredientQuantity) (int64, error) {
	if !recipe.IsNew() {
		// Cascade removes the old ingredient rows
		if err := tx.Recipes().Delete(ctx, recipe.ID); err != nil {
			return 0, err
		}
	}

	id, err := tx.Recipes().Insert(ctx, &recipe)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		err := tx.RecipeIngredients().Insert(ctx, domain.RecipeIngredient{
			RecipeID:     id,
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
		})
		if err != nil {
			return 0, fmt.Errorf("ingredient %d: %w", item.IngredientID, err)
		}
	}

	return id, nil
}

// DeleteRecipe removes the recipe and, by cascade, its ingredient rows
func (s *CatalogService) DeleteRecipe(recipe domain.Recipe) *Operation {
	if err := validateStored(recipe.ID, nil); err != nil {
		return s.writer.Reject(opDeleteRecipe, fmt.Sprintf(msgDeleteFailed, err), err)
	}

	return s.submit(write{
		name:    opDeleteRecipe,
		tables:  []domain.Table{domain.TableRecipes, domain.TableRecipeIngredients},
		event:   EventRecipeDeleted,
		payload: idPayload("recipe_id"),
		failure: formatted(msgDeleteFailed),
		run: func(ctx context.Context) (int64, error) {
			return recipe.ID, s.store.Recipes().Delete(ctx, recipe.ID)
		},
	})
}

// InsertRecipeIngredient adds one ingredient line to a stored recipe
func (s *CatalogService) InsertRecipeIngredient(ri domain.RecipeIngredient) *Operation {
	if ri.RecipeID <= 0 || ri.IngredientID <= 0 {
		err := fmt.Errorf("%w: recipe and ingredient ids are required", domain.ErrInvalid)
		return s.writer.Reject(opInsertRecipeIngredient, msgInsertionFailed, err)
	}

	return s.submit(write{
		name:   opInsertRecipeIngredient,
		tables: []domain.Table{domain.TableRecipeIngredients},
		event:  EventRecipeIngredientAdded,
		payload: func(int64) interface{} {
			return ri
		},
		failure: constant(msgInsertionFailed),
		run: func(ctx context.Context) (int64, error) {
			return ri.RecipeID, s.store.RecipeIngredients().Insert(ctx, ri)
		},
	})
}

// DeleteRecipeIngredient removes one ingredient line from a recipe
func (s *CatalogService) DeleteRecipeIngredient(recipeID, ingredientID int64) *Operation {
	if recipeID <= 0 || ingredientID <= 0 {
		err := fmt.Errorf("%w: recipe and ingredient ids are required", domain.ErrInvalid)
		return s.writer.Reject(opDeleteRecipeIngredient, fmt.Sprintf(msgDeleteFailed, err), err)
	}

	return s.submit(write{
		name:   opDeleteRecipeIngredient,
		tables: []domain.Table{domain.TableRecipeIngredients},
		event:  EventRecipeIngredientRemoved,
		payload: func(int64) interface{} {
			return map[string]int64{"recipe_id": recipeID, "ingredient_id": ingredientID}
		},
		failure: formatted(msgDeleteFailed),
		run: func(ctx context.Context) (int64, error) {
			return recipeID, s.store.RecipeIngredients().Delete(ctx, recipeID, ingredientID)
		},
	})
}

// ============================================================================
// Seeding
// ============================================================================

// DefaultIngredients are stored when a new database is created
var DefaultIngredients = []domain.Ingredient{
	{Name: "onion", Calories: 100},
}

// SeedDefaults stores DefaultIngredients if the database was created by this
// run. On an existing database it succeeds without writing.
func (s *CatalogService) SeedDefaults() *Operation {
	if !s.store.Created() {
		op := newOperation(opSeedDefaults)
		op.succeed(0)
		return op
	}

	return s.submit(write{
		name:    opSeedDefaults,
		tables:  []domain.Table{domain.TableIngredients},
		event:   EventIngredientCreated,
		payload: func(int64) interface{} { return map[string]int{"count": len(DefaultIngredients)} },
		failure: formatted(msgInsertFailed),
		run: func(ctx context.Context) (int64, error) {
			err := s.store.WithTx(ctx, func(tx repository.DAOs) error {
				for _, ing := range DefaultIngredients {
					if _, err := tx.Ingredients().Insert(ctx, &ing); err != nil {
						return err
					}
				}
				return nil
			})
			if err == nil {
				log.Printf("Seeded %d default ingredients", len(DefaultIngredients))
			}
			return 0, err
		},
	})
}

// validateStored checks that a write targets a stored record
func validateStored(id int64, err error) error {
	if err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("%w: id is required", domain.ErrInvalid)
	}
	return nil
}
