package handler

import (
	"encoding/json"
	"net/http"

	"nutriapp/internal/domain"
)

// SaveRecipeRequest is the body of a recipe create or update: the recipe
// fields plus its complete ingredient list
type SaveRecipeRequest struct {
	domain.Recipe
	Ingredients []domain.IngredientQuantity `json:"ingredients"`
}

// ImageResponse carries a recipe's image URI
type ImageResponse struct {
	RecipeID int64  `json:"recipe_id"`
	ImageURI string `json:"image_uri"`
}

// ListRecipes returns all recipes
func (h *CatalogHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.svc.ListRecipes(r.Context())
	if err != nil {
		h.writeFailure(w, "Failed to list recipes", err)
		return
	}

	h.writeJSON(w, recipes, http.StatusOK)
}

// GetRecipe returns a single recipe
func (h *CatalogHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid recipe ID", err.Error(), http.StatusBadRequest)
		return
	}

	recipe, err := h.svc.GetRecipe(r.Context(), id)
	if err != nil {
		h.writeFailure(w, "Failed to get recipe", err)
		return
	}

	h.writeJSON(w, recipe, http.StatusOK)
}

// CreateRecipe saves a new recipe with its ingredient list
func (h *CatalogHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req SaveRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	req.Recipe.ID = 0

	res, ok := h.awaitWrite(w, r, h.svc.SaveRecipe(req.Recipe, req.Ingredients))
	if !ok {
		return
	}

	req.Recipe.ID = res.ID
	h.writeJSON(w, req.Recipe, http.StatusCreated)
}

// UpdateRecipe replaces a recipe and its whole ingredient list
func (h *CatalogHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid recipe ID", err.Error(), http.StatusBadRequest)
		return
	}

	var req SaveRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	req.Recipe.ID = id // Ensure ID matches path

	if _, ok := h.awaitWrite(w, r, h.svc.SaveRecipe(req.Recipe, req.Ingredients)); !ok {
		return
	}

	h.writeJSON(w, req.Recipe, http.StatusOK)
}

// DeleteRecipe removes a recipe and its ingredient lines
func (h *CatalogHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid recipe ID", err.Error(), http.StatusBadRequest)
		return
	}

	if _, ok := h.awaitWrite(w, r, h.svc.DeleteRecipe(domain.Recipe{ID: id})); !ok {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetRecipeImage returns the recipe's image URI, empty when it has none
func (h *CatalogHandler) GetRecipeImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid recipe ID", err.Error(), http.StatusBadRequest)
		return
	}

	uri, err := h.svc.RecipeImage(r.Context(), id)
	if err != nil {
		h.writeFailure(w, "Failed to get recipe image", err)
		return
	}

	h.writeJSON(w, ImageResponse{RecipeID: id, ImageURI: uri}, http.StatusOK)
}

// ListRecipeIngredients returns the recipe's ingredients with quantities
func (h *CatalogHandler) ListRecipeIngredients(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid recipe ID", err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.svc.IngredientsForRecipe(r.Context(), id)
	if err != nil {
		h.writeFailure(w, "Failed to list recipe ingredients", err)
		return
	}

	h.writeJSON(w, items, http.StatusOK)
}

// AddRecipeIngredient links one more ingredient to a recipe
func (h *CatalogHandler) AddRecipeIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid recipe ID", err.Error(), http.StatusBadRequest)
		return
	}

	var line domain.IngredientQuantity
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	ri := domain.RecipeIngredient{RecipeID: id, IngredientID: line.IngredientID, Quantity: line.Quantity}
	if _, ok := h.awaitWrite(w, r, h.svc.InsertRecipeIngredient(ri)); !ok {
		return
	}

	h.writeJSON(w, ri, http.StatusCreated)
}

// RemoveRecipeIngredient unlinks one ingredient from a recipe
func (h *CatalogHandler) RemoveRecipeIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid recipe ID", err.Error(), http.StatusBadRequest)
		return
	}
	ingredientID, err := pathID(r, "ingredient_id")
	if err != nil {
		h.writeError(w, "Invalid ingredient ID", err.Error(), http.StatusBadRequest)
		return
	}

	if _, ok := h.awaitWrite(w, r, h.svc.DeleteRecipeIngredient(id, ingredientID)); !ok {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
