package handler

import (
	"encoding/json"
	"net/http"

	"nutriapp/internal/domain"
)

// ListIngredients returns all ingredients, or those matching ?prefix=
func (h *CatalogHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	var (
		ingredients []domain.Ingredient
		err         error
	)
	if r.URL.Query().Has("prefix") {
		ingredients, err = h.svc.SearchIngredients(r.Context(), r.URL.Query().Get("prefix"))
	} else {
		ingredients, err = h.svc.ListIngredients(r.Context())
	}
	if err != nil {
		h.writeFailure(w, "Failed to list ingredients", err)
		return
	}

	h.writeJSON(w, ingredients, http.StatusOK)
}

// GetIngredient returns a single ingredient
func (h *CatalogHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid ingredient ID", err.Error(), http.StatusBadRequest)
		return
	}

	ing, err := h.svc.GetIngredient(r.Context(), id)
	if err != nil {
		h.writeFailure(w, "Failed to get ingredient", err)
		return
	}

	h.writeJSON(w, ing, http.StatusOK)
}

// CreateIngredient inserts a new ingredient
func (h *CatalogHandler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	var ing domain.Ingredient
	if err := json.NewDecoder(r.Body).Decode(&ing); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	ing.ID = 0

	res, ok := h.awaitWrite(w, r, h.svc.InsertIngredient(ing))
	if !ok {
		return
	}

	ing.ID = res.ID
	h.writeJSON(w, ing, http.StatusCreated)
}

// UpdateIngredient replaces an existing ingredient
func (h *CatalogHandler) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid ingredient ID", err.Error(), http.StatusBadRequest)
		return
	}

	var ing domain.Ingredient
	if err := json.NewDecoder(r.Body).Decode(&ing); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	ing.ID = id // Ensure ID matches path

	if _, ok := h.awaitWrite(w, r, h.svc.UpdateIngredient(ing)); !ok {
		return
	}

	h.writeJSON(w, ing, http.StatusOK)
}

// DeleteIngredient removes an ingredient
func (h *CatalogHandler) DeleteIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid ingredient ID", err.Error(), http.StatusBadRequest)
		return
	}

	if _, ok := h.awaitWrite(w, r, h.svc.DeleteIngredient(domain.Ingredient{ID: id})); !ok {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
