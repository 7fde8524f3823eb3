package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"nutriapp/internal/domain"
	"nutriapp/internal/service"
)

// CatalogHandler handles catalog API requests
type CatalogHandler struct {
	svc *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Register wires the catalog routes into mux
func (h *CatalogHandler) Register(mux *http.ServeMux) {
	// Ingredients
	mux.HandleFunc("GET /api/ingredients", h.ListIngredients)
	mux.HandleFunc("POST /api/ingredients", h.CreateIngredient)
	mux.HandleFunc("GET /api/ingredients/{id}", h.GetIngredient)
	mux.HandleFunc("PUT /api/ingredients/{id}", h.UpdateIngredient)
	mux.HandleFunc("DELETE /api/ingredients/{id}", h.DeleteIngredient)

	// Recipes
	mux.HandleFunc("GET /api/recipes", h.ListRecipes)
	mux.HandleFunc("POST /api/recipes", h.CreateRecipe)
	mux.HandleFunc("GET /api/recipes/{id}", h.GetRecipe)
	mux.HandleFunc("PUT /api/recipes/{id}", h.UpdateRecipe)
	mux.HandleFunc("DELETE /api/recipes/{id}", h.DeleteRecipe)
	mux.HandleFunc("GET /api/recipes/{id}/image", h.GetRecipeImage)

	// Recipe ingredient lines
	mux.HandleFunc("GET /api/recipes/{id}/ingredients", h.ListRecipeIngredients)
	mux.HandleFunc("POST /api/recipes/{id}/ingredients", h.AddRecipeIngredient)
	mux.HandleFunc("DELETE /api/recipes/{id}/ingredients/{ingredient_id}", h.RemoveRecipeIngredient)

	// Import/Export
	mux.HandleFunc("POST /api/import/{format}", h.Import)
	mux.HandleFunc("GET /api/export/{format}", h.Export)

	// Live queries (SSE)
	mux.HandleFunc("GET /api/live/ingredients", h.LiveIngredients)
	mux.HandleFunc("GET /api/live/ingredients/{id}", h.LiveIngredient)
	mux.HandleFunc("GET /api/live/recipes", h.LiveRecipes)
	mux.HandleFunc("GET /api/live/recipes/{id}", h.LiveRecipe)
	mux.HandleFunc("GET /api/live/recipes/{id}/ingredients", h.LiveRecipeIngredients)
	mux.HandleFunc("GET /api/live/recipes/{id}/image", h.LiveRecipeImage)
}

// Helper methods

func (h *CatalogHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// writeFailure maps a service error onto a status code and writes it
func (h *CatalogHandler) writeFailure(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
	}
	h.writeError(w, message, err.Error(), status)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest
	case domain.IsConstraint(err):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// pathID parses a positive integer path parameter
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

// OperationResponse is returned for writes the client chose not to wait for
type OperationResponse struct {
	Operation string         `json:"operation"`
	Result    service.Result `json:"result"`
}

// awaitWrite waits for op unless the request asked for ?wait=false, in which
// case it answers 202 with the pending result. It reports whether the write
// succeeded and the caller should write the success response.
func (h *CatalogHandler) awaitWrite(w http.ResponseWriter, r *http.Request, op *service.Operation) (service.Result, bool) {
	if r.URL.Query().Get("wait") == "false" {
		h.writeJSON(w, OperationResponse{Operation: op.Name(), Result: op.Result()}, http.StatusAccepted)
		return op.Result(), false
	}

	res, err := op.Wait(r.Context())
	if err != nil {
		// Client went away; the write still completes in the background
		h.writeJSON(w, OperationResponse{Operation: op.Name(), Result: res}, http.StatusAccepted)
		return res, false
	}

	if !res.OK() {
		status := statusFor(res.Err)
		details := ""
		if res.Err != nil {
			details = res.Err.Error()
		}
		h.writeError(w, res.Message, details, status)
		return res, false
	}
	return res, true
}
