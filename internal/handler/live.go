package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"nutriapp/internal/hub"
	"nutriapp/internal/live"
)

// SnapshotEvent is the payload of every "snapshot" SSE message
type SnapshotEvent[T any] struct {
	Query string `json:"query"`
	Value T      `json:"value"`
	Error string `json:"error,omitempty"`
}

// streamLive relays a subscription as SSE until the client disconnects or
// the subscription ends. Each snapshot is sent as one "snapshot" event.
func streamLive[T any](w http.ResponseWriter, r *http.Request, sub *live.Subscription[T]) {
	defer sub.Close()

	flusher, ok := hub.PrepareSSE(w)
	if !ok {
		return
	}

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(hub.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			event := SnapshotEvent[T]{Query: sub.Name(), Value: snap.Value}
			if snap.Err != nil {
				event.Error = snap.Err.Error()
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Failed to marshal %s snapshot: %v", sub.Name(), err)
				continue
			}
			if _, err := w.Write(hub.FormatEvent("snapshot", data)); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// LiveIngredients streams all ingredients, or those matching ?prefix=
func (h *CatalogHandler) LiveIngredients(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("prefix") {
		streamLive(w, r, h.svc.ObserveIngredientsByPrefix(r.Context(), r.URL.Query().Get("prefix")))
		return
	}
	streamLive(w, r, h.svc.ObserveAllIngredients(r.Context()))
}

// LiveIngredient streams one ingredient, null while it does not exist
func (h *CatalogHandler) LiveIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid ingredient ID", err.Error(), http.StatusBadRequest)
		return
	}
	streamLive(w, r, h.svc.ObserveIngredientByID(r.Context(), id))
}

// LiveRecipes streams all recipes
func (h *CatalogHandler) LiveRecipes(w http.ResponseWriter, r *http.Request) {
	streamLive(w, r, h.svc.ObserveAllRecipes(r.Context()))
}

// LiveRecipe streams one recipe, null while it does not exist
func (h *CatalogHandler) LiveRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid recipe ID", err.Error(), http.StatusBadRequest)
		return
	}
	streamLive(w, r, h.svc.ObserveRecipeByID(r.Context(), id))
}

// LiveRecipeIngredients streams a recipe's ingredient list
func (h *CatalogHandler) LiveRecipeIngredients(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid recipe ID", err.Error(), http.StatusBadRequest)
		return
	}
	streamLive(w, r, h.svc.ObserveIngredientsForRecipe(r.Context(), id))
}

// LiveRecipeImage streams a recipe's image URI
func (h *CatalogHandler) LiveRecipeImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, "Invalid recipe ID", err.Error(), http.StatusBadRequest)
		return
	}
	streamLive(w, r, h.svc.ObserveRecipeImage(r.Context(), id))
}
