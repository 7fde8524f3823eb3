package service

import (
	"sync"

	"nutriapp/internal/domain"
)

// EventType defines the type of event
type EventType string

const (
	EventIngredientCreated       EventType = "ingredient_created"
	EventIngredientUpdated       EventType = "ingredient_updated"
	EventIngredientDeleted       EventType = "ingredient_deleted"
	EventRecipeSaved             EventType = "recipe_saved"
	EventRecipeDeleted           EventType = "recipe_deleted"
	EventRecipeIngredientAdded   EventType = "recipe_ingredient_added"
	EventRecipeIngredientRemoved EventType = "recipe_ingredient_removed"
	EventCatalogImported         EventType = "catalog_imported"
)

// Event represents a committed change to the catalog
type Event struct {
	Type    EventType      `json:"type"`
	Tables  []domain.Table `json:"tables,omitempty"`
	Payload interface{}    `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber. The channel is not closed.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
