package apikit

import (
	"context"
)

// EventsService reads and manages program events (tournaments, showcases,
// closures).
type EventsService struct {
	client *Client
}

// Event is one dated program event.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at,omitempty"`
	Location    string `json:"location,omitempty"`
}

// EventInput creates an event; an admin affordance.
type EventInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at,omitempty"`
	Location    string `json:"location,omitempty"`
}

const cacheKeyEvents = "events"

// List returns upcoming events, cached briefly.
func (service *EventsService) List(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := service.client.getJSON(ctx, "events", &events, cacheKeyEvents); err != nil {
		return nil, err
	}
	return events, nil
}

// Create publishes a new event.
func (service *EventsService) Create(ctx context.Context, input EventInput) (*Event, error) {
	var event Event
	if err := service.client.postJSON(ctx, "events", input, &event); err != nil {
		return nil, err
	}
	service.client.cache.invalidate(cacheKeyEvents)
	return &event, nil
}
