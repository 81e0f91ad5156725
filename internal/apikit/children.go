package apikit

import (
	"context"
	"fmt"
)

// ChildrenService manages the children on a parent's account.
type ChildrenService struct {
	client *Client
}

// Child is one enrolled or enrollable child.
type Child struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BirthDate    string `json:"birth_date"`
	MedicalNotes string `json:"medical_notes,omitempty"`
}

// ChildInput creates or updates a child record.
type ChildInput struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BirthDate    string `json:"birth_date"`
	MedicalNotes string `json:"medical_notes,omitempty"`
}

const cacheKeyChildren = "children"

// List returns the children visible to the caller.
func (service *ChildrenService) List(ctx context.Context) ([]Child, error) {
	var children []Child
	if err := service.client.getJSON(ctx, "children", &children, cacheKeyChildren); err != nil {
		return nil, err
	}
	return children, nil
}

// Create adds a child to the account.
func (service *ChildrenService) Create(ctx context.Context, input ChildInput) (*Child, error) {
	var child Child
	if err := service.client.postJSON(ctx, "children", input, &child); err != nil {
		return nil, err
	}
	service.client.cache.invalidate(cacheKeyChildren)
	return &child, nil
}

// Update edits a child record.
func (service *ChildrenService) Update(ctx context.Context, childID string, input ChildInput) (*Child, error) {
	var child Child
	if err := service.client.patchJSON(ctx, fmt.Sprintf("children/%s", childID), input, &child); err != nil {
		return nil, err
	}
	service.client.cache.invalidate(cacheKeyChildren)
	return &child, nil
}

// Delete removes a child record.
func (service *ChildrenService) Delete(ctx context.Context, childID string) error {
	if err := service.client.deleteJSON(ctx, fmt.Sprintf("children/%s", childID)); err != nil {
		return err
	}
	service.client.cache.invalidate(cacheKeyChildren)
	return nil
}
