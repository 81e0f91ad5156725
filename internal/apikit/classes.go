package apikit

import (
	"context"
	"fmt"
	"net/url"
)

// ClassesService browses the program's class catalog.
type ClassesService struct {
	client *Client
}

// Class is one offered class or program session series.
type Class struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Sport        string   `json:"sport"`
	AgeMin       int      `json:"age_min"`
	AgeMax       int      `json:"age_max"`
	Schedule     string   `json:"schedule"`
	Location     string   `json:"location"`
	PriceCents   int64    `json:"price_cents"`
	Capacity     int      `json:"capacity"`
	SpotsLeft    int      `json:"spots_left"`
	CoachName    string   `json:"coach_name"`
	SessionDates []string `json:"session_dates,omitempty"`
}

// ClassFilter narrows a catalog listing.
type ClassFilter struct {
	Sport string
	Age   int
}

const cacheKeyClasses = "classes"

// List returns the catalog, cached briefly because the listing is read far
// more often than it changes.
func (service *ClassesService) List(ctx context.Context, filter ClassFilter) ([]Class, error) {
	query := url.Values{}
	if filter.Sport != "" {
		query.Set("sport", filter.Sport)
	}
	if filter.Age > 0 {
		query.Set("age", fmt.Sprintf("%d", filter.Age))
	}
	path := "classes"
	cacheKey := cacheKeyClasses
	if encoded := query.Encode(); encoded != "" {
		path = path + "?" + encoded
		cacheKey = cacheKey + "?" + encoded
	}
	var classes []Class
	if err := service.client.getJSON(ctx, path, &classes, cacheKey); err != nil {
		return nil, err
	}
	return classes, nil
}

// Get returns one class by id.
func (service *ClassesService) Get(ctx context.Context, classID string) (*Class, error) {
	var class Class
	if err := service.client.getJSON(ctx, fmt.Sprintf("classes/%s", classID), &class, ""); err != nil {
		return nil, err
	}
	return &class, nil
}
