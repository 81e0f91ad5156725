package apikit

import (
	"context"

	"github.com/tyemirov/teamnest/internal/session"
)

// UsersService reads and updates the authenticated user's profile.
type UsersService struct {
	client *Client
}

// Profile is the full profile behind the session's user summary.
type Profile struct {
	session.UserSummary
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

// ProfileUpdate carries the fields a user may change about themselves. Role is
// deliberately absent; it is never mutated client-side.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// Me fetches the authenticated user's profile and refreshes the cached
// session summary.
func (service *UsersService) Me(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := service.client.getJSON(ctx, "users/me", &profile, ""); err != nil {
		return nil, err
	}
	summary := profile.UserSummary
	service.client.coordinator.SetUser(&summary)
	return &profile, nil
}

// UpdateProfile applies an explicit profile mutation.
func (service *UsersService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	var profile Profile
	if err := service.client.patchJSON(ctx, "users/me", update, &profile); err != nil {
		return nil, err
	}
	summary := profile.UserSummary
	service.client.coordinator.SetUser(&summary)
	return &profile, nil
}
