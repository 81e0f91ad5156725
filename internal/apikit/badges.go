package apikit

import (
	"context"
	"fmt"
)

// BadgesService reads and awards achievement badges.
type BadgesService struct {
	client *Client
}

// Badge is one earned or awardable achievement.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AwardedAt   string `json:"awarded_at,omitempty"`
	AwardedBy   string `json:"awarded_by,omitempty"`
}

// ListForChild returns the badges a child has earned.
func (service *BadgesService) ListForChild(ctx context.Context, childID string) ([]Badge, error) {
	var badges []Badge
	if err := service.client.getJSON(ctx, fmt.Sprintf("children/%s/badges", childID), &badges, ""); err != nil {
		return nil, err
	}
	return badges, nil
}

// Award grants a badge to a child; a coach affordance.
func (service *BadgesService) Award(ctx context.Context, childID string, badgeID string, note string) (*Badge, error) {
	payload := struct {
		ChildID string `json:"child_id"`
		BadgeID string `json:"badge_id"`
		Note    string `json:"note,omitempty"`
	}{ChildID: childID, BadgeID: badgeID, Note: note}
	var badge Badge
	if err := service.client.postJSON(ctx, "badges/award", payload, &badge); err != nil {
		return nil, err
	}
	return &badge, nil
}
