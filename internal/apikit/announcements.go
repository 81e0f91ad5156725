package apikit

import (
	"context"
)

// AnnouncementsService reads and publishes program announcements.
type AnnouncementsService struct {
	client *Client
}

// Announcement is one published notice.
type Announcement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
	Author      string `json:"author,omitempty"`
}

// AnnouncementInput publishes a notice; an admin affordance.
type AnnouncementInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

const cacheKeyAnnouncements = "announcements"

// List returns recent announcements, cached briefly.
func (service *AnnouncementsService) List(ctx context.Context) ([]Announcement, error) {
	var announcements []Announcement
	if err := service.client.getJSON(ctx, "announcements", &announcements, cacheKeyAnnouncements); err != nil {
		return nil, err
	}
	return announcements, nil
}

// Publish posts a new announcement.
func (service *AnnouncementsService) Publish(ctx context.Context, input AnnouncementInput) (*Announcement, error) {
	var announcement Announcement
	if err := service.client.postJSON(ctx, "announcements", input, &announcement); err != nil {
		return nil, err
	}
	service.client.cache.invalidate(cacheKeyAnnouncements)
	return &announcement, nil
}
