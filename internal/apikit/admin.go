package apikit

import (
	"context"
	"fmt"

	"github.com/tyemirov/teamnest/internal/session"
)

// AdminService covers the administrative surface: user management and
// reporting. Visibility of these operations in the CLI is gated client-side
// by the role gate; authorization itself is the backend's.
type AdminService struct {
	client *Client
}

// ManagedUser is one platform account as seen by an administrator.
type ManagedUser struct {
	session.UserSummary
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at"`
	Disabled  bool   `json:"disabled"`
}

// EnrollmentReportRow aggregates enrollment counts per class.
type EnrollmentReportRow struct {
	ClassID   string `json:"class_id"`
	ClassName string `json:"class_name"`
	Capacity  int    `json:"capacity"`
	Enrolled  int    `json:"enrolled"`
	Waitlist  int    `json:"waitlist"`
}

// ListUsers returns every platform account.
func (service *AdminService) ListUsers(ctx context.Context) ([]ManagedUser, error) {
	var users []ManagedUser
	if err := service.client.getJSON(ctx, "admin/users", &users, ""); err != nil {
		return nil, err
	}
	return users, nil
}

// SetUserRole assigns a role to an account. The client never mutates its own
// cached role from this call; the target user's next login picks it up.
func (service *AdminService) SetUserRole(ctx context.Context, userID string, role string) (*ManagedUser, error) {
	payload := struct {
		Role string `json:"role"`
	}{Role: role}
	var user ManagedUser
	if err := service.client.patchJSON(ctx, fmt.Sprintf("admin/users/%s/role", userID), payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// EnrollmentReport returns per-class enrollment aggregates.
func (service *AdminService) EnrollmentReport(ctx context.Context) ([]EnrollmentReportRow, error) {
	var rows []EnrollmentReportRow
	if err := service.client.getJSON(ctx, "admin/reports/enrollment", &rows, ""); err != nil {
		return nil, err
	}
	return rows, nil
}
