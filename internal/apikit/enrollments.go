package apikit

import (
	"context"
	"fmt"
)

// EnrollmentsService enrolls children into classes. Capacity and payment
// rules live in the backend; this service only submits requests and reports
// the normalized outcome (a full class surfaces as the conflict kind).
type EnrollmentsService struct {
	client *Client
}

// Enrollment links a child to a class.
type Enrollment struct {
	ID        string `json:"id"`
	ChildID   string `json:"child_id"`
	ChildName string `json:"child_name"`
	ClassID   string `json:"class_id"`
	ClassName string `json:"class_name"`
	Status    string `json:"status"`
	OrderID   string `json:"order_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

const cacheKeyEnrollments = "enrollments"

// List returns the caller's enrollments.
func (service *EnrollmentsService) List(ctx context.Context) ([]Enrollment, error) {
	var enrollments []Enrollment
	if err := service.client.getJSON(ctx, "enrollments", &enrollments, cacheKeyEnrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// Create enrolls a child into a class. A successful enrollment invalidates
// the class catalog (spot counts) and the enrollment list.
func (service *EnrollmentsService) Create(ctx context.Context, childID string, classID string) (*Enrollment, error) {
	payload := struct {
		ChildID string `json:"child_id"`
		ClassID string `json:"class_id"`
	}{ChildID: childID, ClassID: classID}
	var enrollment Enrollment
	if err := service.client.postJSON(ctx, "enrollments", payload, &enrollment); err != nil {
		return nil, err
	}
	service.client.cache.invalidate(cacheKeyEnrollments, cacheKeyClasses)
	return &enrollment, nil
}

// Cancel withdraws an enrollment. Refund policy is the backend's concern.
func (service *EnrollmentsService) Cancel(ctx context.Context, enrollmentID string) error {
	if err := service.client.deleteJSON(ctx, fmt.Sprintf("enrollments/%s", enrollmentID)); err != nil {
		return err
	}
	service.client.cache.invalidate(cacheKeyEnrollments, cacheKeyClasses)
	return nil
}
