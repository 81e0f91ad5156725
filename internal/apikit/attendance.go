package apikit

import (
	"context"
	"fmt"
	"net/url"
)

// AttendanceService records and reads per-session attendance. Recording is a
// coach affordance; the backend enforces the role.
type AttendanceService struct {
	client *Client
}

// AttendanceRecord marks one child's presence at one class session.
type AttendanceRecord struct {
	ID          string `json:"id"`
	ClassID     string `json:"class_id"`
	SessionDate string `json:"session_date"`
	ChildID     string `json:"child_id"`
	ChildName   string `json:"child_name"`
	Present     bool   `json:"present"`
	Note        string `json:"note,omitempty"`
}

// AttendanceInput records one mark.
type AttendanceInput struct {
	ClassID     string `json:"class_id"`
	SessionDate string `json:"session_date"`
	ChildID     string `json:"child_id"`
	Present     bool   `json:"present"`
	Note        string `json:"note,omitempty"`
}

// ListForSession returns the marks for one class session date.
func (service *AttendanceService) ListForSession(ctx context.Context, classID string, sessionDate string) ([]AttendanceRecord, error) {
	query := url.Values{}
	query.Set("class_id", classID)
	query.Set("session_date", sessionDate)
	var records []AttendanceRecord
	if err := service.client.getJSON(ctx, fmt.Sprintf("attendance?%s", query.Encode()), &records, ""); err != nil {
		return nil, err
	}
	return records, nil
}

// Record submits one attendance mark.
func (service *AttendanceService) Record(ctx context.Context, input AttendanceInput) (*AttendanceRecord, error) {
	var record AttendanceRecord
	if err := service.client.postJSON(ctx, "attendance", input, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
