package apikit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// PhotosService lists and uploads class photos.
type PhotosService struct {
	client *Client
}

// Photo is one uploaded class photo.
type Photo struct {
	ID         string `json:"id"`
	ClassID    string `json:"class_id"`
	Caption    string `json:"caption,omitempty"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
	UploadedBy string `json:"uploaded_by,omitempty"`
}

// List returns the photos for a class.
func (service *PhotosService) List(ctx context.Context, classID string) ([]Photo, error) {
	var photos []Photo
	if err := service.client.getJSON(ctx, fmt.Sprintf("classes/%s/photos", classID), &photos, ""); err != nil {
		return nil, err
	}
	return photos, nil
}

// Upload sends one photo as multipart form data. The whole file is buffered
// so the request body stays replayable for the retry pipeline.
func (service *PhotosService) Upload(ctx context.Context, classID string, fileName string, content io.Reader, caption string) (*Photo, error) {
	var formBuffer bytes.Buffer
	formWriter := multipart.NewWriter(&formBuffer)
	filePart, partErr := formWriter.CreateFormFile("photo", fileName)
	if partErr != nil {
		return nil, fmt.Errorf("photos.upload.form: %w", partErr)
	}
	if _, copyErr := io.Copy(filePart, content); copyErr != nil {
		return nil, fmt.Errorf("photos.upload.read: %w", copyErr)
	}
	if caption != "" {
		if fieldErr := formWriter.WriteField("caption", caption); fieldErr != nil {
			return nil, fmt.Errorf("photos.upload.form: %w", fieldErr)
		}
	}
	if closeErr := formWriter.Close(); closeErr != nil {
		return nil, fmt.Errorf("photos.upload.form: %w", closeErr)
	}

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost,
		service.client.endpoint(fmt.Sprintf("classes/%s/photos", classID)),
		bytes.NewReader(formBuffer.Bytes()))
	if requestErr != nil {
		return nil, fmt.Errorf("photos.upload.request: %w", requestErr)
	}
	request.Header.Set("Content-Type", formWriter.FormDataContentType())
	request.Header.Set("Accept", "application/json")

	var photo Photo
	if err := service.client.do(service.client.authedClient, request, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}
