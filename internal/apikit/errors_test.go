package apikit

import (
	"errors"
	"net/http"
	"testing"

	"github.com/tyemirov/teamnest/internal/session"
)

func TestKindForStatusCoversTaxonomy(t *testing.T) {
	cases := []struct {
		statusCode int
		expected   ErrorKind
	}{
		{http.StatusUnauthorized, ErrorKindAuth},
		{http.StatusForbidden, ErrorKindForbidden},
		{http.StatusBadRequest, ErrorKindValidation},
		{http.StatusUnprocessableEntity, ErrorKindValidation},
		{http.StatusNotFound, ErrorKindNotFound},
		{http.StatusConflict, ErrorKindConflict},
		{http.StatusTooManyRequests, ErrorKindRateLimited},
		{http.StatusInternalServerError, ErrorKindServer},
		{http.StatusBadGateway, ErrorKindServer},
		{http.StatusTeapot, ErrorKindUnknown},
	}
	for _, testCase := range cases {
		if got := kindForStatus(testCase.statusCode); got != testCase.expected {
			t.Fatalf("status %d mapped to %s, expected %s", testCase.statusCode, got, testCase.expected)
		}
	}
}

func TestNormalizeErrorResponsePrefersDetail(t *testing.T) {
	apiErr := normalizeErrorResponse(http.StatusConflict, []byte(`{"detail":"already enrolled","message":"ignored"}`))
	if apiErr.Message != "already enrolled" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
	if apiErr.Kind != ErrorKindConflict {
		t.Fatalf("unexpected kind %s", apiErr.Kind)
	}
}

func TestNormalizeErrorResponseFallsBackToMessage(t *testing.T) {
	apiErr := normalizeErrorResponse(http.StatusBadRequest, []byte(`{"message":"name required"}`))
	if apiErr.Message != "name required" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestNormalizeErrorResponseHandlesUnparsableBody(t *testing.T) {
	apiErr := normalizeErrorResponse(http.StatusBadGateway, []byte(`<html>bad gateway</html>`))
	if apiErr.Kind != ErrorKindServer {
		t.Fatalf("unexpected kind %s", apiErr.Kind)
	}
	if apiErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestKindOfUnrelatedErrorIsUnknown(t *testing.T) {
	if kind := KindOf(errors.New("boom")); kind != ErrorKindUnknown {
		t.Fatalf("expected unknown kind, got %s", kind)
	}
}

func TestIsAuthErrorMatchesSessionSentinel(t *testing.T) {
	wrapped := newUnauthenticatedError(session.ErrUnauthenticated)
	if !IsAuthError(wrapped) {
		t.Fatal("expected wrapped sentinel to be an auth error")
	}
	if !IsAuthError(session.ErrUnauthenticated) {
		t.Fatal("expected bare sentinel to be an auth error")
	}
	if IsAuthError(normalizeErrorResponse(http.StatusNotFound, nil)) {
		t.Fatal("not_found must not be an auth error")
	}
}

func TestAPIErrorRendersKindAndStatus(t *testing.T) {
	apiErr := &APIError{Kind: ErrorKindForbidden, HTTPStatus: http.StatusForbidden, Message: "coaches only"}
	if got := apiErr.Error(); got != "api.forbidden: coaches only (http 403)" {
		t.Fatalf("unexpected rendering %q", got)
	}
	networkErr := newNetworkError(errors.New("connection refused"))
	if got := networkErr.Error(); got != "api.network: connection refused" {
		t.Fatalf("unexpected rendering %q", got)
	}
}
