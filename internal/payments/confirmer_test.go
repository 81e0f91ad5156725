package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newTestConfirmer(t *testing.T, handler http.Handler) *HTTPConfirmer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	confirmer, confirmerErr := NewHTTPConfirmer(HTTPConfirmerConfig{
		ConfirmEndpoint: server.URL + "/v1/confirm",
		PublishableKey:  "pk_test_123",
		Logger:          zaptest.NewLogger(t),
	})
	if confirmerErr != nil {
		t.Fatalf("NewHTTPConfirmer returned %v", confirmerErr)
	}
	return confirmer
}

func TestConfirmReportsSuccess(t *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if got := request.Header.Get("Authorization"); got != "Bearer pk_test_123" {
			t.Errorf("unexpected authorization header %q", got)
		}
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = responseWriter.Write([]byte(`{"status":"success","payment_intent_id":"pi_1"}`))
	})
	confirmer := newTestConfirmer(t, handler)

	result, confirmErr := confirmer.Confirm(context.Background(), "cs_secret")
	if confirmErr != nil {
		t.Fatalf("Confirm returned %v", confirmErr)
	}
	if !result.Succeeded() || result.PaymentIntentID != "pi_1" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestConfirmMapsDeclineToErrorResult(t *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		responseWriter.WriteHeader(http.StatusPaymentRequired)
		_, _ = responseWriter.Write([]byte(`{"status":"error","payment_intent_id":"pi_2","message":"card declined"}`))
	})
	confirmer := newTestConfirmer(t, handler)

	result, confirmErr := confirmer.Confirm(context.Background(), "cs_secret")
	if confirmErr != nil {
		t.Fatalf("a decline must be a result, not an error; got %v", confirmErr)
	}
	if result.Succeeded() {
		t.Fatal("declined confirmation must not report success")
	}
	if result.Message != "card declined" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestConfirmTreatsNonSuccessBodyAsError(t *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = responseWriter.Write([]byte(`{"status":"processing","payment_intent_id":"pi_3"}`))
	})
	confirmer := newTestConfirmer(t, handler)

	result, confirmErr := confirmer.Confirm(context.Background(), "cs_secret")
	if confirmErr != nil {
		t.Fatalf("Confirm returned %v", confirmErr)
	}
	if result.Status != WidgetStatusError {
		t.Fatalf("expected error status for non-success outcome, got %s", result.Status)
	}
}

func TestConfirmRejectsEmptyClientSecret(t *testing.T) {
	confirmer := newTestConfirmer(t, http.NotFoundHandler())
	if _, confirmErr := confirmer.Confirm(context.Background(), ""); !errors.Is(confirmErr, errEmptyClientSecret) {
		t.Fatalf("expected empty client secret error, got %v", confirmErr)
	}
}

func TestNewHTTPConfirmerValidatesConfiguration(t *testing.T) {
	if _, err := NewHTTPConfirmer(HTTPConfirmerConfig{PublishableKey: "pk"}); !errors.Is(err, errMissingConfirmEndpoint) {
		t.Fatalf("expected missing endpoint error, got %v", err)
	}
	if _, err := NewHTTPConfirmer(HTTPConfirmerConfig{ConfirmEndpoint: "https://pay.example.test"}); !errors.Is(err, errMissingPublishableKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
