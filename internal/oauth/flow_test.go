package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/idtoken"
)

type validatorResult struct {
	payload          *idtoken.Payload
	err              error
	expectedAudience string
}

type fakeGoogleValidator struct {
	results map[string]validatorResult
}

func (validator *fakeGoogleValidator) Validate(ctx context.Context, token string, audience string) (*idtoken.Payload, error) {
	result, ok := validator.results[token]
	if !ok {
		return nil, errors.New("token_not_found")
	}
	if result.expectedAudience != "" && result.expectedAudience != audience {
		return nil, fmt.Errorf("unexpected audience %q", audience)
	}
	if result.err != nil {
		return nil, result.err
	}
	return result.payload, nil
}

var statePattern = regexp.MustCompile(`"state":"([0-9a-f]+)"`)

// driveSignIn acts the way the sign-in page would: it loads the page and the
// config script, then posts the credential back with the published state.
func driveSignIn(t *testing.T, credential string, overrideState string) func(pageURL string) error {
	t.Helper()
	return func(pageURL string) error {
		pageResponse, pageErr := http.Get(pageURL)
		if pageErr != nil {
			return pageErr
		}
		pageBody, _ := io.ReadAll(pageResponse.Body)
		_ = pageResponse.Body.Close()
		if !strings.Contains(string(pageBody), "g_id_onload") {
			t.Errorf("sign-in page is missing the Google Sign-In host element")
		}

		configResponse, configErr := http.Get(pageURL + "config.js")
		if configErr != nil {
			return configErr
		}
		configBody, _ := io.ReadAll(configResponse.Body)
		_ = configResponse.Body.Close()
		stateMatch := statePattern.FindStringSubmatch(string(configBody))
		if stateMatch == nil {
			t.Errorf("config script does not publish a state value: %s", configBody)
			return errors.New("state not found")
		}
		state := stateMatch[1]
		if overrideState != "" {
			state = overrideState
		}

		payload, _ := json.Marshal(map[string]string{
			"credential": credential,
			"state":      state,
		})
		deliveryResponse, deliveryErr := http.Post(pageURL+"credential", "application/json", bytes.NewReader(payload))
		if deliveryErr != nil {
			return deliveryErr
		}
		_, _ = io.Copy(io.Discard, deliveryResponse.Body)
		_ = deliveryResponse.Body.Close()
		return nil
	}
}

func TestPromptDeliversValidatedCredential(t *testing.T) {
	gin.SetMode(gin.TestMode)

	flow, flowErr := NewFlow(FlowConfig{
		GoogleClientID: "client-id",
		Timeout:        5 * time.Second,
		Logger:         zaptest.NewLogger(t),
		OpenBrowser:    driveSignIn(t, "google-id-token", ""),
		Validator: &fakeGoogleValidator{results: map[string]validatorResult{
			"google-id-token": {
				payload:          &idtoken.Payload{Claims: map[string]interface{}{"sub": "sub-1"}},
				expectedAudience: "client-id",
			},
		}},
	})
	if flowErr != nil {
		t.Fatalf("NewFlow returned %v", flowErr)
	}

	credential, promptErr := flow.Prompt(context.Background())
	if promptErr != nil {
		t.Fatalf("Prompt returned %v", promptErr)
	}
	if credential != "google-id-token" {
		t.Fatalf("unexpected credential %q", credential)
	}
}

func TestPromptRejectsStateMismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)

	flow, flowErr := NewFlow(FlowConfig{
		GoogleClientID: "client-id",
		Timeout:        5 * time.Second,
		Logger:         zaptest.NewLogger(t),
		OpenBrowser:    driveSignIn(t, "google-id-token", "forged-state"),
		Validator:      &fakeGoogleValidator{results: map[string]validatorResult{}},
	})
	if flowErr != nil {
		t.Fatalf("NewFlow returned %v", flowErr)
	}

	_, promptErr := flow.Prompt(context.Background())
	if !errors.Is(promptErr, ErrStateMismatch) {
		t.Fatalf("expected state mismatch, got %v", promptErr)
	}
}

func TestPromptRejectsCredentialForAnotherAudience(t *testing.T) {
	gin.SetMode(gin.TestMode)

	audienceErr := errors.New("audience_rejected")
	flow, flowErr := NewFlow(FlowConfig{
		GoogleClientID: "client-id",
		Timeout:        5 * time.Second,
		Logger:         zaptest.NewLogger(t),
		OpenBrowser:    driveSignIn(t, "foreign-token", ""),
		Validator: &fakeGoogleValidator{results: map[string]validatorResult{
			"foreign-token": {err: audienceErr},
		}},
	})
	if flowErr != nil {
		t.Fatalf("NewFlow returned %v", flowErr)
	}

	_, promptErr := flow.Prompt(context.Background())
	if !errors.Is(promptErr, audienceErr) {
		t.Fatalf("expected audience rejection, got %v", promptErr)
	}
}

func TestPromptTimesOutWithoutCallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	flow, flowErr := NewFlow(FlowConfig{
		GoogleClientID: "client-id",
		Timeout:        100 * time.Millisecond,
		Logger:         zaptest.NewLogger(t),
		OpenBrowser:    func(pageURL string) error { return nil },
		Validator:      &fakeGoogleValidator{results: map[string]validatorResult{}},
	})
	if flowErr != nil {
		t.Fatalf("NewFlow returned %v", flowErr)
	}

	_, promptErr := flow.Prompt(context.Background())
	if !errors.Is(promptErr, ErrFlowTimeout) {
		t.Fatalf("expected timeout, got %v", promptErr)
	}
}

func TestNewFlowRequiresGoogleClientID(t *testing.T) {
	if _, flowErr := NewFlow(FlowConfig{}); !errors.Is(flowErr, errMissingGoogleClientID) {
		t.Fatalf("expected missing client id error, got %v", flowErr)
	}
}
