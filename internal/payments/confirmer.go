package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WidgetStatus is the explicit outcome of a payment widget interaction.
// There is no partial state: a confirmation either succeeded or it did not.
type WidgetStatus string

const (
	WidgetStatusSuccess WidgetStatus = "success"
	WidgetStatusError   WidgetStatus = "error"
)

// WidgetResult is what the widget boundary reports back. Message carries the
// provider's human-readable reason when Status is WidgetStatusError.
type WidgetResult struct {
	Status          WidgetStatus
	PaymentIntentID string
	Message         string
}

// Succeeded reports whether the confirmation completed.
func (result WidgetResult) Succeeded() bool {
	return result.Status == WidgetStatusSuccess
}

// Confirmer submits a server-issued client secret to the payment provider.
// All card handling happens on the provider's side of this boundary; nothing
// in this program ever sees card data.
type Confirmer interface {
	Confirm(ctx context.Context, clientSecret string) (WidgetResult, error)
}

var (
	errMissingConfirmEndpoint = errors.New("payments.config.missing_confirm_endpoint")
	errMissingPublishableKey  = errors.New("payments.config.missing_publishable_key")
	errEmptyClientSecret      = errors.New("payments.confirm.empty_client_secret")
)

const defaultConfirmTimeout = 30 * time.Second

// HTTPConfirmerConfig configures the provider-backed confirmer.
type HTTPConfirmerConfig struct {
	// ConfirmEndpoint is the provider's confirmation URL.
	ConfirmEndpoint string
	// PublishableKey authenticates the client side of the widget contract.
	PublishableKey string
	Timeout        time.Duration
	Logger         *zap.Logger
	HTTPClient     *http.Client
}

// HTTPConfirmer implements Confirmer against the provider's HTTP confirm
// endpoint.
type HTTPConfirmer struct {
	configuration HTTPConfirmerConfig
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewHTTPConfirmer validates the configuration and builds the confirmer.
func NewHTTPConfirmer(configuration HTTPConfirmerConfig) (*HTTPConfirmer, error) {
	if strings.TrimSpace(configuration.ConfirmEndpoint) == "" {
		return nil, fmt.Errorf("payments.confirmer.new: %w", errMissingConfirmEndpoint)
	}
	if strings.TrimSpace(configuration.PublishableKey) == "" {
		return nil, fmt.Errorf("payments.confirmer.new: %w", errMissingPublishableKey)
	}
	if configuration.Timeout <= 0 {
		configuration.Timeout = defaultConfirmTimeout
	}
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := configuration.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: configuration.Timeout}
	}
	return &HTTPConfirmer{
		configuration: configuration,
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

type confirmResponse struct {
	Status          string `json:"status"`
	PaymentIntentID string `json:"payment_intent_id"`
	Message         string `json:"message"`
	Error           string `json:"error"`
}

// Confirm posts the client secret to the provider and maps the outcome into a
// WidgetResult. Provider rejections are results, not errors; only transport
// and decoding failures surface as errors.
func (confirmer *HTTPConfirmer) Confirm(ctx context.Context, clientSecret string) (WidgetResult, error) {
	if clientSecret == "" {
		return WidgetResult{}, errEmptyClientSecret
	}

	payload, encodeErr := json.Marshal(struct {
		ClientSecret string `json:"client_secret"`
	}{ClientSecret: clientSecret})
	if encodeErr != nil {
		return WidgetResult{}, fmt.Errorf("payments.confirm.encode: %w", encodeErr)
	}
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, confirmer.configuration.ConfirmEndpoint, bytes.NewReader(payload))
	if requestErr != nil {
		return WidgetResult{}, fmt.Errorf("payments.confirm.request: %w", requestErr)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+confirmer.configuration.PublishableKey)

	response, sendErr := confirmer.httpClient.Do(request)
	if sendErr != nil {
		return WidgetResult{}, fmt.Errorf("payments.confirm.send: %w", sendErr)
	}
	defer func() { _ = response.Body.Close() }()
	responseBody, readErr := io.ReadAll(response.Body)
	if readErr != nil {
		return WidgetResult{}, fmt.Errorf("payments.confirm.read: %w", readErr)
	}

	decoded := confirmResponse{}
	_ = json.Unmarshal(responseBody, &decoded)
	message := decoded.Message
	if message == "" {
		message = decoded.Error
	}

	if response.StatusCode >= 400 || decoded.Status != string(WidgetStatusSuccess) {
		if message == "" {
			message = http.StatusText(response.StatusCode)
		}
		confirmer.logger.Warn("payment confirmation rejected",
			zap.String("code", "payments.confirm.rejected"),
			zap.Int("status", response.StatusCode),
			zap.String("message", message))
		return WidgetResult{
			Status:          WidgetStatusError,
			PaymentIntentID: decoded.PaymentIntentID,
			Message:         message,
		}, nil
	}

	return WidgetResult{
		Status:          WidgetStatusSuccess,
		PaymentIntentID: decoded.PaymentIntentID,
		Message:         message,
	}, nil
}
