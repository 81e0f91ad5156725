package apikit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tyemirov/teamnest/internal/session"
	"go.uber.org/zap"
)

var (
	errMissingBaseURL = errors.New("apikit.config.missing_base_url")
	errInvalidBaseURL = errors.New("apikit.config.invalid_base_url")
	errMissingStore   = errors.New("apikit.config.missing_credential_store")
)

const (
	defaultAPIPrefix      = "/api/v1"
	defaultRequestTimeout = 10 * time.Second
	defaultRetryMax       = 2
	defaultRetryBackoff   = 500 * time.Millisecond
	defaultCacheTTL       = 30 * time.Second
)

// ClientConfig configures the backend API client.
type ClientConfig struct {
	BaseURL        string
	APIPrefix      string
	RequestTimeout time.Duration
	RetryMax       int
	RetryBackoff   time.Duration
	CacheTTL       time.Duration
	Logger         *zap.Logger
	Metrics        MetricsRecorder
	Store          session.CredentialStore
	// OnSessionEnd is forwarded to the session coordinator and runs once when
	// a refresh fails irrecoverably.
	OnSessionEnd func()
	// BaseTransport overrides the underlying round tripper; tests use it.
	BaseTransport http.RoundTripper
}

// Client calls the backend REST API. All authenticated traffic flows through
// the interceptor transport; auth exchanges (login, register, OAuth, refresh)
// use a plain client so a 401 there cannot recurse into a refresh.
type Client struct {
	baseURL      *url.URL
	apiPrefix    string
	authedClient *http.Client
	plainClient  *http.Client
	coordinator  *session.Coordinator
	logger       *zap.Logger
	metrics      MetricsRecorder
	cache        *responseCache

	Auth          *AuthService
	Users         *UsersService
	Children      *ChildrenService
	Classes       *ClassesService
	Enrollments   *EnrollmentsService
	Orders        *OrdersService
	Payments      *PaymentsService
	Attendance    *AttendanceService
	Badges        *BadgesService
	Events        *EventsService
	Announcements *AnnouncementsService
	Photos        *PhotosService
	Admin         *AdminService
}

// NewClient validates the configuration, builds the session coordinator, and
// wires the service surface.
func NewClient(configuration ClientConfig) (*Client, error) {
	if strings.TrimSpace(configuration.BaseURL) == "" {
		return nil, fmt.Errorf("apikit.client.new: %w", errMissingBaseURL)
	}
	parsedBaseURL, parseErr := url.Parse(configuration.BaseURL)
	if parseErr != nil || parsedBaseURL.Scheme == "" || parsedBaseURL.Host == "" {
		return nil, fmt.Errorf("apikit.client.new: %w: %s", errInvalidBaseURL, configuration.BaseURL)
	}
	if configuration.Store == nil {
		return nil, fmt.Errorf("apikit.client.new: %w", errMissingStore)
	}

	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := configuration.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	apiPrefix := configuration.APIPrefix
	if apiPrefix == "" {
		apiPrefix = defaultAPIPrefix
	}
	requestTimeout := configuration.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	retryMax := configuration.RetryMax
	if retryMax < 0 {
		retryMax = 0
	}
	if configuration.RetryMax == 0 {
		retryMax = defaultRetryMax
	}
	retryBackoff := configuration.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}
	cacheTTL := configuration.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	client := &Client{
		baseURL:   parsedBaseURL,
		apiPrefix: apiPrefix,
		logger:    logger,
		metrics:   metrics,
		cache:     newResponseCache(cacheTTL),
	}
	client.plainClient = &http.Client{Timeout: requestTimeout}

	coordinator, coordinatorErr := session.NewCoordinator(session.CoordinatorConfig{
		Store:          configuration.Store,
		Refresh:        client.refreshTokens,
		Logger:         logger,
		Metrics:        metrics,
		RefreshTimeout: requestTimeout,
		OnSessionEnd:   configuration.OnSessionEnd,
	})
	if coordinatorErr != nil {
		return nil, coordinatorErr
	}
	client.coordinator = coordinator
	client.authedClient = &http.Client{
		Transport: newAuthTransport(configuration.BaseTransport, coordinator, logger, metrics, retryMax, retryBackoff),
	}

	client.Auth = &AuthService{client: client}
	client.Users = &UsersService{client: client}
	client.Children = &ChildrenService{client: client}
	client.Classes = &ClassesService{client: client}
	client.Enrollments = &EnrollmentsService{client: client}
	client.Orders = &OrdersService{client: client}
	client.Payments = &PaymentsService{client: client}
	client.Attendance = &AttendanceService{client: client}
	client.Badges = &BadgesService{client: client}
	client.Events = &EventsService{client: client}
	client.Announcements = &AnnouncementsService{client: client}
	client.Photos = &PhotosService{client: client}
	client.Admin = &AdminService{client: client}
	return client, nil
}

// Session exposes the session coordinator that owns the token pair.
func (client *Client) Session() *session.Coordinator {
	return client.coordinator
}

// endpoint joins the relative path onto the base URL. A query string in path
// must land in RawQuery; left inside Path it would be percent-escaped away.
func (client *Client) endpoint(path string) string {
	relativePath, rawQuery, _ := strings.Cut(path, "?")
	joined := *client.baseURL
	joined.Path = strings.TrimSuffix(joined.Path, "/") + client.apiPrefix + "/" + strings.TrimPrefix(relativePath, "/")
	joined.RawQuery = rawQuery
	return joined.String()
}

func (client *Client) newJSONRequest(ctx context.Context, method string, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		encoded, encodeErr := json.Marshal(payload)
		if encodeErr != nil {
			return nil, fmt.Errorf("apikit.client.encode: %w", encodeErr)
		}
		body = bytes.NewReader(encoded)
	}
	request, requestErr := http.NewRequestWithContext(ctx, method, client.endpoint(path), body)
	if requestErr != nil {
		return nil, fmt.Errorf("apikit.client.request: %w", requestErr)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	return request, nil
}

// do executes the request and normalizes every failure into *APIError. A
// terminal refresh failure surfaces as the auth kind and nothing else.
func (client *Client) do(httpClient *http.Client, request *http.Request, out any) error {
	_, err := client.doRaw(httpClient, request, out)
	return err
}

// doRaw is do plus the raw success body, which getJSON feeds to the response
// cache.
func (client *Client) doRaw(httpClient *http.Client, request *http.Request, out any) ([]byte, error) {
	response, err := httpClient.Do(request)
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			return nil, newUnauthenticatedError(err)
		}
		return nil, newNetworkError(err)
	}
	defer func() { _ = response.Body.Close() }()

	responseBody, readErr := io.ReadAll(response.Body)
	if readErr != nil {
		return nil, newNetworkError(readErr)
	}
	if response.StatusCode >= 400 {
		return nil, normalizeErrorResponse(response.StatusCode, responseBody)
	}
	if out == nil || response.StatusCode == http.StatusNoContent || len(responseBody) == 0 {
		return responseBody, nil
	}
	if decodeErr := json.Unmarshal(responseBody, out); decodeErr != nil {
		return nil, &APIError{
			Kind:       ErrorKindUnknown,
			HTTPStatus: response.StatusCode,
			Message:    "undecodable response body",
			cause:      decodeErr,
		}
	}
	return responseBody, nil
}

// getJSON issues an authenticated GET. A non-empty cacheKey serves and stores
// the raw body through the response cache.
func (client *Client) getJSON(ctx context.Context, path string, out any, cacheKey string) error {
	if cacheKey != "" {
		if payload, ok := client.cache.get(cacheKey); ok {
			client.metrics.Increment(eventCacheHit)
			if decodeErr := json.Unmarshal(payload, out); decodeErr == nil {
				return nil
			}
			client.cache.invalidate(cacheKey)
		}
		client.metrics.Increment(eventCacheMiss)
	}
	request, requestErr := client.newJSONRequest(ctx, http.MethodGet, path, nil)
	if requestErr != nil {
		return requestErr
	}
	responseBody, doErr := client.doRaw(client.authedClient, request, out)
	if doErr != nil {
		return doErr
	}
	if cacheKey != "" && len(responseBody) > 0 {
		client.cache.set(cacheKey, responseBody)
	}
	return nil
}

func (client *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	request, requestErr := client.newJSONRequest(ctx, http.MethodPost, path, payload)
	if requestErr != nil {
		return requestErr
	}
	return client.do(client.authedClient, request, out)
}

func (client *Client) patchJSON(ctx context.Context, path string, payload any, out any) error {
	request, requestErr := client.newJSONRequest(ctx, http.MethodPatch, path, payload)
	if requestErr != nil {
		return requestErr
	}
	return client.do(client.authedClient, request, out)
}

func (client *Client) deleteJSON(ctx context.Context, path string) error {
	request, requestErr := client.newJSONRequest(ctx, http.MethodDelete, path, nil)
	if requestErr != nil {
		return requestErr
	}
	return client.do(client.authedClient, request, nil)
}

// postPlainJSON issues a POST through the unauthenticated client, used for
// auth exchanges where a 401 means bad credentials rather than a stale token.
func (client *Client) postPlainJSON(ctx context.Context, path string, payload any, out any) error {
	request, requestErr := client.newJSONRequest(ctx, http.MethodPost, path, payload)
	if requestErr != nil {
		return requestErr
	}
	return client.do(client.plainClient, request, out)
}

// refreshTokens is the coordinator's RefreshFunc. It deliberately bypasses the
// authenticated transport.
func (client *Client) refreshTokens(ctx context.Context, refreshToken string) (session.Credentials, error) {
	payload := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}
	var response struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := client.postPlainJSON(ctx, "auth/refresh", payload, &response); err != nil {
		return session.Credentials{}, err
	}
	if response.AccessToken == "" {
		return session.Credentials{}, errors.New("apikit.refresh.empty_access_token")
	}
	return session.Credentials{
		AccessToken:  response.AccessToken,
		RefreshToken: response.RefreshToken,
	}, nil
}
