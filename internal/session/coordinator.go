package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnauthenticated is the terminal session-ended error. It is returned
	// to every caller waiting on a refresh that failed; the session is cleared
	// and the user must log in again.
	ErrUnauthenticated = errors.New("session.unauthenticated")

	errMissingStore     = errors.New("session.coordinator.missing_store")
	errMissingRefreshFn = errors.New("session.coordinator.missing_refresh_func")
)

const (
	refreshFlightKey       = "refresh"
	defaultRefreshTimeout  = 15 * time.Second
	eventRefreshStarted    = "session.refresh.started"
	eventRefreshSucceeded  = "session.refresh.succeeded"
	eventRefreshFailed     = "session.refresh.failed"
	eventSessionCleared    = "session.cleared"
	eventPersistSaveFailed = "session.persist.save_failed"
)

// RefreshFunc exchanges a refresh token for a new token pair against the
// backend. Implementations must not route through the authenticated transport.
type RefreshFunc func(ctx context.Context, refreshToken string) (Credentials, error)

// MetricsRecorder increments counters for session events.
type MetricsRecorder interface {
	Increment(event string)
}

type noopMetrics struct{}

func (noopMetrics) Increment(event string) {}

// CoordinatorConfig configures a Coordinator.
type CoordinatorConfig struct {
	Store          CredentialStore
	Refresh        RefreshFunc
	Logger         *zap.Logger
	Metrics        MetricsRecorder
	RefreshTimeout time.Duration
	// OnSessionEnd runs once after an irrecoverable refresh failure has
	// cleared the session. The CLI uses it to tell the user to log in again.
	OnSessionEnd func()
}

// Coordinator owns the session: it holds the current token pair and the
// authenticated user, persists tokens through the credential store, and
// guarantees that concurrent demand for a refresh results in exactly one
// network call whose outcome every waiter shares.
type Coordinator struct {
	mutex        sync.RWMutex
	credentials  Credentials
	user         *UserSummary
	store        CredentialStore
	refreshFn    RefreshFunc
	flight       singleflight.Group
	logger       *zap.Logger
	metrics      MetricsRecorder
	timeout      time.Duration
	onSessionEnd func()
}

// NewCoordinator validates the configuration and constructs a Coordinator.
func NewCoordinator(configuration CoordinatorConfig) (*Coordinator, error) {
	if configuration.Store == nil {
		return nil, fmt.Errorf("session.coordinator.new: %w", errMissingStore)
	}
	if configuration.Refresh == nil {
		return nil, fmt.Errorf("session.coordinator.new: %w", errMissingRefreshFn)
	}
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := configuration.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	timeout := configuration.RefreshTimeout
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}
	return &Coordinator{
		store:        configuration.Store,
		refreshFn:    configuration.Refresh,
		logger:       logger,
		metrics:      metrics,
		timeout:      timeout,
		onSessionEnd: configuration.OnSessionEnd,
	}, nil
}

// Init loads persisted credentials at startup. A missing pair is not an error;
// the session simply starts unauthenticated.
func (coordinator *Coordinator) Init(ctx context.Context) error {
	credentials, loadErr := coordinator.store.Load(ctx)
	if loadErr != nil {
		if errors.Is(loadErr, ErrCredentialsNotFound) {
			return nil
		}
		return fmt.Errorf("session.coordinator.init: %w", loadErr)
	}
	coordinator.mutex.Lock()
	coordinator.credentials = credentials
	coordinator.mutex.Unlock()
	return nil
}

// AccessToken returns the current access token or the empty string. It never
// blocks and has no side effects.
func (coordinator *Coordinator) AccessToken() string {
	coordinator.mutex.RLock()
	defer coordinator.mutex.RUnlock()
	return coordinator.credentials.AccessToken
}

// User returns the cached user summary, or nil before login.
func (coordinator *Coordinator) User() *UserSummary {
	coordinator.mutex.RLock()
	defer coordinator.mutex.RUnlock()
	return coordinator.user
}

// SetUser caches the authenticated user summary alongside the tokens.
func (coordinator *Coordinator) SetUser(user *UserSummary) {
	coordinator.mutex.Lock()
	coordinator.user = user
	coordinator.mutex.Unlock()
}

// SetTokens overwrites both tokens together and persists them. The in-memory
// pair is replaced under one lock acquisition so no caller observes a partial
// write.
func (coordinator *Coordinator) SetTokens(ctx context.Context, accessToken string, refreshToken string) error {
	credentials := Credentials{AccessToken: accessToken, RefreshToken: refreshToken}
	coordinator.mutex.Lock()
	coordinator.credentials = credentials
	coordinator.mutex.Unlock()
	if saveErr := coordinator.store.Save(ctx, credentials); saveErr != nil {
		coordinator.logger.Error("failed to persist session tokens",
			zap.String("code", eventPersistSaveFailed),
			zap.Error(saveErr))
		return fmt.Errorf("session.coordinator.set_tokens: %w", saveErr)
	}
	return nil
}

// Clear removes the tokens and the cached user from memory and from durable
// storage. Subsequent AccessToken calls return the empty string.
func (coordinator *Coordinator) Clear(ctx context.Context) error {
	coordinator.mutex.Lock()
	coordinator.credentials = Credentials{}
	coordinator.user = nil
	coordinator.mutex.Unlock()
	coordinator.metrics.Increment(eventSessionCleared)
	if clearErr := coordinator.store.Clear(ctx); clearErr != nil {
		return fmt.Errorf("session.coordinator.clear: %w", clearErr)
	}
	return nil
}

// Refresh obtains a new access token. When a refresh is already in flight the
// caller joins it and receives the same outcome; otherwise this caller starts
// the single network call. On success every waiter receives the new access
// token. On failure the session is cleared exactly once and every waiter
// receives ErrUnauthenticated. A failed refresh is never retried here.
//
// The caller's context only bounds how long this caller waits: abandoning
// interest does not cancel the shared flight, which would strand other
// waiters. The flight runs on its own deadline.
func (coordinator *Coordinator) Refresh(ctx context.Context) (string, error) {
	resultChannel := coordinator.flight.DoChan(refreshFlightKey, func() (interface{}, error) {
		return coordinator.performRefresh()
	})
	select {
	case result := <-resultChannel:
		if result.Err != nil {
			return "", result.Err
		}
		accessToken, ok := result.Val.(string)
		if !ok {
			return "", fmt.Errorf("session.coordinator.refresh: %w", ErrUnauthenticated)
		}
		return accessToken, nil
	case <-ctx.Done():
		return "", fmt.Errorf("session.coordinator.refresh: %w", ctx.Err())
	}
}

func (coordinator *Coordinator) performRefresh() (interface{}, error) {
	coordinator.mutex.RLock()
	refreshToken := coordinator.credentials.RefreshToken
	coordinator.mutex.RUnlock()

	flightCtx, cancelFlight := context.WithTimeout(context.Background(), coordinator.timeout)
	defer cancelFlight()

	if refreshToken == "" {
		coordinator.failSession(flightCtx, errors.New("session.refresh.no_refresh_token"))
		return nil, fmt.Errorf("session.coordinator.refresh: %w", ErrUnauthenticated)
	}

	coordinator.metrics.Increment(eventRefreshStarted)
	coordinator.logger.Debug("refreshing session tokens", zap.String("code", eventRefreshStarted))

	credentials, refreshErr := coordinator.refreshFn(flightCtx, refreshToken)
	if refreshErr != nil {
		coordinator.failSession(flightCtx, refreshErr)
		return nil, fmt.Errorf("session.coordinator.refresh: %w", ErrUnauthenticated)
	}

	if setErr := coordinator.SetTokens(flightCtx, credentials.AccessToken, credentials.RefreshToken); setErr != nil {
		// The in-memory pair is already updated; a persistence failure is
		// logged inside SetTokens and must not end the session.
		coordinator.logger.Warn("session refreshed but not persisted",
			zap.String("code", eventPersistSaveFailed))
	}
	coordinator.metrics.Increment(eventRefreshSucceeded)
	return credentials.AccessToken, nil
}

func (coordinator *Coordinator) failSession(ctx context.Context, cause error) {
	coordinator.metrics.Increment(eventRefreshFailed)
	coordinator.logger.Warn("session refresh failed; clearing session",
		zap.String("code", eventRefreshFailed),
		zap.Error(cause))
	if clearErr := coordinator.Clear(ctx); clearErr != nil {
		coordinator.logger.Error("failed to clear session after refresh failure",
			zap.String("code", eventSessionCleared),
			zap.Error(clearErr))
	}
	if coordinator.onSessionEnd != nil {
		coordinator.onSessionEnd()
	}
}
