package apikit

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tyemirov/teamnest/internal/session"
	"go.uber.org/zap"
)

// authTransport is the interceptor pipeline wrapped around every outbound
// request: it attaches the bearer credential, retries a narrow set of
// transient failures with linear backoff, and on a 401 defers to the
// coordinator's single-flight refresh before re-issuing the request exactly
// once. A 401 on the re-issued request propagates without another refresh.
type authTransport struct {
	base         http.RoundTripper
	coordinator  *session.Coordinator
	logger       *zap.Logger
	metrics      MetricsRecorder
	retryMax     int
	retryBackoff time.Duration
}

func newAuthTransport(base http.RoundTripper, coordinator *session.Coordinator, logger *zap.Logger, metrics MetricsRecorder, retryMax int, retryBackoff time.Duration) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{
		base:         base,
		coordinator:  coordinator,
		logger:       logger,
		metrics:      metrics,
		retryMax:     retryMax,
		retryBackoff: retryBackoff,
	}
}

func (transport *authTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	transport.metrics.Increment(eventRequestIssued)

	response, err := transport.sendWithTransientRetry(request, transport.coordinator.AccessToken())
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusUnauthorized {
		return response, nil
	}
	if !requestIsReplayable(request) {
		return response, nil
	}

	drainAndClose(response.Body)
	refreshedToken, refreshErr := transport.coordinator.Refresh(request.Context())
	if refreshErr != nil {
		return nil, fmt.Errorf("apikit.transport.refresh: %w", refreshErr)
	}

	transport.metrics.Increment(eventAuthRetry)
	transport.logger.Debug("re-issuing request after token refresh",
		zap.String("code", "apikit.transport.auth_retry"),
		zap.String("method", request.Method),
		zap.String("path", request.URL.Path))

	retryRequest, cloneErr := cloneRequest(request)
	if cloneErr != nil {
		return nil, cloneErr
	}
	return transport.sendWithTransientRetry(retryRequest, refreshedToken)
}

// transientStatuses are retried with linear backoff; everything else
// propagates immediately. Timeouts surface as transport errors and follow the
// same bounded policy, never the 401 path.
func isTransientStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (transport *authTransport) sendWithTransientRetry(request *http.Request, accessToken string) (*http.Response, error) {
	replayable := requestIsReplayable(request)
	var response *http.Response
	var err error
	for attempt := 0; ; attempt++ {
		attemptRequest, cloneErr := cloneRequest(request)
		if cloneErr != nil {
			return nil, cloneErr
		}
		if accessToken != "" {
			attemptRequest.Header.Set("Authorization", "Bearer "+accessToken)
		}

		response, err = transport.base.RoundTrip(attemptRequest)
		retryable := replayable && attempt < transport.retryMax
		if err != nil {
			if !retryable {
				return nil, err
			}
		} else if !isTransientStatus(response.StatusCode) || !retryable {
			return response, nil
		} else {
			drainAndClose(response.Body)
		}

		transport.metrics.Increment(eventTransientRetry)
		transport.logger.Debug("retrying transient failure",
			zap.String("code", "apikit.transport.transient_retry"),
			zap.String("method", request.Method),
			zap.String("path", request.URL.Path),
			zap.Int("attempt", attempt+1))

		backoff := time.Duration(attempt+1) * transport.retryBackoff
		select {
		case <-time.After(backoff):
		case <-request.Context().Done():
			return nil, request.Context().Err()
		}
	}
}

// requestIsReplayable reports whether the body can be rebuilt for a retry.
func requestIsReplayable(request *http.Request) bool {
	return request.Body == nil || request.Body == http.NoBody || request.GetBody != nil
}

func cloneRequest(request *http.Request) (*http.Request, error) {
	cloned := request.Clone(request.Context())
	if request.Body != nil && request.Body != http.NoBody && request.GetBody != nil {
		rebuiltBody, bodyErr := request.GetBody()
		if bodyErr != nil {
			return nil, fmt.Errorf("apikit.transport.rebuild_body: %w", bodyErr)
		}
		cloned.Body = rebuiltBody
	}
	return cloned, nil
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
