package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/browser"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

var (
	// ErrFlowTimeout is returned when the user never completes sign-in.
	ErrFlowTimeout = errors.New("oauth.flow.timeout")
	// ErrStateMismatch is returned when the callback carries a state value
	// that does not match the one minted for this flow.
	ErrStateMismatch = errors.New("oauth.flow.state_mismatch")

	errMissingGoogleClientID = errors.New("oauth.flow.missing_google_client_id")
	errEmptyCredential       = errors.New("oauth.flow.empty_credential")
)

const defaultFlowTimeout = 5 * time.Minute

// GoogleTokenValidator verifies a Google ID token against an audience.
type GoogleTokenValidator interface {
	Validate(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
}

// buildGoogleTokenValidator is swapped by tests that must not reach Google.
var buildGoogleTokenValidator = func(ctx context.Context) (GoogleTokenValidator, error) {
	return idtoken.NewValidator(ctx)
}

// FlowConfig configures a browser sign-in flow.
type FlowConfig struct {
	// GoogleClientID is the web client id the sign-in page is configured for.
	GoogleClientID string
	// ListenAddress is the loopback address the callback server binds to.
	// Port zero picks an ephemeral port.
	ListenAddress string
	// Timeout bounds the wait for the user to finish signing in.
	Timeout time.Duration
	Logger  *zap.Logger
	// OpenBrowser launches the user's browser; tests substitute a driver that
	// performs the callback requests itself.
	OpenBrowser func(pageURL string) error
	// Validator pre-checks the captured credential's audience before the flow
	// returns it. Left nil, one is built on demand; the backend re-verifies
	// regardless, so a validator that cannot be built only logs a warning.
	Validator GoogleTokenValidator
}

// Flow runs a localhost Google sign-in: it serves the embedded sign-in page
// on a loopback port, opens the user's browser at it, and waits for the page
// to deliver the resulting ID token credential.
type Flow struct {
	configuration FlowConfig
	logger        *zap.Logger
	state         string
}

// NewFlow validates the configuration and mints the per-flow state value.
func NewFlow(configuration FlowConfig) (*Flow, error) {
	if configuration.GoogleClientID == "" {
		return nil, fmt.Errorf("oauth.flow.new: %w", errMissingGoogleClientID)
	}
	if configuration.ListenAddress == "" {
		configuration.ListenAddress = "127.0.0.1:0"
	}
	if configuration.Timeout <= 0 {
		configuration.Timeout = defaultFlowTimeout
	}
	if configuration.OpenBrowser == nil {
		configuration.OpenBrowser = browser.OpenURL
	}
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	state, stateErr := mintState()
	if stateErr != nil {
		return nil, stateErr
	}
	return &Flow{
		configuration: configuration,
		logger:        logger,
		state:         state,
	}, nil
}

// Prompt blocks until the browser delivers a credential, the flow fails, or
// the timeout elapses. The returned credential is a Google ID token ready for
// the backend's OAuth exchange endpoint.
func (flow *Flow) Prompt(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, flow.configuration.Timeout)
	defer cancel()

	validator := flow.configuration.Validator
	if validator == nil {
		built, buildErr := buildGoogleTokenValidator(ctx)
		if buildErr != nil {
			flow.logger.Warn("google token validator unavailable; skipping audience pre-check",
				zap.String("code", "oauth.flow.validator_unavailable"),
				zap.Error(buildErr))
		} else {
			validator = built
		}
	}

	credentialChannel := make(chan string, 1)
	errorChannel := make(chan error, 1)
	engine := flow.buildEngine(validator, credentialChannel, errorChannel)

	listener, listenErr := net.Listen("tcp", flow.configuration.ListenAddress)
	if listenErr != nil {
		return "", fmt.Errorf("oauth.flow.listen: %w", listenErr)
	}
	server := &http.Server{Handler: engine}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errorChannel <- fmt.Errorf("oauth.flow.serve: %w", serveErr)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	pageURL := fmt.Sprintf("http://%s/", listener.Addr().String())
	flow.logger.Info("opening browser for sign-in",
		zap.String("code", "oauth.flow.open_browser"),
		zap.String("url", pageURL))
	if openErr := flow.configuration.OpenBrowser(pageURL); openErr != nil {
		return "", fmt.Errorf("oauth.flow.open_browser: %w", openErr)
	}

	select {
	case credential := <-credentialChannel:
		return credential, nil
	case flowErr := <-errorChannel:
		return "", flowErr
	case <-ctx.Done():
		return "", ErrFlowTimeout
	}
}

type credentialDelivery struct {
	Credential string `json:"credential"`
	State      string `json:"state"`
}

func (flow *Flow) buildEngine(validator GoogleTokenValidator, credentialChannel chan<- string, errorChannel chan<- error) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/", func(contextGin *gin.Context) {
		ServeSignInPage(contextGin)
	})
	engine.GET("/config.js", func(contextGin *gin.Context) {
		ServeSignInConfig(contextGin, SignInConfig{
			GoogleClientID: flow.configuration.GoogleClientID,
			State:          flow.state,
		})
	})
	engine.POST("/credential", func(contextGin *gin.Context) {
		var delivery credentialDelivery
		if bindErr := contextGin.ShouldBindJSON(&delivery); bindErr != nil {
			serveResultPage(contextGin, http.StatusBadRequest, "Sign-In Failed", "The sign-in response could not be read.")
			return
		}
		if delivery.State != flow.state {
			flow.logger.Warn("sign-in callback state mismatch",
				zap.String("code", "oauth.flow.state_mismatch"))
			serveResultPage(contextGin, http.StatusBadRequest, "Sign-In Failed", "State verification failed.")
			errorChannel <- ErrStateMismatch
			return
		}
		if delivery.Credential == "" {
			serveResultPage(contextGin, http.StatusBadRequest, "Sign-In Failed", "No credential was returned.")
			errorChannel <- errEmptyCredential
			return
		}
		if validator != nil {
			if _, validateErr := validator.Validate(contextGin.Request.Context(), delivery.Credential, flow.configuration.GoogleClientID); validateErr != nil {
				flow.logger.Warn("credential failed audience pre-check",
					zap.String("code", "oauth.flow.audience_rejected"),
					zap.Error(validateErr))
				serveResultPage(contextGin, http.StatusBadRequest, "Sign-In Failed", "The Google credential was not issued for this application.")
				errorChannel <- fmt.Errorf("oauth.flow.audience: %w", validateErr)
				return
			}
		}
		serveResultPage(contextGin, http.StatusOK, "Sign-In Complete", "You are signed in. This window closes automatically.")
		credentialChannel <- delivery.Credential
	})
	return engine
}

func mintState() (string, error) {
	stateBytes := make([]byte, 16)
	if _, readErr := rand.Read(stateBytes); readErr != nil {
		return "", fmt.Errorf("oauth.flow.mint_state: %w", readErr)
	}
	return hex.EncodeToString(stateBytes), nil
}
