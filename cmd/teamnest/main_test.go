package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/teamnest/internal/apikit"
	"github.com/tyemirov/teamnest/internal/payments"
	"github.com/tyemirov/teamnest/internal/session"
	"github.com/tyemirov/teamnest/pkg/rolegate"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func makeAccessToken(t *testing.T, role string) string {
	t.Helper()
	claims := session.AccessTokenClaims{
		UserID:    "user-1",
		UserEmail: "user@example.test",
		UserRole:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if signErr != nil {
		t.Fatalf("signing test token returned %v", signErr)
	}
	return signed
}

func runCommand(t *testing.T, arguments ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCommand()
	output := &bytes.Buffer{}
	rootCmd.SetOut(output)
	rootCmd.SetErr(output)
	rootCmd.SetArgs(arguments)
	executeErr := rootCmd.Execute()
	return output.String(), executeErr
}

func stubAppContext(t *testing.T, handler http.Handler, role string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := zaptest.NewLogger(t)
	store := session.NewMemoryCredentialStore()
	client, clientErr := apikit.NewClient(apikit.ClientConfig{
		BaseURL:      server.URL,
		Store:        store,
		Logger:       logger,
		RetryBackoff: time.Millisecond,
	})
	if clientErr != nil {
		t.Fatalf("NewClient returned %v", clientErr)
	}
	if role != "" {
		if setErr := client.Session().SetTokens(context.Background(), makeAccessToken(t, role), "refresh-token"); setErr != nil {
			t.Fatalf("SetTokens returned %v", setErr)
		}
	}

	previousBuilder := buildAppContext
	buildAppContext = func(command *cobra.Command) (*appContext, error) {
		return &appContext{
			client:  client,
			gate:    rolegate.NewGate(logger),
			logger:  logger,
			metrics: apikit.NewCounterMetrics(),
		}, nil
	}
	t.Cleanup(func() { buildAppContext = previousBuilder })
}

func TestLoginCommandPrintsSignedInUser(t *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/api/v1/auth/login" {
			responseWriter.WriteHeader(http.StatusNotFound)
			return
		}
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = responseWriter.Write([]byte(`{"access_token":"a","refresh_token":"r","user":{"id":"u1","email":"parent@example.test","role":"PARENT"}}`))
	})
	stubAppContext(t, handler, "")

	output, runErr := runCommand(t, "login", "--email", "parent@example.test", "--password", "hunter2")
	if runErr != nil {
		t.Fatalf("login returned %v", runErr)
	}
	if !strings.Contains(output, "Signed in as parent@example.test (PARENT)") {
		t.Fatalf("unexpected output %q", output)
	}
}

func TestLoginGoogleCommandExchangesPromptedCredential(t *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/api/v1/auth/google" {
			responseWriter.WriteHeader(http.StatusNotFound)
			return
		}
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = responseWriter.Write([]byte(`{"access_token":"a","refresh_token":"r","user":{"id":"u2","email":"coach@example.test","role":"COACH"}}`))
	})
	stubAppContext(t, handler, "")
	viper.Set("google_client_id", "client-id")
	t.Cleanup(func() { viper.Set("google_client_id", "") })

	previousPrompt := promptGoogleCredential
	promptGoogleCredential = func(ctx context.Context, googleClientID string, logger *zap.Logger) (string, error) {
		if googleClientID != "client-id" {
			t.Errorf("unexpected client id %q", googleClientID)
		}
		return "google-id-token", nil
	}
	t.Cleanup(func() { promptGoogleCredential = previousPrompt })

	output, runErr := runCommand(t, "login", "google")
	if runErr != nil {
		t.Fatalf("login google returned %v", runErr)
	}
	if !strings.Contains(output, "Signed in as coach@example.test (COACH)") {
		t.Fatalf("unexpected output %q", output)
	}
}

func TestAdminUsersRefusedForParentRole(t *testing.T) {
	stubAppContext(t, http.NotFoundHandler(), "PARENT")

	_, runErr := runCommand(t, "admin", "users")
	if runErr == nil {
		t.Fatal("expected a role gate error")
	}
	if !strings.Contains(runErr.Error(), cliCodeForbidden) {
		t.Fatalf("expected %s, got %v", cliCodeForbidden, runErr)
	}
}

func TestCommandsRequireSession(t *testing.T) {
	stubAppContext(t, http.NotFoundHandler(), "")

	_, runErr := runCommand(t, "menu")
	if runErr == nil {
		t.Fatal("expected an error without a session")
	}
	if !strings.Contains(runErr.Error(), cliCodeNotLoggedIn) {
		t.Fatalf("expected %s, got %v", cliCodeNotLoggedIn, runErr)
	}
}

type fakeConfirmer struct {
	result payments.WidgetResult
	err    error
}

func (confirmer fakeConfirmer) Confirm(ctx context.Context, clientSecret string) (payments.WidgetResult, error) {
	return confirmer.result, confirmer.err
}

func withConfirmerStub(t *testing.T, confirmer payments.Confirmer) {
	t.Helper()
	previous := buildPaymentConfirmer
	buildPaymentConfirmer = func(logger *zap.Logger) (payments.Confirmer, error) {
		return confirmer, nil
	}
	t.Cleanup(func() { buildPaymentConfirmer = previous })
}

func TestPayCommandConfirmsIntentAndCompletesOrder(t *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		switch request.URL.Path {
		case "/api/v1/payments/intents":
			_, _ = responseWriter.Write([]byte(`{"id":"pi_1","order_id":"order-1","client_secret":"cs_1","amount_cents":12500,"currency":"USD"}`))
		case "/api/v1/payments/pi_1/complete":
			_, _ = responseWriter.Write([]byte(`{"id":"order-1","status":"paid","total_cents":12500,"currency":"USD"}`))
		default:
			responseWriter.WriteHeader(http.StatusNotFound)
		}
	})
	stubAppContext(t, handler, "PARENT")
	withConfirmerStub(t, fakeConfirmer{result: payments.WidgetResult{
		Status:          payments.WidgetStatusSuccess,
		PaymentIntentID: "pi_1",
	}})

	output, runErr := runCommand(t, "pay", "order-1")
	if runErr != nil {
		t.Fatalf("pay returned %v", runErr)
	}
	if !strings.Contains(output, "Order order-1 is now paid.") {
		t.Fatalf("unexpected output %q", output)
	}
}

func TestPayCommandReportsDecline(t *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = responseWriter.Write([]byte(`{"id":"pi_2","order_id":"order-2","client_secret":"cs_2","amount_cents":5000,"currency":"USD"}`))
	})
	stubAppContext(t, handler, "PARENT")
	withConfirmerStub(t, fakeConfirmer{result: payments.WidgetResult{
		Status:  payments.WidgetStatusError,
		Message: "card declined",
	}})

	_, runErr := runCommand(t, "pay", "order-2")
	if runErr == nil {
		t.Fatal("expected a decline error")
	}
	if !strings.Contains(runErr.Error(), "card declined") {
		t.Fatalf("unexpected error %v", runErr)
	}
}

func TestBuildAppContextRequiresBaseURL(t *testing.T) {
	viper.Set("base_url", "")
	_, buildErr := buildAppContext(newRootCommand())
	if buildErr == nil || !strings.Contains(buildErr.Error(), configCodeMissingBaseURL) {
		t.Fatalf("expected %s, got %v", configCodeMissingBaseURL, buildErr)
	}
}

func TestDefaultCredentialStoreURLUsesSQLite(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	storeURL, urlErr := defaultCredentialStoreURL()
	if urlErr != nil {
		t.Fatalf("defaultCredentialStoreURL returned %v", urlErr)
	}
	if !strings.HasPrefix(storeURL, "sqlite://") || !strings.HasSuffix(storeURL, "credentials.db") {
		t.Fatalf("unexpected store URL %q", storeURL)
	}
}
