package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/teamnest/internal/apikit"
	"github.com/tyemirov/teamnest/internal/oauth"
	"github.com/tyemirov/teamnest/internal/payments"
	"github.com/tyemirov/teamnest/internal/session"
	"github.com/tyemirov/teamnest/pkg/rolegate"
	"go.uber.org/zap"
)

const (
	configCodeMissingBaseURL        = "config.missing_base_url"
	configCodeMissingGoogleClientID = "config.missing_google_client_id"
	configCodeMissingConfirmURL     = "config.missing_payment_confirm_url"
	configCodeMissingPublishableKey = "config.missing_payment_publishable_key"
	configCodeCredentialStoreInit   = "config.credential_store_init"

	cliCodeNotLoggedIn = "cli.not_logged_in"
	cliCodeForbidden   = "cli.forbidden"
)

// appContext carries the wired client surface into every command.
type appContext struct {
	client  *apikit.Client
	gate    *rolegate.Gate
	logger  *zap.Logger
	metrics *apikit.CounterMetrics
}

// buildAppContext is a function variable so command tests can substitute a
// client bound to an httptest backend.
var buildAppContext = func(command *cobra.Command) (*appContext, error) {
	baseURL := viper.GetString("base_url")
	if baseURL == "" {
		return nil, configError(configCodeMissingBaseURL, "base_url must be provided")
	}

	logger, loggerErr := buildLogger(viper.GetBool("verbose"))
	if loggerErr != nil {
		return nil, loggerErr
	}

	store, storeErr := buildCredentialStore(command.Context(), logger)
	if storeErr != nil {
		return nil, fmt.Errorf("%s: %w", configCodeCredentialStoreInit, storeErr)
	}

	metrics := apikit.NewCounterMetrics()
	client, clientErr := apikit.NewClient(apikit.ClientConfig{
		BaseURL:        baseURL,
		RequestTimeout: viper.GetDuration("request_timeout"),
		RetryMax:       viper.GetInt("retry_max"),
		CacheTTL:       viper.GetDuration("cache_ttl"),
		Logger:         logger,
		Metrics:        metrics,
		Store:          store,
		OnSessionEnd: func() {
			fmt.Fprintln(command.ErrOrStderr(), "Session expired. Run 'teamnest login' to sign in again.")
		},
	})
	if clientErr != nil {
		return nil, clientErr
	}
	if initErr := client.Session().Init(command.Context()); initErr != nil {
		return nil, initErr
	}

	return &appContext{
		client:  client,
		gate:    rolegate.NewGate(logger),
		logger:  logger,
		metrics: metrics,
	}, nil
}

// promptGoogleCredential runs the browser sign-in flow; tests substitute it.
var promptGoogleCredential = func(ctx context.Context, googleClientID string, logger *zap.Logger) (string, error) {
	flow, flowErr := oauth.NewFlow(oauth.FlowConfig{
		GoogleClientID: googleClientID,
		Logger:         logger,
	})
	if flowErr != nil {
		return "", flowErr
	}
	return flow.Prompt(ctx)
}

// buildPaymentConfirmer wires the provider widget boundary; tests substitute it.
var buildPaymentConfirmer = func(logger *zap.Logger) (payments.Confirmer, error) {
	confirmURL := viper.GetString("payment_confirm_url")
	if confirmURL == "" {
		return nil, configError(configCodeMissingConfirmURL, "payment_confirm_url must be provided")
	}
	publishableKey := viper.GetString("payment_publishable_key")
	if publishableKey == "" {
		return nil, configError(configCodeMissingPublishableKey, "payment_publishable_key must be provided")
	}
	return payments.NewHTTPConfirmer(payments.HTTPConfirmerConfig{
		ConfirmEndpoint: confirmURL,
		PublishableKey:  publishableKey,
		Logger:          logger,
	})
}

func main() {
	if loadErr := godotenv.Load(); loadErr != nil && !os.IsNotExist(loadErr) {
		fmt.Fprintf(os.Stderr, "error loading .env file: %v\n", loadErr)
		os.Exit(1)
	}
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "teamnest",
		Short:         "Youth sports program client: classes, enrollments, payments, and coaching tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().String("base_url", "", "Backend API base URL")
	rootCmd.PersistentFlags().String("database_url", "", "Credential store URL (postgres:// or sqlite://; empty uses a per-user sqlite file)")
	rootCmd.PersistentFlags().String("google_client_id", "", "Google Web OAuth Client ID for browser sign-in")
	rootCmd.PersistentFlags().Duration("request_timeout", 10*time.Second, "Per-request timeout")
	rootCmd.PersistentFlags().Int("retry_max", 0, "Maximum transient retries per request (0 uses the default)")
	rootCmd.PersistentFlags().Duration("cache_ttl", 30*time.Second, "TTL for cached list responses")
	rootCmd.PersistentFlags().String("payment_confirm_url", "", "Payment provider confirm endpoint")
	rootCmd.PersistentFlags().String("payment_publishable_key", "", "Payment provider publishable key")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base_url"))
	_ = viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("database_url"))
	_ = viper.BindPFlag("google_client_id", rootCmd.PersistentFlags().Lookup("google_client_id"))
	_ = viper.BindPFlag("request_timeout", rootCmd.PersistentFlags().Lookup("request_timeout"))
	_ = viper.BindPFlag("retry_max", rootCmd.PersistentFlags().Lookup("retry_max"))
	_ = viper.BindPFlag("cache_ttl", rootCmd.PersistentFlags().Lookup("cache_ttl"))
	_ = viper.BindPFlag("payment_confirm_url", rootCmd.PersistentFlags().Lookup("payment_confirm_url"))
	_ = viper.BindPFlag("payment_publishable_key", rootCmd.PersistentFlags().Lookup("payment_publishable_key"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newRegisterCommand())
	rootCmd.AddCommand(newLogoutCommand())
	rootCmd.AddCommand(newWhoAmICommand())
	rootCmd.AddCommand(newChangePasswordCommand())
	rootCmd.AddCommand(newMenuCommand())
	rootCmd.AddCommand(newChildrenCommand())
	rootCmd.AddCommand(newClassesCommand())
	rootCmd.AddCommand(newEnrollCommand())
	rootCmd.AddCommand(newEnrollmentsCommand())
	rootCmd.AddCommand(newOrdersCommand())
	rootCmd.AddCommand(newPayCommand())
	rootCmd.AddCommand(newAttendanceCommand())
	rootCmd.AddCommand(newBadgesCommand())
	rootCmd.AddCommand(newEventsCommand())
	rootCmd.AddCommand(newAnnouncementsCommand())
	rootCmd.AddCommand(newPhotosCommand())
	rootCmd.AddCommand(newAdminCommand())

	return rootCmd
}

func configError(code, message string) error {
	return fmt.Errorf("%s: %s", code, message)
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return configuration.Build()
}

func buildCredentialStore(ctx context.Context, logger *zap.Logger) (session.CredentialStore, error) {
	databaseURL := viper.GetString("database_url")
	if databaseURL == "" {
		defaultURL, defaultErr := defaultCredentialStoreURL()
		if defaultErr != nil {
			return nil, defaultErr
		}
		databaseURL = defaultURL
	}
	store, storeErr := session.NewDatabaseCredentialStore(ctx, databaseURL)
	if storeErr != nil {
		return nil, storeErr
	}
	logger.Debug("using persistent credential store",
		zap.String("code", "cli.credential_store"),
		zap.String("driver", store.Driver()))
	return store, nil
}

func defaultCredentialStoreURL() (string, error) {
	configDir, configErr := os.UserConfigDir()
	if configErr != nil {
		return "", fmt.Errorf("cli.config_dir: %w", configErr)
	}
	storeDir := filepath.Join(configDir, "teamnest")
	if mkdirErr := os.MkdirAll(storeDir, 0o700); mkdirErr != nil {
		return "", fmt.Errorf("cli.config_dir: %w", mkdirErr)
	}
	return "sqlite://" + filepath.Join(storeDir, "credentials.db"), nil
}

// currentRole resolves the signed-in user's role: from the session when a
// login happened in this process, otherwise from the persisted access token's
// claims. The role is advisory for menu shaping; the backend authorizes.
func currentRole(app *appContext) (string, error) {
	if user := app.client.Session().User(); user != nil {
		return user.Role, nil
	}
	accessToken := app.client.Session().AccessToken()
	if accessToken == "" {
		return "", configError(cliCodeNotLoggedIn, "no session; run 'teamnest login' first")
	}
	claims, claimsErr := session.PeekAccessTokenClaims(accessToken)
	if claimsErr != nil {
		return "", claimsErr
	}
	return claims.UserRole, nil
}

func requireCapability(app *appContext, capability string) error {
	role, roleErr := currentRole(app)
	if roleErr != nil {
		return roleErr
	}
	if !app.gate.HasPermission(role, capability) {
		return configError(cliCodeForbidden, fmt.Sprintf("role %s may not perform %s", role, capability))
	}
	return nil
}

func formatCents(amountCents int64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%.2f %s", float64(amountCents)/100, currency)
}
