package apikit

import (
	"context"
	"errors"
	"fmt"

	"github.com/tyemirov/teamnest/internal/session"
	"go.uber.org/zap"
)

// AuthService handles login, registration, OAuth exchange, and logout.
// Credential exchanges go through the plain client: a 401 here means the
// submitted credential was bad, never that a token refresh is needed.
type AuthService struct {
	client *Client
}

// AuthResponse is the backend's login-shaped response. Every successful
// exchange (password, registration, OAuth) produces the same shape.
type AuthResponse struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	User         session.UserSummary `json:"user"`
}

// RegisterRequest creates a new parent account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

func (service *AuthService) adoptSession(ctx context.Context, response AuthResponse) (*session.UserSummary, error) {
	coordinator := service.client.coordinator
	if setErr := coordinator.SetTokens(ctx, response.AccessToken, response.RefreshToken); setErr != nil {
		return nil, setErr
	}
	user := response.User
	coordinator.SetUser(&user)
	if user.MustChangePassword {
		service.client.logger.Warn("password change required",
			zap.String("code", "auth.must_change_password"),
			zap.String("user_id", user.ID))
	}
	return &user, nil
}

// Login exchanges email and password for a session.
func (service *AuthService) Login(ctx context.Context, email string, password string) (*session.UserSummary, error) {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}
	var response AuthResponse
	if err := service.client.postPlainJSON(ctx, "auth/login", payload, &response); err != nil {
		return nil, err
	}
	return service.adoptSession(ctx, response)
}

// Register creates an account and adopts the returned session.
func (service *AuthService) Register(ctx context.Context, request RegisterRequest) (*session.UserSummary, error) {
	var response AuthResponse
	if err := service.client.postPlainJSON(ctx, "auth/register", request, &response); err != nil {
		return nil, err
	}
	return service.adoptSession(ctx, response)
}

// LoginWithGoogle forwards a Google Sign-In credential to the backend's OAuth
// exchange endpoint and treats the response like a normal login response.
func (service *AuthService) LoginWithGoogle(ctx context.Context, credential string) (*session.UserSummary, error) {
	payload := struct {
		Credential string `json:"credential"`
	}{Credential: credential}
	var response AuthResponse
	if err := service.client.postPlainJSON(ctx, "auth/google", payload, &response); err != nil {
		return nil, err
	}
	return service.adoptSession(ctx, response)
}

// Logout revokes the session server-side when possible and always clears the
// local session.
func (service *AuthService) Logout(ctx context.Context) error {
	if service.client.coordinator.AccessToken() != "" {
		if err := service.client.postJSON(ctx, "auth/logout", nil, nil); err != nil && !IsAuthError(err) {
			service.client.logger.Warn("server-side logout failed; clearing local session anyway",
				zap.String("code", "auth.logout.server_failed"),
				zap.Error(err))
		}
	}
	if clearErr := service.client.coordinator.Clear(ctx); clearErr != nil {
		return fmt.Errorf("auth.logout: %w", clearErr)
	}
	return nil
}

// ChangePassword replaces the password for the authenticated user.
func (service *AuthService) ChangePassword(ctx context.Context, currentPassword string, newPassword string) error {
	payload := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{CurrentPassword: currentPassword, NewPassword: newPassword}
	return service.client.postJSON(ctx, "auth/change-password", payload, nil)
}

// ErrNotLoggedIn is returned by operations that require an authenticated
// session when none is present.
var ErrNotLoggedIn = errors.New("auth.not_logged_in")
