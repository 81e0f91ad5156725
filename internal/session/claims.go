package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedAccessToken indicates the access token is not a parseable JWT.
var ErrMalformedAccessToken = errors.New("session.claims.malformed_token")

// AccessTokenClaims is the payload the backend embeds in access tokens.
type AccessTokenClaims struct {
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	UserRole  string `json:"user_role"`
	jwt.RegisteredClaims
}

// GetExpiresAt returns the expiry timestamp, or the zero time when absent.
func (claims *AccessTokenClaims) GetExpiresAt() time.Time {
	if claims == nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// PeekAccessTokenClaims decodes the claims of an access token without
// verifying its signature. The client has no signing key; the decoded values
// feed logging and expiry hints only, never authorization decisions.
func PeekAccessTokenClaims(accessToken string) (*AccessTokenClaims, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("session.claims.peek: %w", ErrMalformedAccessToken)
	}
	parser := jwt.NewParser()
	parsedToken, _, parseErr := parser.ParseUnverified(accessToken, &AccessTokenClaims{})
	if parseErr != nil {
		return nil, fmt.Errorf("session.claims.peek: %w", ErrMalformedAccessToken)
	}
	claims, ok := parsedToken.Claims.(*AccessTokenClaims)
	if !ok {
		return nil, fmt.Errorf("session.claims.peek: %w", ErrMalformedAccessToken)
	}
	return claims, nil
}
