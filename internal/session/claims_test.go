package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintTestAccessToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		UserID:    "user-42",
		UserEmail: "parent@example.com",
		UserRole:  "PARENT",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestPeekAccessTokenClaims(t *testing.T) {
	expiresAt := time.Now().UTC().Add(10 * time.Minute).Truncate(time.Second)
	claims, err := PeekAccessTokenClaims(mintTestAccessToken(t, expiresAt))
	if err != nil {
		t.Fatalf("peek error: %v", err)
	}
	if claims.UserID != "user-42" || claims.UserEmail != "parent@example.com" || claims.UserRole != "PARENT" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.GetExpiresAt().Equal(expiresAt) {
		t.Fatalf("expected expiry %v, got %v", expiresAt, claims.GetExpiresAt())
	}
}

func TestPeekAccessTokenClaimsMalformed(t *testing.T) {
	for _, tokenText := range []string{"", "not-a-jwt", "a.b"} {
		if _, err := PeekAccessTokenClaims(tokenText); !errors.Is(err, ErrMalformedAccessToken) {
			t.Fatalf("expected ErrMalformedAccessToken for %q, got %v", tokenText, err)
		}
	}
}
