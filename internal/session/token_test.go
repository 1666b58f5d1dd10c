package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/snapcal/snapcal-cli/internal/session"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestCredentialExpiryReadsExpClaim(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	expiry, ok := session.CredentialExpiry(signedToken(t, exp))
	if !ok {
		t.Fatalf("expected expiry")
	}
	if !expiry.Equal(exp) {
		t.Fatalf("expected %v, got %v", exp, expiry)
	}
}

func TestCredentialExpiryMalformedToken(t *testing.T) {
	t.Parallel()

	if _, ok := session.CredentialExpiry("not-a-jwt"); ok {
		t.Fatalf("malformed token must report no expiry")
	}
	if _, ok := session.CredentialExpiry(""); ok {
		t.Fatalf("empty token must report no expiry")
	}
}

func TestCredentialExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	if session.CredentialExpired(signedToken(t, now.Add(time.Hour)), now) {
		t.Fatalf("future expiry must not read as expired")
	}
	if !session.CredentialExpired(signedToken(t, now.Add(-time.Hour)), now) {
		t.Fatalf("past expiry must read as expired")
	}
	// Tokens without a readable expiry are treated as not expired; the
	// server is the authority.
	if session.CredentialExpired("not-a-jwt", now) {
		t.Fatalf("unreadable token must not read as expired")
	}
}
