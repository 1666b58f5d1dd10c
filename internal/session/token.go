package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialExpiry reads the expiry claim out of a bearer credential without
// verifying the signature (the client has no key; validation is the
// server's job). Returns false for opaque or claimless tokens.
func CredentialExpiry(credential string) (time.Time, bool) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(credential, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// CredentialExpired reports whether the credential's expiry claim is in the
// past. Opaque tokens are never reported expired.
func CredentialExpired(credential string, now time.Time) bool {
	expiry, ok := CredentialExpiry(credential)
	return ok && expiry.Before(now)
}
