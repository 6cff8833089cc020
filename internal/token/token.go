package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expired reports whether the bearer token carries an exp claim in the past.
// Parsing is unverified: the storefront API holds the signing key and stays
// the authority on validity. This only exists to skip profile calls that are
// guaranteed to fail. Tokens that do not parse, or carry no exp claim, are
// not considered expired here and are left for the server to judge.
func Expired(tokenString string, now time.Time) bool {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Time.Before(now)
}
