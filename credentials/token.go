package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expirySkew is subtracted from the token expiry so calls are not issued
// with a token about to lapse mid-flight.
const expirySkew = 30 * time.Second

// BearerExpired reports whether a token is a JWT whose exp claim has passed.
//
// The engine treats credentials as opaque; this is a best-effort pre-flight
// check that avoids burning a provider's rate-limit slot on a call that is
// guaranteed to be rejected. The signature is NOT verified - the upstream is
// the authority on validity. Tokens that are not JWTs, or JWTs without an
// exp claim, are never considered expired locally.
func BearerExpired(token string) bool {
	return bearerExpiredAt(token, time.Now())
}

func bearerExpiredAt(token string, now time.Time) bool {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return now.After(exp.Time.Add(-expirySkew))
}
