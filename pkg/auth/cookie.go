package auth

import (
	"net/http"
	"time"

	"github.com/bcardhq/bcard-api/pkg/crypt"
)

// CookieName is the session cookie the token travels in.
const CookieName = "token"

// CookieBaker seals JWTs into the session cookie and back. Sealing gives
// the cookie tamper protection separate from the JWT signature.
type CookieBaker struct {
	sealer *crypt.Sealer
	secure bool
}

// NewCookieBaker builds a baker keyed from appKey. secure marks the
// cookie Secure (production deployments behind TLS).
func NewCookieBaker(appKey string, secure bool) *CookieBaker {
	return &CookieBaker{sealer: crypt.NewSealer(appKey), secure: secure}
}

// Bake seals token and wraps it in the session cookie, expiring in TokenTTL.
func (b *CookieBaker) Bake(token string) (*http.Cookie, error) {
	sealed, err := b.sealer.Seal(token)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    sealed,
		Path:     "/",
		Expires:  time.Now().Add(TokenTTL),
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteNoneMode,
	}, nil
}

// Open unseals a cookie value back into the JWT it carries.
func (b *CookieBaker) Open(cookieValue string) (string, error) {
	return b.sealer.Open(cookieValue)
}

// Expired returns the cookie written on logout: an immediately-expired
// placeholder overwriting the session. The token itself is never revoked
// server-side; a stolen token stays valid until its exp claim passes.
func (b *CookieBaker) Expired() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "logout",
		Path:     "/",
		Expires:  time.Now(),
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteNoneMode,
	}
}
