package session

import (
	"errors"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const cookieIssuer = "highflying-themes"

// cookieClaims is the signed payload of the session cookie. The subject is
// the session ID; everything else lives server-side.
type cookieClaims struct {
	jwtlib.RegisteredClaims
}

func (m *Manager) makeCookie(sessionID string) (*http.Cookie, error) {
	now := time.Now()
	claims := cookieClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    cookieIssuer,
			Subject:   sessionID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func (m *Manager) expireCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// sessionIDFromRequest extracts and validates the session ID from the
// request cookie. A missing cookie is reported via http.ErrNoCookie.
func (m *Manager) sessionIDFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", err
	}
	parsed, err := jwtlib.ParseWithClaims(cookie.Value, &cookieClaims{}, func(t *jwtlib.Token) (interface{}, error) {
		return m.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}), jwtlib.WithIssuer(cookieIssuer))
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*cookieClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.Subject, nil
}
