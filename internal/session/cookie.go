package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the single cookie the browser keeps for the console.
const CookieName = "ifrs_session"

var ErrInvalidCookie = errors.New("invalid session cookie")

type cookieClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec signs and verifies the session cookie value.
type CookieCodec struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewCookieCodec(secret string, maxAge time.Duration) *CookieCodec {
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &CookieCodec{secret: []byte(secret), maxAge: maxAge, now: time.Now}
}

func (c *CookieCodec) MaxAge() time.Duration { return c.maxAge }

func (c *CookieCodec) Encode(sid string) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, cookieClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode returns the session id and whether the cookie is close enough to
// expiry that it should be reissued.
func (c *CookieCodec) Decode(raw string) (sid string, renew bool, err error) {
	if raw == "" {
		return "", false, ErrInvalidCookie
	}
	var claims cookieClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil || !token.Valid || claims.SID == "" {
		return "", false, ErrInvalidCookie
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Sub(c.now()) < c.maxAge/7 {
		renew = true
	}
	return claims.SID, renew, nil
}
