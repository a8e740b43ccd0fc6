package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "session_token"

// SessionCookies signs session tokens carried in the session cookie so a
// tampered cookie is discarded before any store lookup.
type SessionCookies struct {
	secret []byte
	secure bool
}

// NewSessionCookies returns a cookie codec keyed by secret.
func NewSessionCookies(secret string, secure bool) SessionCookies {
	return SessionCookies{secret: []byte(secret), secure: secure}
}

func (c SessionCookies) sign(token string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(token))
	return token + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (c SessionCookies) verify(value string) (string, bool) {
	token, signature, ok := strings.Cut(value, ".")
	if !ok || token == "" {
		return "", false
	}
	got, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return "", false
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(token))
	if !hmac.Equal(got, mac.Sum(nil)) {
		return "", false
	}
	return token, true
}

func (c SessionCookies) set(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    c.sign(token),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func (c SessionCookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// token extracts the session token from a Bearer header, then from the
// signed cookie.
func (c SessionCookies) token(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if token, ok := c.verify(cookie.Value); ok {
			return token
		}
	}
	return ""
}
