package httputil

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const AuthCookieName = "auth_token"

// SetAuthCookie stores the access token in an HttpOnly cookie living as long as the token.
func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration, production bool) {
	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   production, // Only require HTTPS in production
	}

	// SameSite=None requires Secure=true, so use Lax for development
	if production {
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, cookie)
}

func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// GetTokenFromCookie extracts the JWT token from the auth cookie
func GetTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(AuthCookieName)
	if err != nil {
		return "", errors.New("auth cookie not found")
	}

	if cookie.Value == "" {
		return "", errors.New("auth cookie is empty")
	}

	return cookie.Value, nil
}

// GetTokenFromRequest prefers the Authorization header and falls back to the cookie.
func GetTokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(token), nil
		}
		return authHeader, nil
	}

	token, err := GetTokenFromCookie(r)
	if err == nil && token != "" {
		return token, nil
	}

	return "", errors.New("no auth token found in header or cookie")
}
