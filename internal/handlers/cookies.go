package handlers

import (
	"net/http"
	"time"

	"github.com/vidhub/backend/internal/middleware"
	"github.com/vidhub/backend/internal/models"
)

const refreshTokenCookie = "refreshToken"

func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens, secure bool) {
	http.SetCookie(w, sessionCookie(middleware.AccessTokenCookie, tokens.AccessToken, tokens.AccessExpiresAt, secure))
	http.SetCookie(w, sessionCookie(refreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiresAt, secure))
}

func clearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		cookie := sessionCookie(name, "", time.Unix(0, 0), secure)
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}

func sessionCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
