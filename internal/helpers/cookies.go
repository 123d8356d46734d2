package helpers

import (
	"github.com/gin-gonic/gin"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	SessionCookie      = "session_id"

	refreshTokenMaxAge = 3600 * 24 * 30
	sessionMaxAge      = 3600 * 24 * 365
)

func secureCookies() bool {
	return gin.Mode() == gin.ReleaseMode
}

// SetAuthCookies stores a Supabase session in http-only cookies.
func SetAuthCookies(c *gin.Context, token *types.TokenResponse) {
	secure := secureCookies()
	c.SetCookie(AccessTokenCookie, token.AccessToken, token.ExpiresIn, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, token.RefreshToken, refreshTokenMaxAge, "/", "", secure, true)
}

func ClearAuthCookies(c *gin.Context) {
	secure := secureCookies()
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

func SetSessionCookie(c *gin.Context, session string) {
	c.SetCookie(SessionCookie, session, sessionMaxAge, "/", "", secureCookies(), true)
}
