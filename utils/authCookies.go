package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

func SetAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	setCookie(c, AccessTokenCookie, accessToken, AccessTokenExpiry)
	setCookie(c, RefreshTokenCookie, refreshToken, RefreshTokenExpiry)
}

func setCookie(c *gin.Context, name, value string, expiry time.Duration) {
	c.SetCookie(name, value, int(expiry.Seconds()), "/", "", secureCookies(), true)
}

func ClearAuthCookies(c *gin.Context) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secureCookies(), true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secureCookies(), true)
}

// secureCookies is off in gin debug mode so local http development works.
func secureCookies() bool {
	return gin.Mode() != gin.DebugMode
}
