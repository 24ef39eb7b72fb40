package middleware

import (
	"github.com/gin-gonic/gin"
)

// Cache-Control values used by the router.
const (
	NoCache = "no-cache"
	NoStore = "no-store"
)

// CacheControl sets the Cache-Control header on every response of a route.
func CacheControl(value string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}
