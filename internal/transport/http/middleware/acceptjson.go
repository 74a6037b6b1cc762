package middleware

import "github.com/gin-gonic/gin"

// AcceptJSON forces Accept: application/json on API requests so
// content negotiation never falls back to HTML error pages.
func AcceptJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Header.Set("Accept", "application/json")
		c.Next()
	}
}
