package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinAuthenticate adapts the net/http Authenticator to Gin. It is
// failure-transparent: requests continue whether or not a principal was
// attached.
func GinAuthenticate(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		auth.Authenticate(next).ServeHTTP(c.Writer, c.Request)
	}
}

// GinRequirePrincipal is the downstream authorization gate for protected
// route groups: no principal means 401.
func GinRequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
