package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/steeveross-eng/huntiq-telemetry/internal/external"
)

const principalKey = "principal"

// Auth resolves the request's bearer token into a Principal and stores it
// on the gin context. Anonymous requests are let through; handlers that
// require an identified caller check PrincipalFrom themselves, since
// some routes (e.g. position ingestion) accept anonymous callers per
// spec.md §4.L.
func Auth(authorizer external.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		principal, err := authorizer.ResolvePrincipal(c.Request.Context(), token)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimPrefix(header, prefix)
	}
	return header
}

// PrincipalFrom returns the Principal resolved by Auth for this request.
func PrincipalFrom(c *gin.Context) external.Principal {
	if p, ok := c.Get(principalKey); ok {
		if principal, ok := p.(external.Principal); ok {
			return principal
		}
	}
	return external.Anonymous
}
