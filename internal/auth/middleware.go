package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	identityContextKey = "auth_identity"
	bearerPrefix       = "Bearer "
)

// GinMiddleware rejects requests without a valid bearer token and stores the
// caller identity on the request context.
func GinMiddleware(sessions *Sessions) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx.GetHeader("Authorization"))
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}
		identity, err := sessions.Validate(token)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}
		ctx.Set(identityContextKey, identity)
		ctx.Next()
	}
}

// IdentityFromContext returns the identity stored by GinMiddleware.
func IdentityFromContext(ctx *gin.Context) (Identity, bool) {
	value, exists := ctx.Get(identityContextKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}
