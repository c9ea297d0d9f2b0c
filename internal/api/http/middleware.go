package http

import (
	"net/http"
	"strings"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/internal/service"
	"github.com/gin-gonic/gin"
)

const identityContextKey = "identity"

// tokenFromRequest extracts the bearer token from the Authorization header
// or, failing that, the token query parameter used by websocket clients.
func tokenFromRequest(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return strings.TrimSpace(ctx.Query("token"))
}

// AuthMiddleware gates every request behind the session credential check.
// Failures are always the same generic unauthorized response.
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, err := auth.IdentityFromToken(tokenFromRequest(ctx))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx.Set(identityContextKey, identity)
		ctx.Next()
	}
}

func identityFromContext(ctx *gin.Context) (domain.Identity, bool) {
	value, ok := ctx.Get(identityContextKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}
