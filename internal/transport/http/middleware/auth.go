package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/talgatov/auth-api/internal/domain"
	"github.com/talgatov/auth-api/internal/response"
)

const (
	ctxUserKey      = "currentUser"
	ctxTokenHashKey = "sessionTokenHash"
)

// TokenResolver is the subset of token.Registry the middleware needs.
type TokenResolver interface {
	Resolve(ctx context.Context, plaintext string) (*domain.User, string, error)
}

// Auth resolves a Bearer token into the current user and stores the
// user plus the session's token hash in the gin context. Missing,
// malformed, revoked and expired tokens all get the same generic 401.
func Auth(tokens TokenResolver, mapper *response.Mapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			mapper.Render(c, domain.ErrUnauthenticated)
			return
		}

		plaintext := strings.TrimPrefix(header, "Bearer ")
		user, tokenHash, err := tokens.Resolve(c.Request.Context(), plaintext)
		if err != nil {
			mapper.Render(c, domain.ErrUnauthenticated)
			return
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxTokenHashKey, tokenHash)
		c.Next()
	}
}

// CurrentUser returns the user resolved by Auth, if any.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// SessionTokenHash returns the hash of the token the caller presented.
func SessionTokenHash(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxTokenHashKey)
	if !ok {
		return "", false
	}
	hash, ok := v.(string)
	return hash, ok
}
