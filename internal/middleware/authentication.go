package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"camphub/internal/managers"
	"camphub/internal/schemas"
	"camphub/internal/utils"
)

// PrincipalResolver resolves a verified token subject to an account.
type PrincipalResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*schemas.Account, error)
}

// RequireAuth is the authentication half of the access guard. It expects a
// bearer token in the Authorization header (falling back to the token
// cookie), verifies it, resolves the subject to an account and attaches
// the principal to the request context. Every failure mode yields the same
// 401 so the response shape leaks nothing about why.
func RequireAuth(jwtMgr managers.JWTMgr, resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			utils.AbortWithError(c, schemas.ErrNotAuthorized)
			return
		}

		subject, err := jwtMgr.ValidateJWT(token)
		if err != nil {
			utils.AbortWithError(c, schemas.ErrNotAuthorized)
			return
		}

		id, err := uuid.Parse(subject)
		if err != nil {
			utils.AbortWithError(c, schemas.ErrNotAuthorized)
			return
		}

		principal, err := resolver.FindByID(c.Request.Context(), id)
		if err != nil {
			utils.AbortWithError(c, schemas.ErrNotAuthorized)
			return
		}

		c.Set(utils.PrincipalKey.String(), principal)
		c.Next()
	}
}

// RequireRole is the authorization half of the guard: it admits only
// principals whose role is in the allowed set. It must be mounted after
// RequireAuth on the same route; it reads the principal the guard attached.
func RequireRole(roles ...schemas.Role) gin.HandlerFunc {
	allowed := make(map[schemas.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		principal := utils.GetPrincipal(c)
		if _, ok := allowed[principal.Role]; !ok {
			utils.AbortWithError(c, schemas.NewRoleForbidden(principal.Role))
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}

	return ""
}
