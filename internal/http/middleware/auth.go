package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/linen-admin/internal/model"
	"github.com/nurpe/linen-admin/internal/service"
)

const principalKey = "principal"

type TokenParser interface {
	Parse(token string) (model.Principal, error)
}

type AdminChecker interface {
	RequireAdmin(ctx context.Context, principal model.Principal) error
}

type RoleResolver interface {
	Role(ctx context.Context, userID uuid.UUID) (model.Role, error)
}

// Auth requires a valid bearer access token and stores the caller's
// principal on the context.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			abort(c, http.StatusUnauthorized, "missing authorization header")
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		principal, err := parser.Parse(strings.TrimSpace(token))
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireActive lets through only callers with an active profile and stores
// their role on the principal. It must run after Auth.
func RequireActive(resolver RoleResolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "missing principal")
			return
		}
		role, err := resolver.Role(c.Request.Context(), principal.UserID)
		if err != nil {
			if errors.Is(err, service.ErrPermissionDenied) {
				abort(c, http.StatusForbidden, "account is not active")
				return
			}
			log.Error().Err(err).Str("user_id", principal.UserID.String()).Msg("profile check failed")
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		principal.Role = role
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin lets only active admins through. It must run after Auth. A role
// already resolved by RequireActive is used as is.
func RequireAdmin(checker AdminChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "missing principal")
			return
		}
		if principal.Role != "" {
			if principal.Role != model.RoleAdmin {
				abort(c, http.StatusForbidden, "admin access required")
				return
			}
			c.Next()
			return
		}
		if err := checker.RequireAdmin(c.Request.Context(), principal); err != nil {
			if errors.Is(err, service.ErrPermissionDenied) {
				abort(c, http.StatusForbidden, "admin access required")
				return
			}
			log.Error().Err(err).Str("user_id", principal.UserID.String()).Msg("admin check failed")
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "data": nil, "error": msg})
}
