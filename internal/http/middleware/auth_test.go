package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/linen-admin/internal/model"
	"github.com/nurpe/linen-admin/internal/service"
)

type stubParser struct {
	principal model.Principal
	err       error
}

func (p stubParser) Parse(string) (model.Principal, error) { return p.principal, p.err }

type stubChecker struct{ err error }

func (c stubChecker) RequireAdmin(context.Context, model.Principal) error { return c.err }

type stubResolver struct {
	role model.Role
	err  error
}

func (r stubResolver) Role(context.Context, uuid.UUID) (model.Role, error) { return r.role, r.err }

func newRouter(parser TokenParser, checker AdminChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(parser), func(c *gin.Context) {
		p, _ := MustPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID})
	})
	r.GET("/admin", Auth(parser), RequireAdmin(checker, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	id := uuid.New()
	r := newRouter(stubParser{principal: model.Principal{UserID: id}}, stubChecker{})

	rec := do(r, "/me", "Bearer abc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id.String())

	for _, header := range []string{"", "Basic abc", "Bearer "} {
		rec := do(r, "/me", header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Nil(t, body["data"])
	}
}

func TestAuthInvalidToken(t *testing.T) {
	r := newRouter(stubParser{err: errors.New("bad")}, stubChecker{})
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer abc").Code)
}

func TestRequireAdmin(t *testing.T) {
	parser := stubParser{principal: model.Principal{UserID: uuid.New()}}

	assert.Equal(t, http.StatusNoContent, do(newRouter(parser, stubChecker{}), "/admin", "Bearer x").Code)
	assert.Equal(t, http.StatusForbidden,
		do(newRouter(parser, stubChecker{err: service.ErrPermissionDenied}), "/admin", "Bearer x").Code)
	assert.Equal(t, http.StatusInternalServerError,
		do(newRouter(parser, stubChecker{err: errors.New("db down")}), "/admin", "Bearer x").Code)
}

func newActiveRouter(resolver RoleResolver, checker AdminChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	parser := stubParser{principal: model.Principal{UserID: uuid.New()}}
	r := gin.New()
	group := r.Group("", Auth(parser), RequireActive(resolver, zerolog.Nop()))
	group.GET("/me", func(c *gin.Context) {
		p, _ := MustPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"role": p.Role})
	})
	group.GET("/admin", RequireAdmin(checker, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireActive(t *testing.T) {
	rec := do(newActiveRouter(stubResolver{role: model.RoleStaff}, stubChecker{}), "/me", "Bearer x")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"role":"staff"}`, rec.Body.String())

	denied := stubResolver{err: service.ErrPermissionDenied}
	assert.Equal(t, http.StatusForbidden, do(newActiveRouter(denied, stubChecker{}), "/me", "Bearer x").Code)

	broken := stubResolver{err: errors.New("db down")}
	assert.Equal(t, http.StatusInternalServerError, do(newActiveRouter(broken, stubChecker{}), "/me", "Bearer x").Code)
}

func TestRequireAdminUsesResolvedRole(t *testing.T) {
	// the checker would deny; the role resolved by RequireActive decides
	checker := stubChecker{err: service.ErrPermissionDenied}

	assert.Equal(t, http.StatusNoContent,
		do(newActiveRouter(stubResolver{role: model.RoleAdmin}, checker), "/admin", "Bearer x").Code)
	assert.Equal(t, http.StatusForbidden,
		do(newActiveRouter(stubResolver{role: model.RoleStaff}, stubChecker{}), "/admin", "Bearer x").Code)
}
