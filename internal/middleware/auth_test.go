package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillquest_backend/internal/config"
	"skillquest_backend/internal/model"
	"skillquest_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtCfg = &config.JWTConfig{Secret: "middleware-secret", ExpireTime: time.Hour}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.StudentID})
	})
	r.GET("/me", handlers...)
	return r
}

func token(t *testing.T, role model.StudentRole, secret string) string {
	t.Helper()
	tok, err := util.GenerateJWT(&model.Student{ID: 42, Role: role, Email: "a@b.c"}, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(jwtCfg))

	cases := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bearer", "Bearer " + token(t, model.RoleStudent, jwtCfg.Secret), "", http.StatusOK},
		{"query", "", token(t, model.RoleStudent, jwtCfg.Secret), http.StatusOK},
		{"wrong secret", "Bearer " + token(t, model.RoleStudent, "other"), "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			url := "/me"
			if tc.query != "" {
				url += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(jwtCfg), RoleMiddleware(model.RoleStudent))

	for role, want := range map[model.StudentRole]int{
		model.RoleStudent: http.StatusOK,
		model.RoleAdmin:   http.StatusOK,
		"guest":           http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, role, jwtCfg.Secret))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "role %s", role)
	}
}
