package modules

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	handlers "github.com/oksasatya/go-ddd-ecommerce/internal/interface/http"
	"github.com/oksasatya/go-ddd-ecommerce/pkg/helpers"
)

func newEngine() (*gin.Engine, *helpers.JWTManager) {
	gin.SetMode(gin.TestMode)
	tokens := helpers.NewJWTManager("modules-test-secret-modules-test", time.Hour)
	r := gin.New()
	api := r.Group("/api")
	NewAuthModule(handlers.NewAuthHandler(nil, nil, "localhost", false), tokens, nil).Register(api)
	NewProductModule(handlers.NewProductHandler(nil, nil), tokens, nil).Register(api)
	NewDebugModule(nil).Register(api)
	return r, tokens
}

func TestRouteTable(t *testing.T) {
	r, _ := newEngine()
	var got []string
	for _, rt := range r.Routes() {
		got = append(got, rt.Method+" "+rt.Path)
	}
	sort.Strings(got)
	assert.Equal(t, []string{
		"DELETE /api/products/:id",
		"GET /api/auth/me",
		"GET /api/categories",
		"GET /api/debug/vars",
		"GET /api/products",
		"GET /api/products/:id",
		"GET /api/products/search",
		"POST /api/auth/login",
		"POST /api/auth/logout",
		"POST /api/auth/register",
		"POST /api/products",
		"POST /api/products/:id/images",
		"PUT /api/products/:id",
	}, got)
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	r, tokens := newEngine()
	customer, _, _ := tokens.Sign(helpers.TokenPayload{UserID: "u-1"})

	for _, tc := range []struct {
		method, path, auth string
		want               int
	}{
		{http.MethodPost, "/api/products", "", http.StatusUnauthorized},
		{http.MethodDelete, "/api/products/p-1", "Bearer " + customer, http.StatusForbidden},
		{http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, tc.method+" "+tc.path)
	}
}

func TestDebugVarsServesExpvar(t *testing.T) {
	r, _ := newEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "memstats")
}
