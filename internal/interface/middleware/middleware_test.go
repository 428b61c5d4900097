package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-ecommerce/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *helpers.JWTManager {
	return helpers.NewJWTManager("middleware-test-secret-middleware", time.Hour)
}

func protectedRouter(tokens *helpers.JWTManager, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(tokens)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":  c.GetString(CtxUserIDKey),
			"isAdmin": c.GetBool(CtxIsAdminKey),
		})
	})
	r.GET("/me", handlers...)
	return r
}

func TestAuth(t *testing.T) {
	tokens := newTokens()
	valid, _, err := tokens.Sign(helpers.TokenPayload{UserID: "u-1", Email: "a@example.com"})
	require.NoError(t, err)
	other, _, err := helpers.NewJWTManager("a-different-secret-a-different-secret", time.Hour).
		Sign(helpers.TokenPayload{UserID: "u-1"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
	}{
		{name: "no token", prepare: func(r *http.Request) {}, wantCode: http.StatusUnauthorized},
		{name: "bearer header", prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, wantCode: http.StatusOK},
		{name: "lowercase scheme", prepare: func(r *http.Request) { r.Header.Set("Authorization", "bearer "+valid) }, wantCode: http.StatusOK},
		{name: "cookie", prepare: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: helpers.AccessCookieName, Value: valid})
		}, wantCode: http.StatusOK},
		{name: "foreign signature", prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+other) }, wantCode: http.StatusUnauthorized},
		{name: "garbage", prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc.def.ghi") }, wantCode: http.StatusUnauthorized},
		{name: "basic scheme", prepare: func(r *http.Request) { r.Header.Set("Authorization", "Basic "+valid) }, wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()
			protectedRouter(tokens).ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"userID":"u-1"`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tokens := newTokens()
	customer, _, _ := tokens.Sign(helpers.TokenPayload{UserID: "u-1"})
	admin, _, _ := tokens.Sign(helpers.TokenPayload{UserID: "u-2", IsAdmin: true})
	r := protectedRouter(tokens, RequireAdmin())

	for token, want := range map[string]int{customer: http.StatusForbidden, admin: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "cloudflare wins", headers: map[string]string{"CF-Connecting-IP": "203.0.113.9", "X-Forwarded-For": "198.51.100.1"}, want: "203.0.113.9"},
		{name: "left-most forwarded", headers: map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, want: "198.51.100.1"},
		{name: "invalid headers fall back", headers: map[string]string{"CF-Connecting-IP": "nope", "X-Forwarded-For": "nope"}, want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RealIP())
			var got string
			r.GET("/", func(c *gin.Context) { got = ClientIP(c) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.1:5555"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	var got string
	r.GET("/", func(c *gin.Context) { got = c.GetString("request_id") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, got, 36)
	assert.Equal(t, got, w.Header().Get(requestIDHeader))

	incoming := "3f0c2b1e-8a4d-4c3b-9d5e-6f7a8b9c0d1e"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, incoming)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, incoming, got)
}

func TestKeyFuncs(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	keys := map[string]string{}
	r.POST("/api/auth/login", func(c *gin.Context) {
		keys["ip"] = KeyByIP()(c)
		keys["path"] = KeyByIPAndPath()(c)
		keys["anon"] = KeyByUserID()(c)
		c.Set(CtxUserIDKey, "u-9")
		keys["user"] = KeyByUserID()(c)
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "rl:ip:198.51.100.7", keys["ip"])
	assert.Equal(t, "rl:path:/api/auth/login:ip:198.51.100.7", keys["path"])
	assert.Equal(t, "rl:user:anon:ip:198.51.100.7", keys["anon"])
	assert.Equal(t, "rl:user:u-9", keys["user"])
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()
	for ip, want := range map[string]bool{"10.1.2.3": true, "127.0.0.1": true, "192.168.0.5": true, "8.8.8.8": false, "unknown": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set("real_ip", ip)
		assert.Equal(t, want, allow(c), ip)
	}
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, PerMinute(1, KeyByIP())), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Equal(t, 0, remaining(5, 7))
	assert.Equal(t, 3, remaining(5, 2))
	assert.Equal(t, 0, resetSeconds(-1))
	assert.Equal(t, 2, resetSeconds(1001))
}

func TestAllowAny(t *testing.T) {
	allow := AllowAny(nil, AllowAdmin(), AllowPrivateIP())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("real_ip", "203.0.113.9")
	assert.False(t, allow(c))

	c.Set(CtxIsAdminKey, true)
	assert.True(t, allow(c))

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Set("real_ip", "::ffff:10.0.0.1")
	assert.True(t, allow(c))
}

func TestPerMinuteWithAllow(t *testing.T) {
	l := PerMinute(7, KeyByIP())
	assert.Equal(t, 7, l.Max)
	assert.Equal(t, time.Minute, l.Window)
	assert.Nil(t, l.Allow)
	assert.NotNil(t, l.WithAllow(AllowAdmin()).Allow)
	assert.Nil(t, l.Allow)
}
