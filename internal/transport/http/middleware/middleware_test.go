package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"heartbeat-insights/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type fakeVerifier map[string]*domain.User

func (f fakeVerifier) VerifyToken(_ context.Context, tok string) (*domain.User, error) {
	if u, ok := f[tok]; ok {
		return u, nil
	}
	return nil, domain.ErrInvalidToken
}

func TestAuthAndRequireAdmin(t *testing.T) {
	v := fakeVerifier{
		"admin": {ID: "1", Role: domain.RoleAdmin},
		"user":  {ID: "2", Role: domain.RoleUser},
	}
	r := gin.New()
	r.GET("/me", Auth(v), func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c).ID) })
	r.GET("/admin", Auth(v), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		path, header string
		status       int
		msg          string
	}{
		{"/me", "", http.StatusUnauthorized, "no token provided"},
		{"/me", "Basic abc", http.StatusUnauthorized, "no token provided"},
		{"/me", "Bearer nope", http.StatusUnauthorized, "invalid token"},
		{"/admin", "Bearer user", http.StatusForbidden, "admin access required"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := serve(r, req)
		assert.Equal(t, tc.status, w.Code, tc.path+" "+tc.header)
		assert.Equal(t, tc.msg, message(t, w))
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer user")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestRequireRole(t *testing.T) {
	as := func(u *domain.User) gin.HandlerFunc {
		return func(c *gin.Context) {
			if u != nil {
				c.Set(KeyUser, u)
			}
			c.Next()
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	cases := []struct {
		name   string
		user   *domain.User
		roles  []domain.Role
		status int
		msg    string
	}{
		{"no_user", nil, []domain.Role{domain.RoleAdmin}, http.StatusUnauthorized, "unauthorized"},
		{"user_on_admin", &domain.User{Role: domain.RoleUser}, []domain.Role{domain.RoleAdmin}, http.StatusForbidden, "admin access required"},
		{"admin_on_user", &domain.User{Role: domain.RoleAdmin}, []domain.Role{domain.RoleUser}, http.StatusForbidden, "insufficient role"},
		{"either", &domain.User{Role: domain.RoleUser}, []domain.Role{domain.RoleUser, domain.RoleAdmin}, http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", as(tc.user), RequireRole(tc.roles...), ok)
			w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tc.status, w.Code)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, message(t, w))
			}
		})
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(0.001, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := func(ip string) *http.Request {
		q := httptest.NewRequest(http.MethodGet, "/", nil)
		q.RemoteAddr = ip + ":1234"
		return q
	}
	assert.Equal(t, http.StatusOK, serve(r, req("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(r, req("10.0.0.1")).Code)
	w := serve(r, req("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "too many requests", message(t, w))
	assert.Equal(t, http.StatusOK, serve(r, req("10.0.0.2")).Code)
}

func TestConcurrencyLimit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	r := gin.New()
	r.Use(ConcurrencyLimit(1))
	r.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	done := make(chan int)
	go func() { done <- serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code }()
	<-entered

	w := serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "server busy", message(t, w))

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusTeapot)
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "request body too large", message(t, w))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	req.ContentLength = -1
	assert.Equal(t, http.StatusTeapot, serve(r, req).Code)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok"))).Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(20 * time.Millisecond))
	r.GET("/", func(c *gin.Context) { <-c.Request.Context().Done() })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "request timed out", message(t, w))
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", message(t, w))
	assert.Equal(t, 1, logs.Len())
}

func TestRequestIDAndAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/x?token=abc&q=1", nil)
	req.Header.Set(KeyRequestID, "rid-1")
	w := serve(r, req)
	assert.Equal(t, "rid-1", w.Header().Get(KeyRequestID))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	ctx := entry.ContextMap()
	assert.Equal(t, "rid-1", ctx["rid"])
	assert.EqualValues(t, http.StatusNotFound, ctx["status"])
	assert.Equal(t, map[string][]string{"token": {"****"}, "q": {"1"}}, ctx["query"])

	w = serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestValidRequestID(t *testing.T) {
	cases := map[string]bool{
		"":                       false,
		"rid-1":                  true,
		"a1b2:c3_d4.e5":          true,
		"has space":              false,
		"line\nbreak":            false,
		"ünïcode":                false,
		strings.Repeat("a", 128): true,
		strings.Repeat("a", 129): false,
	}
	for rid, want := range cases {
		assert.Equal(t, want, validRequestID(rid), "%q", rid)
	}
}

func TestMetricsCountsRoutesAndRejections(t *testing.T) {
	v := fakeVerifier{"user": {ID: "2", Role: domain.RoleUser}}
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", Auth(v), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	forbidden := testutil.ToFloat64(authRejections.WithLabelValues("forbidden"))
	missing := testutil.ToFloat64(authRejections.WithLabelValues("missing_token"))
	routed := testutil.ToFloat64(httpReqTotal.WithLabelValues("/items/:id", http.MethodGet, "403"))

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Header.Set("Authorization", "Bearer user")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/items/7", nil)).Code)
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, forbidden+1, testutil.ToFloat64(authRejections.WithLabelValues("forbidden")))
	assert.Equal(t, missing+1, testutil.ToFloat64(authRejections.WithLabelValues("missing_token")))
	assert.Equal(t, routed+1, testutil.ToFloat64(httpReqTotal.WithLabelValues("/items/:id", http.MethodGet, "403")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpReqTotal.WithLabelValues("unmatched", http.MethodGet, "404")), 1.0)
	assert.Zero(t, testutil.ToFloat64(httpInFlight))
}
