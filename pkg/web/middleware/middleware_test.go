package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingReporter struct {
	recovered []any
}

func (r *recordingReporter) CaptureException(context.Context, error, map[string]string) {}

func (r *recordingReporter) Recover(_ context.Context, v any, _ map[string]string) {
	r.recovered = append(r.recovered, v)
}

func (r *recordingReporter) Close() error { return nil }

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	var seen string
	engine.GET("/x", func(c *gin.Context) {
		seen, _ = logger.RequestIDFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = serve(engine, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestRecoveryReportsPanic(t *testing.T) {
	reporter := &recordingReporter{}
	engine := gin.New()
	engine.Use(Recovery(logger.NewNoop(), reporter))
	engine.GET("/boom", func(c *gin.Context) { panic("invariant broken") })

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, reporter.recovered, 1)
	assert.Equal(t, "invariant broken", reporter.recovered[0])
}

func newJWT(t *testing.T) *security.JWTManager {
	t.Helper()
	m, err := security.NewJWTManager(&security.JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)
	return m
}

func TestAuth(t *testing.T) {
	m := newJWT(t)
	engine := gin.New()
	engine.Use(Auth(&AuthConfig{JWTManager: m, SkipPaths: []string{"/open"}}))
	engine.GET("/open", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	engine.GET("/me", func(c *gin.Context) {
		id, ok := GetPlayerID(c)
		require.True(t, ok)
		ctxID, _ := logger.PlayerIDFrom(c.Request.Context())
		assert.Equal(t, id, ctxID)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	t.Run("skip path", func(t *testing.T) {
		rec := serve(engine, httptest.NewRequest(http.MethodGet, "/open", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := serve(engine, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "token is missing")
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := m.GenerateToken(map[string]any{"uid": 42})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := serve(engine, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":42}`, rec.Body.String())
	})

	t.Run("token without player id", func(t *testing.T) {
		token, err := m.GenerateToken(map[string]any{"name": "x"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := serve(engine, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimitRejectsBurst(t *testing.T) {
	rl := NewRateLimiter(logger.NewNoop(), &RateLimitConfig{
		RequestsPerSecond: 0.001,
		Burst:             2,
		PerIP:             true,
		MaxLimiters:       10,
		SkipPaths:         []string{"/health"},
	})
	defer rl.Close()

	engine := gin.New()
	engine.Use(RateLimit(rl))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		rec := serve(engine, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	for i := 0; i < 5; i++ {
		rec = serve(engine, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
