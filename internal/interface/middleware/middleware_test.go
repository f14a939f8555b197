package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-directory/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.Any("/users/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ip": c.GetString("real_ip"), "request_id": c.GetString("request_id")})
	})
	return r
}

func do(r http.Handler, method string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/users/1", nil)
	req.RemoteAddr = "198.51.100.10:4000"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRealIP(t *testing.T) {
	r := newEngine(RealIP())

	w := do(r, http.MethodGet, map[string]string{"CF-Connecting-IP": "203.0.113.1", "X-Forwarded-For": "203.0.113.2"})
	assert.Contains(t, w.Body.String(), `"ip":"203.0.113.1"`)

	w = do(r, http.MethodGet, map[string]string{"X-Forwarded-For": "203.0.113.2, 10.0.0.1"})
	assert.Contains(t, w.Body.String(), `"ip":"203.0.113.2"`)

	w = do(r, http.MethodGet, map[string]string{"X-Forwarded-For": "garbage"})
	assert.Contains(t, w.Body.String(), `"ip":"198.51.100.10"`)
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestIDMiddleware())

	w := do(r, http.MethodGet, nil)
	id := w.Header().Get(HeaderRequestID)
	require.NotEmpty(t, id)
	assert.Contains(t, w.Body.String(), id)

	given := "6f1c1f9e-8e0b-4a51-9a3e-0b4f0d2c7a11"
	w = do(r, http.MethodGet, map[string]string{HeaderRequestID: given})
	assert.Equal(t, given, w.Header().Get(HeaderRequestID))

	w = do(r, http.MethodGet, map[string]string{HeaderRequestID: "<script>"})
	assert.NotEqual(t, "<script>", w.Header().Get(HeaderRequestID))
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := helpers.NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimit(t *testing.T) {
	mr, rdb := newRedis(t)
	r := newEngine(RequestIDMiddleware(), RealIP(), RateLimit(rdb, nil, 2, time.Minute, KeyByIPAndRoute(), nil))

	for i := 0; i < 2; i++ {
		w := do(r, http.MethodPut, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(r, http.MethodPut, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"code":"TOO_MANY_REQUESTS"`)
	assert.Contains(t, w.Body.String(), `"status":429`)

	// other methods on the same route have their own window
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, nil).Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, nil).Code)
}

func TestRateLimit_Bypass(t *testing.T) {
	_, rdb := newRedis(t)
	r := newEngine(RealIP(), RateLimit(rdb, nil, 1, time.Minute, KeyByIPAndRoute(), AllowPrivateIP()))

	for i := 0; i < 3; i++ {
		w := do(r, http.MethodPut, map[string]string{"X-Forwarded-For": "10.1.2.3"})
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPut, nil).Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	rdb := helpers.NewRedisClient("127.0.0.1:1", "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	r := newEngine(RateLimit(rdb, nil, 1, time.Minute, KeyByIPAndRoute(), nil))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, nil).Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	r := newEngine(RateLimit(nil, nil, 1, time.Minute, KeyByIPAndRoute(), nil))
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, nil).Code)
}
