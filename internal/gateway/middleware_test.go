package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func TestLoggingMiddlewareCapturesStatus(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	loggingMiddleware(inner, testLog()).ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := requestIDMiddleware(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "trip-42")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "trip-42", rr.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(okHandler), []string{"http://planner.local"})

	req := httptest.NewRequest("GET", "/api/tools", nil)
	req.Header.Set("Origin", "http://planner.local")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "http://planner.local", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/api/tools", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestIsOriginAllowed(t *testing.T) {
	assert.False(t, isOriginAllowed("http://a", nil))
	assert.True(t, isOriginAllowed("http://a", []string{"*"}))
	assert.True(t, isOriginAllowed("http://a", []string{"http://b", "http://a"}))
	assert.False(t, isOriginAllowed("http://c", []string{"http://b"}))
}

func TestRequireToken(t *testing.T) {
	open := requireToken("", okHandler)
	rr := httptest.NewRecorder()
	open(rr, httptest.NewRequest("GET", "/api/tools", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	guarded := requireToken("s3cret", okHandler)

	rr = httptest.NewRecorder()
	guarded(rr, httptest.NewRequest("GET", "/api/tools", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Bearer")

	req := httptest.NewRequest("GET", "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	guarded(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest("GET", "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rr = httptest.NewRecorder()
	guarded(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCheckWebSocketOrigin(t *testing.T) {
	check := checkWebSocketOrigin([]string{"http://planner.local"})

	req := httptest.NewRequest("GET", "http://127.0.0.1:18790/ws", nil)
	assert.True(t, check(req), "no Origin header")

	req.Header.Set("Origin", "http://127.0.0.1:18790")
	assert.True(t, check(req), "same origin")

	req.Header.Set("Origin", "http://planner.local")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}
