package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("dev").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("prod").GetLevel())
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Middleware(NewWithWriter("prod", &buf)))
	r.GET("/rooms/:roomId", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
	})

	req := httptest.NewRequest(http.MethodGet, "/rooms/abc", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "/rooms/:roomId", line["path"])
	assert.EqualValues(t, 404, line["status"])
}

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
