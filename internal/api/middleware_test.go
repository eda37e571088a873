package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"success logs at info", http.StatusOK, zapcore.InfoLevel},
		{"client error logs at warn", http.StatusNotFound, zapcore.WarnLevel},
		{"server error logs at error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(RequestIDMiddleware(), RequestLoggingMiddleware(zap.New(core)))
			router.GET("/test", func(c *gin.Context) { c.Status(tt.status) })

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(RequestIDHeader, "abc")
			router.ServeHTTP(httptest.NewRecorder(), req)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			fields := entry.ContextMap()
			assert.Equal(t, "abc", fields["request_id"])
			assert.Equal(t, "/test", fields["path"])
			assert.EqualValues(t, tt.status, fields["status"])
		})
	}
}

func TestGetRequestID_Generated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	var seen string
	router.GET("/test", func(c *gin.Context) { seen = GetRequestID(c) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}
