package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceIDMiddleware())
	r.GET("/s", SessionMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})
	return r
}

func TestSessionMiddleware(t *testing.T) {
	r := newEngine()

	cases := map[string]struct {
		header string
		want   int
	}{
		"present":    {"abc-123", http.StatusOK},
		"missing":    {"", http.StatusBadRequest},
		"colon":      {"a:b", http.StatusBadRequest},
		"whitespace": {"   ", http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/s", nil)
			if tc.header != "" {
				req.Header.Set(SessionHeader, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, tc.header, w.Body.String())
			}
		})
	}
}

func TestTraceIDReusedWhenValid(t *testing.T) {
	r := newEngine()
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/s", nil)
	req.Header.Set(TraceIDHeader, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/s", nil)
	req.Header.Set(TraceIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	_, err := uuid.Parse(w.Header().Get(TraceIDHeader))
	assert.NoError(t, err)
}
