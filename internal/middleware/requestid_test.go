package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestIDTestRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		*seen = RequestIDFromContext(c)
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRequestIDGeneratesWhenAbsent(t *testing.T) {
	var seen string
	r := requestIDTestRouter(&seen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(HeaderXRequestID))
}

func TestRequestIDReusesWellFormedHeader(t *testing.T) {
	var seen string
	r := requestIDTestRouter(&seen)
	inbound := uuid.New().String()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderXRequestID, inbound)
	r.ServeHTTP(w, req)

	assert.Equal(t, inbound, seen)
	assert.Equal(t, inbound, w.Header().Get(HeaderXRequestID))
}

func TestRequestIDReplacesMalformedHeader(t *testing.T) {
	var seen string
	r := requestIDTestRouter(&seen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderXRequestID, "not-a-uuid")
	r.ServeHTTP(w, req)

	assert.NotEqual(t, "not-a-uuid", seen)
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
}
