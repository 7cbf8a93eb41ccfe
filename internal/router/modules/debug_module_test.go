package modules

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestDebugModule_UsesLimiter(t *testing.T) {
	calls := 0
	limiter := func(c *gin.Context) {
		calls++
		if calls > 1 {
			c.AbortWithStatus(http.StatusTooManyRequests)
		}
	}
	r := gin.New()
	NewDebugModule(limiter).Register(&r.RouterGroup)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 2, calls)
}

func TestDebugModule_WithoutLimiter(t *testing.T) {
	r := gin.New()
	NewDebugModule(nil).Register(&r.RouterGroup)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
