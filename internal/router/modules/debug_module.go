package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
)

// DebugModule exposes expvar counters, including the request metrics middleware.
type DebugModule struct {
	Limiter gin.HandlerFunc
}

func NewDebugModule(limiter gin.HandlerFunc) *DebugModule { return &DebugModule{Limiter: limiter} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{gin.WrapH(expvar.Handler())}
	if m.Limiter != nil {
		handlers = append([]gin.HandlerFunc{m.Limiter}, handlers...)
	}
	rg.GET("/debug/vars", handlers...)
}
