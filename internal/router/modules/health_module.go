package modules

import "github.com/gin-gonic/gin"

type HealthModule struct {
	Handler gin.HandlerFunc
}

func NewHealthModule(h gin.HandlerFunc) *HealthModule { return &HealthModule{Handler: h} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Handler)
}
