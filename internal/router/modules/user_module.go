package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-user-service/internal/interface/http"
)

// UserModule registers the /users resource.
// Every route shares one per-IP limiter.
type UserModule struct {
	Handler *handlers.UserHandler
	Limiter gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, limiter gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Limiter: limiter}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	if m.Limiter != nil {
		users.Use(m.Limiter)
	}
	{
		users.POST("", m.Handler.Create)
		users.GET("", m.Handler.List)
		users.GET("/search", m.Handler.Search)
		users.GET("/:id", m.Handler.Get)
		users.PUT("/:id", m.Handler.Update)
		users.DELETE("/:id", m.Handler.Delete)
		users.POST("/:id/activate", m.Handler.Activate)
		users.POST("/:id/deactivate", m.Handler.Deactivate)
	}
}
