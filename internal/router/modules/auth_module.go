package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oktaviandi/auth-portal/internal/interface/http"
	"github.com/oktaviandi/auth-portal/internal/interface/middleware"
)

// AuthModule wires the JSON auth API under /api.
// Public: POST /api/signup, POST /api/login
// Protected: GET /api/users/search
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/signup", m.Handler.Signup)
	rg.POST("/login", m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.RequireAuthJSON())
	{
		auth.GET("/users/search", m.Handler.Search)
	}
}
