package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oktaviandi/auth-portal/internal/interface/http"
	"github.com/oktaviandi/auth-portal/internal/interface/middleware"
	"github.com/oktaviandi/auth-portal/internal/session"
)

// PagesModule wires the HTML views, the Google OAuth flow, and logout on the
// engine root.
type PagesModule struct {
	Pages    *handlers.PageHandler
	Auth     *handlers.AuthHandler
	Sessions *session.Manager
}

func NewPagesModule(pages *handlers.PageHandler, auth *handlers.AuthHandler, sessions *session.Manager) *PagesModule {
	return &PagesModule{Pages: pages, Auth: auth, Sessions: sessions}
}

func (m *PagesModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Pages.Index)
	rg.GET("/login", m.Pages.Login)
	rg.GET("/register", m.Pages.Register)

	rg.GET("/auth/google", m.Auth.GoogleBegin)
	rg.GET("/auth/google/home", m.Auth.GoogleCallback)

	auth := rg.Group("/")
	auth.Use(middleware.RequireAuth(m.Sessions))
	{
		auth.GET("/home", m.Pages.Home)
		auth.GET("/logout", m.Auth.Logout)
	}
}
