package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oktaviandi/auth-portal/internal/interface/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded views for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

// PageHandler renders the HTML views.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index sends authenticated users home and everyone else to registration.
func (h *PageHandler) Index(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/home")
		return
	}
	c.Redirect(http.StatusFound, "/register")
}

func (h *PageHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

func (h *PageHandler) Register(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

// Home renders the protected landing page for the current user.
func (h *PageHandler) Home(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	c.HTML(http.StatusOK, "home.html", gin.H{"Title": "Home", "User": u})
}
