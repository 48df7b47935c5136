package router

import "github.com/gin-gonic/gin"

// Registry collects feature modules and registers them in one pass. Page
// modules hang off the engine root; API modules off the /api group.
type Registry struct {
	Engine *gin.Engine
	Root   *gin.RouterGroup
	API    *gin.RouterGroup

	rootModules []Module
	apiModules  []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{
		Engine: engine,
		Root:   engine.Group("/"),
		API:    engine.Group("/api"),
	}
}

// Use applies middleware to both route groups. Call before RegisterAll.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.Root.Use(mw...)
	r.API.Use(mw...)
}

func (r *Registry) AddRoot(mod Module) {
	r.rootModules = append(r.rootModules, mod)
}

func (r *Registry) AddAPI(mod Module) {
	r.apiModules = append(r.apiModules, mod)
}

func (r *Registry) RegisterAll() {
	for _, m := range r.rootModules {
		m.Register(r.Root)
	}
	for _, m := range r.apiModules {
		m.Register(r.API)
	}
}
