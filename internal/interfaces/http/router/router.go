package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by handlers that register their own routes
type RouteRegistrar interface {
	RegisterRoutes(r *gin.RouterGroup)
}

// Router wires handlers into the versioned API group
type Router struct {
	engine *gin.Engine
	api    *gin.RouterGroup
}

// New creates a Router with the /api/v1 group
func New(engine *gin.Engine) *Router {
	return &Router{
		engine: engine,
		api:    engine.Group("/api/v1"),
	}
}

// Register registers one or more route registrars on the API group
func (r *Router) Register(registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(r.api)
	}
}

// API returns the versioned API group for custom wiring
func (r *Router) API() *gin.RouterGroup {
	return r.api
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
