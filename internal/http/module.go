// Package http defines how bounded contexts plug their routes into the API.
package http

import (
	"github.com/gin-gonic/gin"
)

// Module is implemented by every context that serves HTTP routes, such as
// transactions and documents.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups a module may mount on. Public sits
// under /api/v1 behind the per-IP limiter; Protected additionally requires
// a valid access token and exposes the caller through httpkit.
type RouterContext struct {
	Public    *gin.RouterGroup
	Protected *gin.RouterGroup
}
