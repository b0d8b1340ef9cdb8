package dlcf_library

import (
	_ "github.com/IsraelDcoder/Dlcf-library/docs"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterSwagger mounts the Swagger UI on a Gin engine.
// Default route: /swagger/*any
//
// Usage:
//
//	r := gin.Default()
//	dlcf_library.RegisterSwagger(r, "/swagger/*any")
//	r.Run(":8080")
//
// Then open http://localhost:8080/swagger/index.html
func RegisterSwagger(r *gin.Engine, path string) {
	if path == "" {
		path = "/swagger/*any"
	}
	r.GET(path, ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// RegisterSwaggerWithGroup mounts the Swagger UI on a Gin router group.
func RegisterSwaggerWithGroup(g *gin.RouterGroup, path string) {
	if path == "" {
		path = "/swagger/*any"
	}
	g.GET(path, ginSwagger.WrapHandler(swaggerFiles.Handler))
}
