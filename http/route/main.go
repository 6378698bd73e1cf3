package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/phnam/docnest-upload-service/http/controller"
	middlewares "github.com/phnam/docnest-upload-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)
	r.Use(middles.TraceMiddleware)

	r.GET("/health", ctrl.HealthCheck)

	apiRoutes := r.Group("/api/v1/documents")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		uploadRoutes := apiRoutes.Group("/uploads")
		{
			uploadRoutes.POST("/init", ctrl.InitUpload)
			uploadRoutes.POST("/direct", ctrl.DirectUpload)
			uploadRoutes.POST("/complete", ctrl.CompleteUpload)
			uploadRoutes.GET("/:id/progress", ctrl.GetUploadProgress)
		}

		fileRoutes := apiRoutes.Group("/files")
		{
			fileRoutes.GET("/", ctrl.ListFiles)
			fileRoutes.DELETE("/:id", ctrl.DeleteFile)
		}
	}

	return r
}
