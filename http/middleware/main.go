package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/phnam/docnest-upload-service/http/controller"
)

type Middlewares struct {
	CORSMiddleware  gin.HandlerFunc
	AuthMiddleware  gin.HandlerFunc
	TraceMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cors := CORSMiddleware(ctrl.Config.EnvConfig)
	auth := AuthMiddleware(ctrl.Config.EnvConfig)
	trace := TraceMiddleware(ctrl.Config.EnvConfig)

	return &Middlewares{
		CORSMiddleware:  cors,
		AuthMiddleware:  auth,
		TraceMiddleware: trace,
	}, nil
}
