package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/phnam/docnest-upload-service/service"
	"github.com/phnam/docnest-upload-service/utils"
)

// respondError translates a service error into the matching HTTP response.
func respondError(c *gin.Context, err error) {
	var validation *service.ValidationError

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		utils.JSON401(c, "Unauthorized")
	case errors.As(err, &validation):
		utils.JSON400(c, validation.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.JSON404(c, "File not found")
	case errors.Is(err, service.ErrStoreUnavailable):
		utils.JSON503(c, "Object storage is unavailable")
	default:
		utils.JSON500(c, "Internal server error")
	}
}
