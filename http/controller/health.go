package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/phnam/docnest-upload-service/utils"
)

func (ctrl *Controller) HealthCheck(c *gin.Context) {
	utils.JSON200(c, gin.H{"status": "ok"})
}
