package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/phnam/docnest-upload-service/utils"
)

func (ctrl *Controller) ListFiles(c *gin.Context) {
	ctx := c.Request.Context()

	clientID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	files, err := ctrl.Upload.ListFiles(ctx, clientID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSON200(c, files)
}

func (ctrl *Controller) DeleteFile(c *gin.Context) {
	ctx := c.Request.Context()

	clientID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	id := c.Param("id")
	if id == "" {
		utils.JSON400(c, "id is required")
		return
	}

	if err := ctrl.Upload.DeleteFile(ctx, clientID, id); err != nil {
		respondError(c, err)
		return
	}

	utils.JSON200(c, gin.H{"deleted": id})
}
