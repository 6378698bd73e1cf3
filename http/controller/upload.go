package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/phnam/docnest-upload-service/http/controller/dto"
	"github.com/phnam/docnest-upload-service/service"
	"github.com/phnam/docnest-upload-service/utils"
)

func (ctrl *Controller) InitUpload(c *gin.Context) {
	ctx := c.Request.Context()

	clientID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] user_id not found in context")
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	var req dto.InitUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := ctrl.Upload.InitUpload(ctx, clientID, service.InitUploadInput{
		OriginalName:       req.OriginalName,
		MimeType:           req.MimeType,
		Size:               req.Size,
		Title:              req.Title,
		Content:            req.Content,
		AddToKnowledgeBase: req.AddToKnowledgeBase,
		Metadata:           req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSON201(c, dto.InitUploadResponse{
		ID:        result.ID,
		Key:       result.Key,
		UploadURL: result.UploadURL,
	})
}

func (ctrl *Controller) DirectUpload(c *gin.Context) {
	ctx := c.Request.Context()

	clientID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] user_id not found in context")
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	var req dto.DirectUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := ctrl.Upload.DirectUpload(ctx, clientID, service.DirectUploadInput{
		ID:           req.ID,
		Key:          req.Key,
		OriginalName: req.OriginalName,
		MimeType:     req.MimeType,
		Size:         req.Size,
		Content:      req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSON200(c, dto.UploadResponse{ID: result.ID, URL: result.URL})
}

func (ctrl *Controller) CompleteUpload(c *gin.Context) {
	ctx := c.Request.Context()

	clientID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] user_id not found in context")
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	var req dto.CompleteUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := ctrl.Upload.CompleteUpload(ctx, clientID, service.CompleteUploadInput{
		ID:  req.ID,
		Key: req.Key,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSON200(c, dto.UploadResponse{ID: result.ID, URL: result.URL})
}

func (ctrl *Controller) GetUploadProgress(c *gin.Context) {
	ctx := c.Request.Context()

	clientID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	progress, err := ctrl.Upload.Progress(ctx, clientID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSON200(c, progress)
}
