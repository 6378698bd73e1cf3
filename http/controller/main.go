package controller

import (
	"github.com/phnam/docnest-upload-service/config"
	"github.com/phnam/docnest-upload-service/infra"
	"github.com/phnam/docnest-upload-service/repository"
	"github.com/phnam/docnest-upload-service/service"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Upload     *service.UploadService
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}

	upload := service.NewUploadService(
		config.EnvConfig,
		repo,
		infra.Storage,
		infra.Redis,
		infra.Produce.DocumentIndex,
		infra.Logger,
	)

	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Upload:     upload,
	}
}
