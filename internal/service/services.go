package service

import (
	"fmt"

	"github.com/MKhiriev/go-task-keeper/internal/config"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/models"
)

type Services struct {
	AuthService    AuthService
	NodeService    NodeService
	AppInfoService AppInfoService
}

func NewServices(storages *store.Storages, cfg *config.StructuredConfig, build models.AppBuildInfo, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, build, logger)
	if err != nil {
		return nil, fmt.Errorf("app info service: %w", err)
	}

	nodeService := NewNodeValidationService().Wrap(
		NewNodeService(storages.NodeRepository, NewBroker(), logger),
	)

	return &Services{
		AuthService:    NewAuthService(cfg.App, logger),
		NodeService:    nodeService,
		AppInfoService: appInfo,
	}, nil
}
