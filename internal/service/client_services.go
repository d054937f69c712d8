package service

import (
	"github.com/MKhiriev/go-task-keeper/internal/adapter"
	"github.com/MKhiriev/go-task-keeper/internal/config"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/merge"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
)

type ClientServices struct {
	SyncService ClientSyncService
	SyncJob     ClientSyncJob
}

func NewClientServices(storages *store.ClientStorages, remote adapter.RemoteStore, cfg config.ClientWorkers, logger *logger.Logger) *ClientServices {
	syncSvc := NewClientSyncService(storages, remote, merge.NewEngine(logger, mergeOptions(cfg)...), ClientSyncOptions{
		DebounceWindow: cfg.DebounceWindow,
		WriterTag:      utils.NewUUIDGenerator().Generate(),
	}, logger)

	return &ClientServices{
		SyncService: syncSvc,
		SyncJob:     NewClientSyncJob(syncSvc, logger),
	}
}

func mergeOptions(cfg config.ClientWorkers) []merge.Option {
	var opts []merge.Option
	if cfg.SilentConcurrentAdds {
		opts = append(opts, merge.WithSilentConcurrentAdds())
	}
	return opts
}
