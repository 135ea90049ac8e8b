package storage

import (
	"fmt"

	"perfmon-dashboard/src/helpers"
	"perfmon-dashboard/src/interfaces"
	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// NewArchive returns the archive selected by storage.db_type, or nil for "none".
func NewArchive(cfg *models.MConfig, log *logger.Logger) (interfaces.IArchive, error) {
	switch cfg.Storage.DBType {
	case "", "none":
		return nil, nil
	case "sqlite":
		return NewSQLiteArchive(cfg, log)
	case "postgres":
		return NewPostgresArchive(cfg, log)
	case "redis":
		return NewRedisArchive(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Storage.DBType)
	}
}

// -----------------------------------------------------------------------------

// ArchiveSnapshot writes record to the configured archive once. Network
// backends are retried; SQLite gets a single attempt. The archive is closed
// before returning. Failures never affect the loaded snapshot.
func ArchiveSnapshot(cfg *models.MConfig, log *logger.Logger, record models.MSnapshotRecord) error {
	archive, err := NewArchive(cfg, log)
	if err != nil {
		return helpers.NewDatabaseError("cannot create archive", err)
	}
	if archive == nil {
		return nil
	}
	defer archive.Close()

	retries := 1
	if cfg.Storage.DBType != "sqlite" {
		retries = cfg.Storage.MaxRetries
	}
	handler := helpers.NewErrorHandler(log)

	if err := handler.ExecuteWithRetry("archive connect", archive.Initialize, retries); err != nil {
		return err
	}
	if err := handler.ExecuteWithRetry("archive save", func() error {
		return archive.SaveSnapshot(record)
	}, retries); err != nil {
		return err
	}

	log.Info("Archived snapshot %s (%d counters) to %s", record.Stats.Fingerprint, len(record.Counters), cfg.Storage.DBType)
	return nil
}
