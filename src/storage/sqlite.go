package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteArchive struct {
	sqlArchive
	Config *models.MConfig
}

// -----------------------------------------------------------------------------

func NewSQLiteArchive(cfg *models.MConfig, log *logger.Logger) (*SQLiteArchive, error) {
	return &SQLiteArchive{
		sqlArchive: sqlArchive{
			Logger: log,
			table:  func(name string) string { return name },
			rebind: questionMarks,
		},
		Config: cfg,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) Initialize() error {
	dsn := d.Config.Storage.DBPath
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create archive directory %s: %w", dir, err)
		}
	}

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	return d.attach(db, func() error {
		// PRAGMA optimizations
		if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
			d.Logger.Warning("Failed to set WAL mode: %v", err)
		}
		if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
			d.Logger.Warning("Failed to set synchronous mode: %v", err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
			d.Logger.Warning("Failed to set busy timeout: %v", err)
		}

		return d.createTables("REAL", "INTEGER")
	})
}
