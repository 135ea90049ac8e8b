package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresArchive struct {
	sqlArchive
	Config *models.MConfig
	Schema string
}

// -----------------------------------------------------------------------------

func NewPostgresArchive(cfg *models.MConfig, log *logger.Logger) (*PostgresArchive, error) {
	schema := SchemaName(cfg.Name)
	if schema == "" {
		return nil, fmt.Errorf("cannot derive a schema name from %q", cfg.Name)
	}

	return &PostgresArchive{
		sqlArchive: sqlArchive{
			Logger: log,
			table:  func(name string) string { return fmt.Sprintf(`"%s"."%s"`, schema, name) },
			rebind: dollarPlaceholders,
		},
		Config: cfg,
		Schema: schema,
	}, nil
}

// -----------------------------------------------------------------------------

// SchemaName turns the application name into a safe schema identifier.
func SchemaName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-' || r == '.' || unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	return b.String()
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	err = d.attach(db, func() error {
		if _, err := db.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
		}
		return d.createTables("DOUBLE PRECISION", "BOOLEAN")
	})
	if err != nil {
		return err
	}

	d.Logger.Info("PostgresArchive initialized successfully (Schema: %s)", d.Schema)
	return nil
}
