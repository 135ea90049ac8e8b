package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"perfmon-dashboard/src/analysis"
	"perfmon-dashboard/src/helpers"
	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"
	"perfmon-dashboard/src/perfmon"

	"github.com/longbridgeapp/assert"
)

const archiveCSV = "Time,% CPU Usage,Memory\\Available MBytes,Disk Reads/sec,Widget\n" +
	"10:00:00,10,2048,1,\n" +
	"10:00:01,30,1024,,\n"

func testRecord(t *testing.T) models.MSnapshotRecord {
	t.Helper()
	table, err := perfmon.Parse(strings.NewReader(archiveCSV), perfmon.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	table.Source = "archive.csv"
	table.Fingerprint = perfmon.Fingerprint([]byte(archiveCSV))

	facade, err := analysis.NewAnalysisFacade(nil, nil)
	if err != nil {
		t.Fatalf("facade: %v", err)
	}
	record := facade.BuildSnapshot(table).Record()
	record.Stats.LoadedAt = time.Unix(0, 1760608800123456789).UTC()
	return record
}

func sqliteConfig(t *testing.T) *models.MConfig {
	return &models.MConfig{
		Name: "perfmon-dashboard",
		Storage: models.MStorageConfig{
			DBType:     "sqlite",
			DBPath:     filepath.Join(t.TempDir(), "perfmon.db"),
			MaxRetries: 3,
		},
	}
}

func openSQLite(t *testing.T, cfg *models.MConfig) *SQLiteArchive {
	t.Helper()
	archive, err := NewSQLiteArchive(cfg, logger.NewNop())
	assert.Nil(t, err)
	assert.Nil(t, archive.Initialize())
	t.Cleanup(func() { archive.Close() })
	return archive
}

func TestSQLiteArchive_RoundTrip(t *testing.T) {
	archive := openSQLite(t, sqliteConfig(t))
	record := testRecord(t)

	assert.Nil(t, archive.SaveSnapshot(record))

	loaded, err := archive.LoadSnapshot(record.Stats.Fingerprint)
	assert.Nil(t, err)
	assert.Equal(t, record.Stats, loaded.Stats)
	assert.Equal(t, record.Counters, loaded.Counters)
	assert.Equal(t, record.Categories, loaded.Categories)
}

func TestSQLiteArchive_SaveReplaces(t *testing.T) {
	archive := openSQLite(t, sqliteConfig(t))
	record := testRecord(t)

	assert.Nil(t, archive.SaveSnapshot(record))
	record.Stats.Source = "renamed.csv"
	assert.Nil(t, archive.SaveSnapshot(record))

	loaded, err := archive.LoadSnapshot(record.Stats.Fingerprint)
	assert.Nil(t, err)
	assert.Equal(t, "renamed.csv", loaded.Stats.Source)
	assert.Equal(t, len(record.Counters), len(loaded.Counters))
}

func TestSQLiteArchive_NullStatistics(t *testing.T) {
	archive := openSQLite(t, sqliteConfig(t))
	record := testRecord(t)
	assert.Nil(t, archive.SaveSnapshot(record))

	var valid bool
	err := archive.DB.QueryRow("SELECT min IS NOT NULL FROM counter_summaries WHERE name = ?", "Widget").Scan(&valid)
	assert.Nil(t, err)
	assert.False(t, valid)
}

func TestSQLiteArchive_Errors(t *testing.T) {
	archive := openSQLite(t, sqliteConfig(t))

	_, err := archive.LoadSnapshot("0000000000000000")
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))

	record := testRecord(t)
	record.Stats.Fingerprint = ""
	assert.False(t, archive.SaveSnapshot(record) == nil)
}

func TestArchiveSnapshot(t *testing.T) {
	cfg := sqliteConfig(t)
	record := testRecord(t)

	assert.Nil(t, ArchiveSnapshot(cfg, logger.NewNop(), record))

	archive := openSQLite(t, cfg)
	loaded, err := archive.LoadSnapshot(record.Stats.Fingerprint)
	assert.Nil(t, err)
	assert.Equal(t, record.Stats, loaded.Stats)
}

func TestArchiveSnapshot_Disabled(t *testing.T) {
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "none"}}
	assert.Nil(t, ArchiveSnapshot(cfg, logger.NewNop(), testRecord(t)))
}

func TestArchiveSnapshot_Unreachable(t *testing.T) {
	cfg := &models.MConfig{
		Name:    "perfmon-dashboard",
		Storage: models.MStorageConfig{DBType: "redis", RedisAddr: "127.0.0.1:1", RedisKeyPrefix: "perfmon", MaxRetries: 1},
	}

	err := ArchiveSnapshot(cfg, logger.NewNop(), testRecord(t))
	var dbErr *helpers.DatabaseError
	assert.True(t, errors.As(err, &dbErr))
}

func TestNewArchive(t *testing.T) {
	tests := []struct {
		dbType  string
		wantNil bool
		wantErr bool
	}{
		{dbType: "none", wantNil: true},
		{dbType: "", wantNil: true},
		{dbType: "sqlite"},
		{dbType: "postgres"},
		{dbType: "redis"},
		{dbType: "mongo", wantNil: true, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.dbType, func(t *testing.T) {
			cfg := &models.MConfig{Name: "perfmon-dashboard", Storage: models.MStorageConfig{DBType: test.dbType}}
			archive, err := NewArchive(cfg, logger.NewNop())
			assert.Equal(t, test.wantErr, err != nil)
			assert.Equal(t, test.wantNil, archive == nil)
		})
	}
}

func TestRedisArchive_Keys(t *testing.T) {
	archive, err := NewRedisArchive(&models.MConfig{Storage: models.MStorageConfig{RedisKeyPrefix: "pm"}}, logger.NewNop())
	assert.Nil(t, err)
	assert.Equal(t, "pm:snapshot:abc", archive.snapshotKey("abc"))
	assert.Equal(t, "pm:latest", archive.latestKey())
	assert.Nil(t, archive.Close())
}

func TestDollarPlaceholders(t *testing.T) {
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", dollarPlaceholders("SELECT a FROM t WHERE b = ? AND c = ?"))
	assert.Equal(t, "DELETE FROM t", dollarPlaceholders("DELETE FROM t"))
}

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "perfmon_dashboard", SchemaName("perfmon-dashboard"))
	assert.Equal(t, "my_app_v2", SchemaName(" My App.v2 "))
	assert.Equal(t, "", SchemaName("***"))

	_, err := NewPostgresArchive(&models.MConfig{Name: "***"}, logger.NewNop())
	assert.False(t, err == nil)
}

func TestSQLiteCreatesDataDirectory(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "data", "nested", "perfmon.db")

	openSQLite(t, cfg)

	info, err := os.Stat(filepath.Dir(cfg.Storage.DBPath))
	assert.Nil(t, err)
	assert.True(t, info.IsDir())
}

func TestAttach_ClosesConnectionOnFailedSetup(t *testing.T) {
	archive := &sqlArchive{Logger: logger.NewNop(), table: func(name string) string { return name }, rebind: questionMarks}

	failed, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "failed.db"))
	assert.Nil(t, err)
	cause := errors.New("permission denied for database")

	err = archive.attach(failed, func() error { return cause })
	assert.True(t, errors.Is(err, cause))
	assert.True(t, archive.DB == nil)
	assert.Equal(t, "sql: database is closed", failed.Ping().Error())
	assert.Nil(t, archive.Close())

	// the next attempt starts from a clean archive
	ok, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "ok.db"))
	assert.Nil(t, err)
	assert.Nil(t, archive.attach(ok, func() error { return archive.createTables("REAL", "INTEGER") }))
	assert.True(t, archive.DB == ok)
	assert.Nil(t, archive.Close())
}
