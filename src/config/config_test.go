package config

import (
	"errors"
	"path/filepath"
	"testing"

	"perfmon-dashboard/src/helpers"
	"perfmon-dashboard/src/models"

	"github.com/longbridgeapp/assert"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("name: demo\n"))
	assert.Nil(t, err)

	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, DefaultCSVPath, cfg.Data.CSVPath)
	assert.Equal(t, DefaultEncoding, cfg.Data.Encoding)
	assert.Equal(t, ",", cfg.Data.Delimiter)
	assert.Equal(t, DefaultPerPage, cfg.Data.PerPage)
	assert.Equal(t, DefaultDBType, cfg.Storage.DBType)
	assert.Equal(t, DefaultRetries, cfg.Storage.MaxRetries)
	assert.Equal(t, DefaultRedisKey, cfg.Storage.RedisKeyPrefix)
	assert.Equal(t, 0, len(cfg.Categories))
}

func TestParse_FullDocument(t *testing.T) {
	doc := `
name: perfmon-dashboard
host: 0.0.0.0
port: 8080
log_level: DEBUG
grpc_host: 0.0.0.0
grpc_port: 50051
data:
  csv_path: logs/server.csv
  encoding: UTF-16
  delimiter: ";"
  per_page: 25
  max_file_mb: 128
categories:
  - name: cpu
    keywords: [processor]
  - name: Network
    keywords: [tcp, udp]
storage:
  db_type: SQLite
  db_path: data/perfmon.db
  retries: 2
`
	cfg, err := Parse([]byte(doc))
	assert.Nil(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 50051, cfg.GrpcPort)
	assert.Equal(t, "utf-16", cfg.Data.Encoding)
	assert.Equal(t, ";", cfg.Data.Delimiter)
	assert.Equal(t, 25, cfg.Data.PerPage)
	assert.Equal(t, 128, cfg.Data.MaxFileMB)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
	assert.Equal(t, 2, cfg.Storage.MaxRetries)
	assert.Equal(t, []models.MCategoryConfig{
		{Name: "cpu", Keywords: []string{"processor"}},
		{Name: "Network", Keywords: []string{"tcp", "udp"}},
	}, cfg.Categories)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed yaml", doc: "port: [1"},
		{name: "port out of range", doc: "port: 70000"},
		{name: "negative grpc port", doc: "grpc_port: -1"},
		{name: "grpc port clashes", doc: "port: 6000\ngrpc_port: 6000"},
		{name: "unknown encoding", doc: "data:\n  encoding: ebcdic"},
		{name: "multi-character delimiter", doc: "data:\n  delimiter: ';;'"},
		{name: "quote delimiter", doc: "data:\n  delimiter: '\"'"},
		{name: "negative per_page", doc: "data:\n  per_page: -5"},
		{name: "negative max_file_mb", doc: "data:\n  max_file_mb: -1"},
		{name: "unknown category", doc: "categories:\n  - name: Sound\n    keywords: [audio]"},
		{name: "other takes no keywords", doc: "categories:\n  - name: Other\n    keywords: [x]"},
		{name: "duplicate category", doc: "categories:\n  - name: CPU\n    keywords: [a]\n  - name: cpu\n    keywords: [b]"},
		{name: "no keywords", doc: "categories:\n  - name: GPU"},
		{name: "blank keyword", doc: "categories:\n  - name: GPU\n    keywords: ['  ']"},
		{name: "unknown db type", doc: "storage:\n  db_type: mongo"},
		{name: "sqlite without path", doc: "storage:\n  db_type: sqlite"},
		{name: "postgres without dsn", doc: "storage:\n  db_type: postgres"},
		{name: "redis without address", doc: "storage:\n  db_type: redis"},
		{name: "negative retries", doc: "storage:\n  retries: -2"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Parse([]byte(test.doc))
			assert.True(t, cfg == nil)

			var cfgErr *helpers.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestNewConfig_MissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	var cfgErr *helpers.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Port = 5050
	cfg.Data.CSVPath = "exports/Performance Counter.csv"
	cfg.Categories = []models.MCategoryConfig{{Name: "Disk", Keywords: []string{"nvme"}}}
	assert.Nil(t, cfg.Validate())
	assert.Nil(t, cfg.Save(path))

	loaded, err := NewConfig(path)
	assert.Nil(t, err)
	assert.Equal(t, cfg.MConfig, loaded.MConfig)
}

func TestDefault_IsValid(t *testing.T) {
	assert.Nil(t, Default().Validate())
}

func TestNewConfig_ShippedDefault(t *testing.T) {
	cfg, err := NewConfig("../../config/default.yaml")
	assert.Nil(t, err)
	assert.Equal(t, 5, len(cfg.Categories))
	assert.Equal(t, "none", cfg.Storage.DBType)
}
