package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	GrpcHost   string            `yaml:"grpc_host"`
	GrpcPort   int               `yaml:"grpc_port"`
	Data       MDataConfig       `yaml:"data"`
	Categories []MCategoryConfig `yaml:"categories"`
	Storage    MStorageConfig    `yaml:"storage"`
}

type MDataConfig struct {
	CSVPath   string `yaml:"csv_path"`
	Encoding  string `yaml:"encoding"`  // utf-8, utf-16, windows-1252
	Delimiter string `yaml:"delimiter"` // single character, "," when empty
	PerPage   int    `yaml:"per_page"`
	MaxFileMB int    `yaml:"max_file_mb"` // 0 = derived from physical memory
}

// MCategoryConfig overrides one keyword rule. Order in the file is the match order.
type MCategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // none, sqlite, postgres, redis
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RedisAddr          string `yaml:"redis_addr"`
	RedisKeyPrefix     string `yaml:"redis_key_prefix"`
	MaxRetries         int    `yaml:"retries"`
}
