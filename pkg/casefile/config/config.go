package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime parameters, read from the environment.
type Config struct {
	DBPath      string `envconfig:"CASEFILE_DB" default:"./casefile-archive.db"`
	BackupDir   string `envconfig:"CASEFILE_BACKUP_DIR" default:"./database_backups"`
	KeepBackups int    `envconfig:"CASEFILE_KEEP_BACKUPS" default:"10"`
	RulesPath   string `envconfig:"CASEFILE_RULES"`
	LogLevel    string `envconfig:"CASEFILE_LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment, honoring a local
// .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
