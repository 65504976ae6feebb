package config

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fileflow/internal/db"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig
	Database db.Config
	Data     DataConfig
	Log      LogConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string
	Port int
}

// DataConfig locates the on-disk working areas.
type DataConfig struct {
	// Dir is the root under which per-config lifecycle folders are created.
	Dir string
	// MigrationsDir holds the SQL migration files.
	MigrationsDir string
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads config.yaml from the given path, with environment overrides
// prefixed FILEFLOW (FILEFLOW_DATABASE_HOST, FILEFLOW_SERVER_PORT, ...).
// A missing file is not an error; defaults and environment apply.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("FILEFLOW")
	v.AutomaticEnv()

	dbDefaults := db.DefaultConfig()
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)
	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.migrations_dir", "./migrations")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	for _, key := range []string{
		"server.host", "server.port",
		"database.host", "database.port", "database.user",
		"database.password", "database.dbname", "database.sslmode",
		"data.dir", "data.migrations_dir",
		"log.level", "log.format",
	} {
		v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
		logrus.Info("no config.yaml found, using defaults and env vars")
	}

	return Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Database: db.Config{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Data: DataConfig{
			Dir:           v.GetString("data.dir"),
			MigrationsDir: v.GetString("data.migrations_dir"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}, nil
}

// NewLogger builds the process logger from the log settings.
func NewLogger(cfg LogConfig) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
