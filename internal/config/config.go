package config

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config — неизменяемая конфигурация сервиса, собирается один раз
// при старте и передаётся компонентам по ссылке.
type Config struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
	// Префикс маршрутов data set API.
	APIPrefix string `yaml:"api_prefix" json:"api_prefix"`
	// Корень хранения файлов: и транзитных, и размещённых.
	DataFolder string `yaml:"data_folder" json:"data_folder"`
	// Глобальное разрешение отдавать файлы без аутентификации.
	AllowPublicBinaryAccess bool `yaml:"allow_public_binary_access" json:"allow_public_binary_access"`
	// Каталог BadgerDB (хранилище по умолчанию).
	StorePath string `yaml:"store_path" json:"store_path"`
	// DSN Postgres; если задан, используется вместо BadgerDB.
	MetaDSN string `yaml:"meta_dsn" json:"meta_dsn"`
	// Секрет подписи JWT.
	JWTSecret string `yaml:"jwt_secret" json:"-"`
	// Уровень логирования: debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Load читает YAML-конфигурацию (если файл есть), применяет
// ENV-переопределения и возвращает актуальную структуру.
func Load() (*Config, error) {
	c := &Config{
		ListenAddr: ":8080",
		APIPrefix:  "/api/data-sets",
		DataFolder: "_data",
		StorePath:  "_data/store",
		LogLevel:   "info",
	}

	path := getenv("CONFIG_PATH", "./config.yaml")
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// ENV override
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("API_PREFIX"); v != "" {
		c.APIPrefix = v
	}
	if v := os.Getenv("DATA_FOLDER"); v != "" {
		c.DataFolder = v
	}
	if v := os.Getenv("ALLOW_PUBLIC_BINARY_ACCESS"); v != "" {
		c.AllowPublicBinaryAccess = v == "true" || v == "1"
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("META_DSN"); v != "" {
		c.MetaDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	return c, nil
}

// SlogLevel переводит строковый уровень в slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
