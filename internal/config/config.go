package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envPattern формат ${VAR} или ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults подставляет переменные окружения с поддержкой значений по умолчанию
func expandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		matches := envPattern.FindStringSubmatch(match)
		if len(matches) < 2 {
			return match
		}

		if value := os.Getenv(matches[1]); value != "" {
			return value
		}
		if len(matches) > 2 {
			return matches[2]
		}
		return ""
	})
}

// InitConfig читает конфигурационный файл и возвращает экземпляр конфигурации.
// Ключи без значения в файле берутся из defaults, если они есть.
func InitConfig[C any](configFile string) (*C, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	ext := strings.TrimLeft(filepath.Ext(configFile), ".")
	v.SetConfigFile(configFile)
	v.SetConfigType(ext)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig: %w", err)
	}

	// Заменяем ${VAR:-default} на значения и приводим типы
	for _, k := range v.AllKeys() {
		value := v.GetString(k)
		if !strings.Contains(value, "${") {
			continue
		}

		expanded := expandEnvWithDefaults(value)
		if expanded == "true" || expanded == "false" {
			v.Set(k, expanded == "true")
		} else if i, err := strconv.Atoi(expanded); err == nil {
			v.Set(k, i)
		} else if expanded == "" && defaults[k] != nil {
			v.Set(k, defaults[k])
		} else {
			v.Set(k, expanded)
		}
	}

	cfg := new(C)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}

	return cfg, nil
}

// Load читает конфигурацию сервиса и проверяет её
func Load(configFile string) (*Config, error) {
	cfg, err := InitConfig[Config](configFile)
	if err != nil {
		return nil, err
	}

	cfg.fillSections()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// fillSections создает отсутствующие секции, чтобы не проверять nil по всему коду
func (c *Config) fillSections() {
	if c.Logger == nil {
		c.Logger = &ConfigLogger{Level: "info", Format: "json"}
	}
	if c.Server == nil {
		c.Server = &ConfigServer{Host: "0.0.0.0", PortHTTP: 8080, PortGRPC: 50051, APIPrefix: "/api", GracefulShutdownTimeout: 10}
	}
	if c.Gateway == nil {
		c.Gateway = &ConfigGateway{CORSAllowedOrigins: "*"}
	}
	if c.Storage == nil {
		c.Storage = &ConfigStorage{Driver: StorageMongo, Database: "notes", Collection: "Notes"}
	}
	if c.Events == nil {
		c.Events = &ConfigEvents{RedisChannel: "notes-events"}
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			errs = append(errs, errors.New("storage.mongo_uri is required for mongo driver"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	if c.Server.PortHTTP <= 0 {
		errs = append(errs, errors.New("server.port_http must be positive"))
	}
	if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("server.api_prefix %q must start with /", c.Server.APIPrefix))
	}

	return errors.Join(errs...)
}
