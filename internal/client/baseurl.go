package client

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvBackendURL переменная окружения и ключ runtime-конфига с адресом API
	EnvBackendURL = "MIP_BACKEND_URL"
	// DefaultOrigin адрес сервера, относительно которого разрешаются относительные пути
	DefaultOrigin = "http://localhost:8080"
	// DefaultAPIPrefix префикс API сервера по умолчанию
	DefaultAPIPrefix = "/api"
)

// BuildBackendURL задается при сборке:
//
//	go build -ldflags "-X mip-notes/internal/client.BuildBackendURL=https://notes.example.com/api"
var BuildBackendURL string

// BaseURLOptions источники адреса API
type BaseURLOptions struct {
	// Override значение флага --backend-url, имеет наивысший приоритет
	Override string
	// RuntimeConfigFile файл (yaml, json, toml), который подкладывается при запуске и содержит MIP_BACKEND_URL
	RuntimeConfigFile string
	// Origin адрес для относительных путей, по умолчанию DefaultOrigin
	Origin string
	// Getenv для тестов, по умолчанию os.Getenv
	Getenv func(string) string
}

// ResolveBaseURL выбирает адрес API: значение времени выполнения (флаг, окружение, runtime-конфиг),
// затем BuildBackendURL. Пустой адрес и относительный путь разрешаются относительно Origin.
func ResolveBaseURL(opts BaseURLOptions) (string, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	runtimeValue, err := readRuntimeConfig(opts.RuntimeConfigFile)
	if err != nil {
		return "", err
	}

	raw := firstNonEmpty(opts.Override, getenv(EnvBackendURL), runtimeValue, BuildBackendURL)

	origin := opts.Origin
	if origin == "" {
		origin = DefaultOrigin
	}

	return resolve(origin, raw)
}

// readRuntimeConfig читает MIP_BACKEND_URL из runtime-конфига. Отсутствующий файл не ошибка.
func readRuntimeConfig(file string) (string, error) {
	if file == "" {
		return "", nil
	}
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType(strings.TrimLeft(filepath.Ext(file), "."))
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read runtime config %s: %w", file, err)
	}

	return strings.TrimSpace(v.GetString(EnvBackendURL)), nil
}

func resolve(origin, raw string) (string, error) {
	if raw == "" {
		raw = DefaultAPIPrefix
	}

	base, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", origin, err)
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid backend URL %q: %w", raw, err)
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported backend URL scheme %q", resolved.Scheme)
	}

	return strings.TrimRight(resolved.String(), "/"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
