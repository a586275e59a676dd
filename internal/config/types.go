package config

// ConfigLogger настройки логирования
type ConfigLogger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json или text
}

// ConfigServer настройки сервера
type ConfigServer struct {
	Host                    string `mapstructure:"host"`
	PortHTTP                int    `mapstructure:"port_http"`
	PortGRPC                int    `mapstructure:"port_grpc"`
	APIPrefix               string `mapstructure:"api_prefix"`
	HTTPReadTimeout         int    `mapstructure:"http_read_timeout"`
	HTTPWriteTimeout        int    `mapstructure:"http_write_timeout"`
	HTTPIdleTimeout         int    `mapstructure:"http_idle_timeout"`
	HTTPReadHeaderTimeout   int    `mapstructure:"http_read_header_timeout"`
	GracefulShutdownTimeout int    `mapstructure:"graceful_shutdown_timeout"`
}

// ConfigGateway настройки HTTP слоя: CORS и rate limiting
type ConfigGateway struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
}

// ConfigStorage настройки хранилища заметок
type ConfigStorage struct {
	Driver         string `mapstructure:"driver"` // mongo или memory
	MongoURI       string `mapstructure:"mongo_uri"`
	Database       string `mapstructure:"database"`
	Collection     string `mapstructure:"collection"`
	ConnectTimeout int    `mapstructure:"connect_timeout"`
}

// ConfigEvents настройки публикации событий заметок
type ConfigEvents struct {
	RedisURL     string `mapstructure:"redis_url"`
	RedisChannel string `mapstructure:"redis_channel"`
}

// Config основная структура конфигурации
type Config struct {
	Logger  *ConfigLogger  `mapstructure:"logger"`
	Server  *ConfigServer  `mapstructure:"server"`
	Gateway *ConfigGateway `mapstructure:"gateway"`
	Storage *ConfigStorage `mapstructure:"storage"`
	Events  *ConfigEvents  `mapstructure:"events"`
}

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// defaults значения по умолчанию, применяемые до чтения файла
var defaults = map[string]any{
	"logger.level":                     "info",
	"logger.format":                    "json",
	"server.host":                      "0.0.0.0",
	"server.port_http":                 8080,
	"server.port_grpc":                 50051,
	"server.api_prefix":                "/api",
	"server.http_read_timeout":         10,
	"server.http_write_timeout":        10,
	"server.http_idle_timeout":         60,
	"server.http_read_header_timeout":  5,
	"server.graceful_shutdown_timeout": 10,
	"gateway.cors_allowed_origins":     "*",
	"gateway.cors_max_age":             86400,
	"gateway.rate_limit_rps":           100,
	"gateway.rate_limit_burst":         20,
	"storage.driver":                   StorageMongo,
	"storage.database":                 "notes",
	"storage.collection":               "Notes",
	"storage.connect_timeout":          10,
	"events.redis_channel":             "notes-events",
}
