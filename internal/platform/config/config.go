// Package config loads server configuration from struct defaults, an optional
// .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	pstrings "notify-gateway/pkg/platform/strings"
)

// DefaultDirectoryURL is the managers endpoint the directory has always been
// served from.
const DefaultDirectoryURL = "https://o3m5qixdng.execute-api.us-east-1.amazonaws.com/api/managers"

// Sink kinds.
const (
	SinkLog   = "log"
	SinkRedis = "redis"
	SinkKafka = "kafka"
)

// Config is the full server configuration.
type Config struct {
	Server    Server    `koanf:"server"`
	Directory Directory `koanf:"directory"`
	Sink      Sink      `koanf:"sink"`
	Redis     Redis     `koanf:"redis"`
	Kafka     Kafka     `koanf:"kafka"`
	Log       Log       `koanf:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Directory configures the upstream supervisor directory.
type Directory struct {
	URL               string        `koanf:"url"`
	Timeout           time.Duration `koanf:"timeout"`
	StrictStatus      bool          `koanf:"strict_status"`
	ResolveSupervisor bool          `koanf:"resolve_supervisor"`
}

// Sink selects where accepted requests go.
type Sink struct {
	Kind string `koanf:"kind"`
}

// Redis configures the Redis stream sink.
type Redis struct {
	URL          string        `koanf:"url"`
	Stream       string        `koanf:"stream"`
	MaxLen       int64         `koanf:"max_len"`
	PoolSize     int           `koanf:"pool_size"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// Kafka configures the Kafka sink.
type Kafka struct {
	Brokers    []string `koanf:"brokers"`
	Topic      string   `koanf:"topic"`
	Partitions int32    `koanf:"partitions"`
}

// Log configures the process logger.
type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// envPaths maps each supported environment variable to its config path.
var envPaths = map[string]string{
	"NOTIFY_ADDR":              "server.addr",
	"SHUTDOWN_TIMEOUT":         "server.shutdown_timeout",
	"SUPERVISOR_DIRECTORY_URL": "directory.url",
	"DIRECTORY_TIMEOUT":        "directory.timeout",
	"DIRECTORY_STRICT_STATUS":  "directory.strict_status",
	"RESOLVE_SUPERVISOR":       "directory.resolve_supervisor",
	"NOTIFY_SINK":              "sink.kind",
	"REDIS_URL":                "redis.url",
	"REDIS_STREAM":             "redis.stream",
	"REDIS_STREAM_MAXLEN":      "redis.max_len",
	"KAFKA_BROKERS":            "kafka.brokers",
	"KAFKA_TOPIC":              "kafka.topic",
	"KAFKA_PARTITIONS":         "kafka.partitions",
	"LOG_LEVEL":                "log.level",
	"LOG_FORMAT":               "log.format",
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Directory: Directory{
			URL:               DefaultDirectoryURL,
			Timeout:           10 * time.Second,
			ResolveSupervisor: false,
		},
		Sink: Sink{Kind: SinkLog},
		Redis: Redis{
			Stream:       "notification-requests",
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Topic:      "notification-requests",
			Partitions: 1,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}

// FromEnv loads .env (when present) and the environment over Default.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Load(os.Environ)
}

// Load builds a Config from defaults and the variables returned by environ.
func Load(environ func() []string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	provider := env.Provider(".", env.Opt{
		EnvironFunc: environ,
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envPaths[key]
			if !ok || value == "" {
				return "", nil
			}
			return path, value
		},
	})
	if err := k.Load(provider, nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = pstrings.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Sink.Kind {
	case SinkLog:
	case SinkRedis:
		if c.Redis.URL == "" {
			return errors.New("config: REDIS_URL is required when NOTIFY_SINK=redis")
		}
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("config: KAFKA_BROKERS is required when NOTIFY_SINK=kafka")
		}
	default:
		return fmt.Errorf("config: unknown NOTIFY_SINK %q", c.Sink.Kind)
	}
	if c.Directory.URL == "" {
		return errors.New("config: SUPERVISOR_DIRECTORY_URL must not be empty")
	}
	if c.Directory.Timeout <= 0 {
		return errors.New("config: DIRECTORY_TIMEOUT must be positive")
	}
	return nil
}
