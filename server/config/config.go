package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	Debug           bool            `env:"DEBUG,default=false"`
	ServerConfig    ServerConfig    `env:",prefix=SERVER_"`
	StorageConfig   StorageConfig   `env:",prefix=STORAGE_"`
	RetentionConfig RetentionConfig `env:",prefix=RETENTION_"`
	ConvertConfig   ConvertConfig   `env:",prefix=CONVERT_"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"HOST,default=" description:"HTTP server host (empty for all interfaces)"`
	Port         string        `env:"PORT,default=8080" description:"HTTP server port"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=120s" description:"HTTP server read timeout"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=120s" description:"HTTP server write timeout"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=120s" description:"HTTP server idle timeout"`
}

// StorageConfig holds artifact storage configuration
type StorageConfig struct {
	Provider   string `env:"PROVIDER,default=filesystem" description:"Storage provider (filesystem, minio)"`
	BasePath   string `env:"BASE_PATH,default=./uploads" description:"Base path for filesystem storage"`
	Endpoint   string `env:"ENDPOINT" description:"Object storage endpoint (MinIO)"`
	AccessKey  string `env:"ACCESS_KEY" description:"Object storage access key"`
	SecretKey  string `env:"SECRET_KEY" description:"Object storage secret key"`
	BucketName string `env:"BUCKET_NAME,default=uploads" description:"Object storage bucket name"`
	UseSSL     bool   `env:"USE_SSL,default=true" description:"Use SSL for object storage connections"`
}

// RetentionConfig defines artifact cleanup policy
type RetentionConfig struct {
	MaxAge        time.Duration `env:"MAX_AGE,default=1h" description:"Maximum age for stored artifacts (0 = no age limit)"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL,default=10m" description:"How often to run the retention sweep (0 = disabled)"`
}

// ConvertConfig holds conversion collaborator settings
type ConvertConfig struct {
	ImageQuality       int           `env:"IMAGE_QUALITY,default=50" description:"Default JPEG re-encode quality (1-95)"`
	GhostscriptBinary  string        `env:"GHOSTSCRIPT_BINARY,default=gs" description:"Ghostscript binary for size-targeted PDF compression"`
	GhostscriptTimeout time.Duration `env:"GHOSTSCRIPT_TIMEOUT,default=120s" description:"Timeout for a single Ghostscript invocation"`
}

// Load loads configuration from environment variables, merging with the provided base config.
func Load(ctx context.Context, baseConfig *Config) (*Config, error) {
	return LoadWithLookuper(ctx, baseConfig, envconfig.OsLookuper())
}

// LoadWithLookuper creates and loads configuration using a custom lookuper and merges with the base config
func LoadWithLookuper(ctx context.Context, baseConfig *Config, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config

	if baseConfig != nil {
		cfg = *baseConfig
	}

	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ConvertConfig.ImageQuality < 1 || c.ConvertConfig.ImageQuality > 95 {
		return fmt.Errorf("image quality must be between 1 and 95, got %d", c.ConvertConfig.ImageQuality)
	}

	switch c.StorageConfig.Provider {
	case "filesystem", "minio":
	default:
		return fmt.Errorf("unsupported storage provider: %s", c.StorageConfig.Provider)
	}

	return nil
}
