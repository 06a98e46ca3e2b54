package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	MigrationsPath string        `env:"MIGRATIONS_PATH"`
	ServerPort     string        `env:"SERVER_PORT"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	// Настройки для MinIO
	MinioEndpoint        string `env:"MINIO_ENDPOINT,required"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID,required"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY,required"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME,required"`
	MinioRegion          string `env:"MINIO_REGION,required"`
	// публичный адрес, с которого клиенты читают объекты; по умолчанию сам endpoint
	MinioPublicURL string `env:"MINIO_PUBLIC_URL"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL,required"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"photo_uploaded_queue"`
	}

	Auth struct {
		JWTSecret string        `env:"JWT_SECRET,required"`
		JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	}

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	UploadConcurrency int `env:"UPLOAD_CONCURRENCY" envDefault:"5"`
	MaxUploadMB       int `env:"MAX_UPLOAD_MB" envDefault:"20"`
	ThumbnailWidth    int `env:"THUMBNAIL_WIDTH" envDefault:"400"`
	// предел Width*Height до полного декодирования изображения
	MaxImagePixels int64 `env:"MAX_IMAGE_PIXELS" envDefault:"50000000"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults вручную устанавливает значения по умолчанию для полей без envDefault
func (c *Config) applyDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = "8080"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.MigrationsPath == "" {
		c.MigrationsPath = "file://internal/database/postgres/migrations"
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.UploadConcurrency <= 0 {
		c.UploadConcurrency = 1
	}
	if c.MaxImagePixels <= 0 {
		c.MaxImagePixels = 50_000_000
	}
}

// MaxUploadBytes: предел размера загружаемого файла в байтах
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}
