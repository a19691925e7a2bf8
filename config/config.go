package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Config holds the process-wide configuration, loaded once at startup and
// shared read-only across all concurrent job runs.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Sentry   SentryConfig
	Redis    RedisConfig
	S3       S3Config
	Encoder  EncoderConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

type SentryConfig struct {
	DSN         string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"dev"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB"`
}

type S3Config struct {
	Endpoint       string `envconfig:"S3_ENDPOINT"`
	Region         string `envconfig:"S3_REGION" default:"us-east-1"`
	AccessKey      string `envconfig:"S3_ACCESS_KEY"`
	SecretKey      string `envconfig:"S3_SECRET_KEY"`
	ForcePathStyle bool   `envconfig:"S3_FORCE_PATH_STYLE" default:"true"`

	RawBucket       string `envconfig:"RAW_BUCKET" default:"raw-uploads"`
	HLSBucket       string `envconfig:"HLS_BUCKET" default:"hls"`
	ThumbnailBucket string `envconfig:"THUMBNAIL_BUCKET" default:"thumbnails"`
}

type EncoderConfig struct {
	FFmpegPath     string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	SegmentSeconds int    `envconfig:"SEGMENT_SECONDS" default:"10"`
}

type PipelineConfig struct {
	StagingDir        string        `envconfig:"STAGING_DIR"`
	JobTimeout        time.Duration `envconfig:"JOB_TIMEOUT" default:"30m"`
	UploadConcurrency int           `envconfig:"UPLOAD_CONCURRENCY" default:"4"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Pipeline.StagingDir == "" {
		cfg.Pipeline.StagingDir = os.TempDir()
	}
	return &cfg, nil
}

// Logger builds the process logger according to the log configuration.
func (c LogConfig) Logger() (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	if c.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}
