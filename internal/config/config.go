package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/SeakMengs/DossierFlow/internal/env"
)

type Config struct {
	Port        string
	ENV         string
	FrontURL    string
	DB          DatabaseConfig
	RateLimiter RateLimiterConfig
	Mail        MailConfig
	Auth        AuthConfig
	Minio       MinioConfig
	RabbitMQ    RabbitMQConfig
	Entreprise  EntrepriseConfig
	Export      ExportConfig
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type AuthConfig struct {
	JWT_SECRET      string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type DatabaseConfig struct {
	DB_HOST      string
	DB_PORT      string
	DB_DATABASE  string
	DB_USERNAME  string
	DB_PASSWORD  string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		d.DB_HOST, d.DB_USERNAME, d.DB_PASSWORD, d.DB_DATABASE, d.DB_PORT)
}

type MailDriver string

const (
	MailDriverSendGrid MailDriver = "sendgrid"
	MailDriverGmail    MailDriver = "gmail"
)

type MailConfig struct {
	DRIVER             MailDriver
	SEND_GRID          SendGridConfig
	GMAIL_USERNAME     string
	GMAIL_APP_PASSWORD string
	FROM_EMAIL         string
}

type SendGridConfig struct {
	API_KEY string
}

type MinioConfig struct {
	ENDPOINT   string
	ACCESS_KEY string
	SECRET_KEY string
	BUCKET     string
	USE_SSL    bool
}

type RabbitMQConfig struct {
	HOST     string
	PORT     string
	USERNAME string
	PASSWORD string
	// Disabled makes the api publish nothing; dossier events are dropped.
	Disabled bool
}

func (r RabbitMQConfig) GetConnectionString() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", r.USERNAME, r.PASSWORD, r.HOST, r.PORT)
}

// EntrepriseConfig points at the company registry api used to fill the
// entreprise and etablissement of a dossier from a siret.
type EntrepriseConfig struct {
	BASE_URL  string
	TOKEN     string
	Timeout   time.Duration
	MaxRetry  int
	RetryWait time.Duration
}

type ExportConfig struct {
	// ArchiveToS3 stores a copy of every generated export in the bucket.
	ArchiveToS3 bool
	// MaxRows caps a single export, 0 means unlimited.
	MaxRows int
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.ENV, "production")
}

func GetConfig() Config {
	return Config{
		Port:     env.GetString("PORT", "8080"),
		ENV:      env.GetString("ENV", "development"),
		FrontURL: env.GetString("FRONT_URL", "http://localhost:3000"),
		DB: DatabaseConfig{
			DB_HOST:      env.GetString("DB_HOST", "127.0.0.1"),
			DB_PORT:      env.GetString("DB_PORT", "5432"),
			DB_USERNAME:  env.GetString("DB_USERNAME", "root"),
			DB_PASSWORD:  env.GetString("DB_PASSWORD", ""),
			DB_DATABASE:  env.GetString("DB_DATABASE", "dossierflow"),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 30),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		// By default if not specified, we allow 5000 requests per minute on all routes
		RateLimiter: RateLimiterConfig{
			RequestsPerTimeFrame: env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 5000),
			TimeFrame:            env.GetDuration("RATE_LIMIT_TIME_FRAME", time.Minute),
			Enabled:              env.GetBool("RATE_LIMIT_ENABLED", true),
		},
		Mail: MailConfig{
			DRIVER:     MailDriver(env.GetString("MAIL_DRIVER", string(MailDriverSendGrid))),
			FROM_EMAIL: env.GetString("MAIL_FROM_MAIL", ""),
			SEND_GRID: SendGridConfig{
				API_KEY: env.GetString("MAIL_SEND_GRID_API_KEY", ""),
			},
			GMAIL_USERNAME:     env.GetString("MAIL_GMAIL_USERNAME", ""),
			GMAIL_APP_PASSWORD: env.GetString("MAIL_GMAIL_APP_PASSWORD", ""),
		},
		Auth: AuthConfig{
			JWT_SECRET:      env.GetString("AUTH_JWT_SECRET", ""),
			AccessTokenTTL:  env.GetDuration("AUTH_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL: env.GetDuration("AUTH_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		Minio: MinioConfig{
			ENDPOINT:   env.GetString("MINIO_ENDPOINT", "127.0.0.1:9000"),
			ACCESS_KEY: env.GetString("MINIO_ACCESS_KEY", ""),
			SECRET_KEY: env.GetString("MINIO_SECRET_KEY", ""),
			BUCKET:     env.GetString("MINIO_BUCKET", "dossierflow"),
			USE_SSL:    env.GetBool("MINIO_USE_SSL", false),
		},
		RabbitMQ: RabbitMQConfig{
			HOST:     env.GetString("RABBITMQ_HOST", "127.0.0.1"),
			PORT:     env.GetString("RABBITMQ_PORT", "5672"),
			USERNAME: env.GetString("RABBITMQ_USERNAME", "guest"),
			PASSWORD: env.GetString("RABBITMQ_PASSWORD", "guest"),
			Disabled: env.GetBool("RABBITMQ_DISABLED", false),
		},
		Entreprise: EntrepriseConfig{
			BASE_URL:  env.GetString("ENTREPRISE_API_BASE_URL", "https://entreprise.api.gouv.fr"),
			TOKEN:     env.GetString("ENTREPRISE_API_TOKEN", ""),
			Timeout:   env.GetDuration("ENTREPRISE_API_TIMEOUT", 10*time.Second),
			MaxRetry:  env.GetInt("ENTREPRISE_API_MAX_RETRY", 3),
			RetryWait: env.GetDuration("ENTREPRISE_API_RETRY_WAIT", time.Second),
		},
		Export: ExportConfig{
			ArchiveToS3: env.GetBool("EXPORT_ARCHIVE_TO_S3", false),
			MaxRows:     env.GetInt("EXPORT_MAX_ROWS", 0),
		},
	}
}
