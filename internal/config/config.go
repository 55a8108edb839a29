// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"DATABASE_URL"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	GRPCAuth                `yaml:"grpc_auth"`
	JWT                     `yaml:"jwt"`
	Redis                   `yaml:"redis"`
	RabbitMQ                `yaml:"rabbitmq"`
	Stripe                  `yaml:"stripe"`
	S3                      `yaml:"s3"`
	License                 `yaml:"license"`
	SMTP                    `yaml:"smtp"`
	Log                     `yaml:"log"`
	RateLimit               `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера.
// TrustProxy включать только за своим прокси: иначе адрес клиента берётся из его заголовков.
type HTTPServer struct {
	AddressHTTP    string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":4000"`
	TimeoutHTTP    time.Duration `yaml:"timeout" env-default:"15s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env-default:"209715200"`
	TrustProxy     bool          `yaml:"trust_proxy" env:"HTTP_TRUST_PROXY"`
}

// GRPCAuth структура для настройки gRPC‑сервиса проверки токенов.
// Address слушает auth-service, Target использует API; пустой Target
// означает локальную проверку токенов.
type GRPCAuth struct {
	GRPCAddress string `yaml:"address" env:"GRPC_AUTH_ADDRESS" env-default:":50051"`
	GRPCTarget  string `yaml:"target" env:"GRPC_AUTH_TARGET"`
}

// JWT структура с двумя независимыми секретами для access и refresh токенов.
type JWT struct {
	AccessSecret  string        `yaml:"access_secret" env:"JWT_SECRET"`
	RefreshSecret string        `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `yaml:"access_ttl" env-default:"15m"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env-default:"720h"`
}

// Redis структура для настройки подключения к redis
type Redis struct {
	RedisAddress     string        `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	RedisPassword    string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser        string        `yaml:"user"`
	RedisDB          int           `yaml:"db"`
	RedisMaxRetries  int           `yaml:"max_retries" env-default:"3"`
	RedisDialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	RedisTimeout     time.Duration `yaml:"timeout" env-default:"3s"`
}

// RabbitMQ структура для подключения к брокеру доменных событий
type RabbitMQ struct {
	RabbitURL     string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitRetries int           `yaml:"retries" env-default:"5"`
	RabbitDelay   time.Duration `yaml:"delay" env-default:"2s"`
}

// Stripe структура для настройки платёжного провайдера
type Stripe struct {
	StripeSecretKey string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	StripePriceID   string `yaml:"price_id" env:"STRIPE_PRICE_ID"`
	WebhookSecret   string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	SuccessURL      string `yaml:"success_url" env-default:"http://localhost:3000/success?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL       string `yaml:"cancel_url" env-default:"http://localhost:3000/cancel"`
}

// S3 структура для настройки хранилища ассетов (MinIO или AWS S3)
type S3 struct {
	S3Endpoint  string        `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"localhost:9000"`
	S3Region    string        `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	S3AccessKey string        `yaml:"access_key" env:"S3_ACCESS_KEY"`
	S3SecretKey string        `yaml:"secret_key" env:"S3_SECRET_KEY"`
	S3Bucket    string        `yaml:"bucket" env:"S3_BUCKET" env-default:"marketplace-assets"`
	S3UseSSL    bool          `yaml:"use_ssl" env:"S3_USE_SSL"`
	URLTTL      time.Duration `yaml:"url_ttl" env-default:"5m"`
}

// License структура для генерации лицензионных ключей
type License struct {
	NodeID int64 `yaml:"node_id" env:"LICENSE_NODE_ID" env-default:"1"`
}

// SMTP структура для отправки писем
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
}

// Log структура для настройки вывода логов
type Log struct {
	LogFile string `yaml:"file" env:"LOG_FILE"`
}

// RateLimit структура для лимитов auth‑эндпоинтов на каждый IP
type RateLimit struct {
	RPS     float64 `yaml:"rps" env-default:"1"`
	Burst   int     `yaml:"burst" env-default:"5"`
	Clients int     `yaml:"clients" env-default:"10000"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
func MustLoad() *Config {
	// .env опционален
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла и проверяет его.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет инварианты, без которых процесс запускать нельзя.
func (c *Config) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("jwt access_secret and refresh_secret are required")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("jwt access_secret and refresh_secret must differ")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"GRPCAuth:\n"+
			"  Address: %s\n"+
			"  Target: %s\n"+
			"JWT:\n"+
			"  AccessTTL: %s\n"+
			"  RefreshTTL: %s\n"+
			"Redis:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"S3:\n"+
			"  Endpoint: %s\n"+
			"  Bucket: %s\n"+
			"  URLTTL: %s\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.GRPCAddress,
		c.GRPCTarget,
		c.AccessTTL,
		c.RefreshTTL,
		c.RedisAddress,
		c.RedisDB,
		c.S3Endpoint,
		c.S3Bucket,
		c.URLTTL,
	)
}
