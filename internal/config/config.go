// Package config предоставляет структуры и функцию для парсинга и загрузки
// конфига. Конфиг строится один раз при старте процесса и передается во все
// фабрики и обработчики явно — бизнес-логика не читает окружение сама.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	Providers               `yaml:"providers"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	JWTToken                `yaml:"jwttoken"`
	Billing                 `yaml:"billing"`
	SMTP                    `yaml:"smtp"`
	Storage                 `yaml:"storage"`
}

// Providers выбор конкретных реализаций внешних зависимостей.
// Значения проверяются фабриками при старте, неизвестное значение —
// ошибка запуска, а не тихий дефолт.
type Providers struct {
	Database string `yaml:"database" env:"DATABASE_PROVIDER" env-default:"Postgres"`
	Billing  string `yaml:"billing" env:"BILLING_PROVIDER" env-default:"Stripe"`
	Storage  string `yaml:"storage" env:"STORAGE_PROVIDER" env-default:"Cloudinary"`
	Email    string `yaml:"email" env:"EMAIL_PROVIDER" env-default:"RabbitMQ"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"5s"`
}

// RabbitMQ структура для настройки подключения к брокеру сообщений.
type RabbitMQ struct {
	RabbitConnectionString string        `yaml:"connection_string" env:"RABBITMQ_CONNECTION_STRING"`
	ConnectRetries         int           `yaml:"connect_retries" env:"RABBITMQ_CONNECT_RETRIES" env-default:"5"`
	ConnectDelay           time.Duration `yaml:"connect_delay" env:"RABBITMQ_CONNECT_DELAY" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном сессии.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
}

// Billing настройки внешнего биллинг-провайдера: ключи и соответствие
// price id провайдера локальным тарифам.
type Billing struct {
	SecretKey     string `yaml:"secret_key" env:"BILLING_SECRET_KEY"`
	WebhookSecret string `yaml:"webhook_secret" env:"BILLING_WEBHOOK_SECRET"`
	APIURL        string `yaml:"api_url" env:"BILLING_API_URL" env-default:"https://api.stripe.com/v1"`
	ProPriceID    string `yaml:"pro_price_id" env:"BILLING_PRO_PRICE_ID"`
	FreePriceID   string `yaml:"free_price_id" env:"BILLING_FREE_PRICE_ID"`
}

// SMTP структура для настройки почтового транспорта.
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`
	SMTPFrom string `yaml:"from" env:"SMTP_FROM"`
}

// Storage настройки объектного хранилища для загрузки файлов.
type Storage struct {
	CloudinaryURL string `yaml:"cloudinary_url" env:"CLOUDINARY_URL"`
}

// MustLoad функция для загрузки конфига из файла, указанного в CONFIG_PATH.
// Переменные окружения имеют приоритет над значениями из файла.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
