package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Notify   NotifyConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	FrontendURL    string
	RequestTimeout time.Duration
	CORSOrigins    []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
	Migrate  bool
}

type JWTConfig struct {
	Secret string
}

// RedisConfig is optional; an empty Addr keeps event fan-out in-process.
type RedisConfig struct {
	Addr     string
	Password string
	Channel  string
}

// AMQPConfig is optional; an empty URL logs emails instead of queueing them.
type AMQPConfig struct {
	URL        string
	EmailQueue string
}

type NotifyConfig struct {
	Buffer int
}

type CacheConfig struct {
	PropertyTTL time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "rental-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("REQUEST_TIMEOUT", "15s")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIGRATE", true)
	viper.SetDefault("REDIS_CHANNEL", "booking-events")
	viper.SetDefault("EMAIL_QUEUE", "booking_emails")
	viper.SetDefault("NOTIFY_BUFFER", 256)
	viper.SetDefault("PROPERTY_CACHE_TTL", "60s")

	// .env is optional in containers where everything comes from the environment
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			FrontendURL:    strings.TrimRight(viper.GetString("FRONTEND_URL"), "/"),
			RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
			CORSOrigins:    splitList(viper.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
			Migrate:  viper.GetBool("DB_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASS"),
			Channel:  viper.GetString("REDIS_CHANNEL"),
		},
		AMQP: AMQPConfig{
			URL:        viper.GetString("AMQP_URL"),
			EmailQueue: viper.GetString("EMAIL_QUEUE"),
		},
		Notify: NotifyConfig{
			Buffer: viper.GetInt("NOTIFY_BUFFER"),
		},
		Cache: CacheConfig{
			PropertyTTL: viper.GetDuration("PROPERTY_CACHE_TTL"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
