// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Database holds PostgreSQL connection settings.
type Database struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"eventmarket"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// DSN builds a libpq-compatible connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Auth holds token-signing settings.
type Auth struct {
	JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"8h"`
}

// Broker holds RabbitMQ settings. An empty URL disables notifications.
type Broker struct {
	URL      string `envconfig:"RABBIT_URL"`
	Exchange string `envconfig:"BROKER_EXCHANGE" default:"bookings"`
	Queue    string `envconfig:"BROKER_QUEUE" default:"booking_confirmations"`
}

// Mailer holds MailerSend settings for the notifier worker.
type Mailer struct {
	APIKey    string `envconfig:"MAILERSEND_API_KEY"`
	FromName  string `envconfig:"MAIL_FROM_NAME" default:"Event Marketplace"`
	FromEmail string `envconfig:"MAIL_FROM_EMAIL" default:"noreply@eventmarket.local"`
}

// Config is the full application configuration.
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	Database Database
	Auth     Auth
	Broker   Broker
	Mailer   Mailer
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return c, nil
}
