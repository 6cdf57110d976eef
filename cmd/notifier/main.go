// cmd/notifier is the notification worker. It drains booking.confirmed
// messages from RabbitMQ and emails the booking's user a confirmation.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hamzarq/event-booking-marketplace/internal/config"
	"github.com/hamzarq/event-booking-marketplace/internal/database"
	"github.com/hamzarq/event-booking-marketplace/internal/notify"
	"github.com/hamzarq/event-booking-marketplace/internal/obs"
	"github.com/hamzarq/event-booking-marketplace/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Broker.URL == "" {
		log.Fatal("RABBIT_URL is required")
	}
	if cfg.Mailer.APIKey == "" {
		log.Fatal("MAILERSEND_API_KEY is required")
	}

	shutdownTracer, err := obs.InitTracer(ctx, "event-marketplace-notifier")
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	mailer := notify.NewMailer(cfg.Mailer.APIKey, cfg.Mailer.FromName, cfg.Mailer.FromEmail)
	consumer := notify.NewConsumer(
		cfg.Broker.URL, cfg.Broker.Exchange, cfg.Broker.Queue,
		repository.NewBookingRepository(pool),
		repository.NewEventRepository(pool),
		repository.NewUserRepository(pool),
		mailer,
	)
	if err := consumer.Connect(); err != nil {
		log.Fatalf("broker: %v", err)
	}
	defer consumer.Close()

	log.Println("✓ Notifier started, waiting for messages…")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("consumer: %v", err)
	}
	log.Println("notifier stopped")
}
