// cmd/main.go is the API server entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/hamzarq/event-booking-marketplace/internal/config"
	"github.com/hamzarq/event-booking-marketplace/internal/database"
	"github.com/hamzarq/event-booking-marketplace/internal/handler"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
	"github.com/hamzarq/event-booking-marketplace/internal/notify"
	"github.com/hamzarq/event-booking-marketplace/internal/obs"
	"github.com/hamzarq/event-booking-marketplace/internal/repository"
	"github.com/hamzarq/event-booking-marketplace/internal/service"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	shutdownTracer, err := obs.InitTracer(ctx, "event-marketplace-api")
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// Notifications are fire-and-forget; with no broker configured the
	// ledger simply skips publishing.
	var publisher service.Publisher
	if cfg.Broker.URL != "" {
		pub, err := notify.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			log.Fatalf("broker: %v", err)
		}
		defer pub.Close()
		publisher = pub
		log.Println("✓ Connected to RabbitMQ")
	} else {
		log.Println("RABBIT_URL not set, notifications disabled")
	}

	catalog := service.NewCatalog(eventRepo, bookingRepo)
	ledger := service.NewLedger(bookingRepo, eventRepo, publisher)
	auth := service.NewAuth(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	eventHandler := handler.NewEventHandler(catalog)
	bookingHandler := handler.NewBookingHandler(ledger)
	authHandler := handler.NewAuthHandler(auth)
	authenticate := handler.Authenticate(auth)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // access log
	r.Use(handler.CORS)            // permissive CORS for browser clients

	// Health
	r.Get("/health", handler.HealthCheck)

	// Auth
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.LogIn)
	})

	// Events: browsing is public, management is lister-only.
	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{id}", eventHandler.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(handler.RequireRole(model.RoleLister))
			r.Post("/", eventHandler.CreateEvent)
			r.Patch("/{id}", eventHandler.UpdateEvent)
			r.Delete("/{id}", eventHandler.DeleteEvent)
			r.Get("/{id}/bookings", bookingHandler.ListByEvent)
		})
	})

	// Bookings
	r.Route("/bookings", func(r chi.Router) {
		r.Use(authenticate)
		r.With(handler.RequireRole(model.RoleUser)).Post("/", bookingHandler.CreateBooking)
		r.With(handler.RequireRole(model.RoleUser)).Get("/", bookingHandler.ListMine)
		r.With(handler.RequireRole(model.RoleUser)).Post("/{id}/cancel", bookingHandler.Cancel)
		r.With(handler.RequireRole(model.RoleLister)).Get("/managed", bookingHandler.ListManaged)
		r.With(handler.RequireRole(model.RoleLister)).Post("/{id}/confirm", bookingHandler.Confirm)
		r.With(handler.RequireRole(model.RoleLister)).Post("/{id}/reject", bookingHandler.Reject)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("✓ Server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
