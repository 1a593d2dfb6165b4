package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/lexbox/internal/ai"
	"github.com/example/lexbox/internal/backlog"
	"github.com/example/lexbox/internal/config"
	"github.com/example/lexbox/internal/database"
	"github.com/example/lexbox/internal/notify"
	"github.com/example/lexbox/internal/scheduler"
	"github.com/example/lexbox/internal/web"
)

func main() {
	// .env is optional; real deployments use the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	database.SetDefaultSettings(cfg.Intervals, cfg.DailyNewLimit)

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Enrichment is optional: without an API key cards are promoted with
	// empty content.
	var enricher backlog.Enricher
	if chatgpt, err := ai.New(); err != nil {
		log.Printf("Enrichment disabled: %v", err)
	} else {
		enricher = chatgpt
	}

	backlogSvc := backlog.NewService(enricher)
	server := web.NewServer(backlogSvc, time.Now)

	// Reminders are optional as well; they need a Telegram token.
	var reminders *scheduler.Scheduler
	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegram(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("Failed to create notifier: %v", err)
		}
		reminders = scheduler.New(notifier)
		reminders.Start()
		defer reminders.Stop()
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, reminders disabled")
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server,
	}

	go func() {
		log.Printf("Listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped")
}
