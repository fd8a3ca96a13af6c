package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agbizu/agbizu/internal/ai"
	"github.com/agbizu/agbizu/internal/bot"
	"github.com/agbizu/agbizu/internal/bot/handlers"
	"github.com/agbizu/agbizu/internal/config"
	"github.com/agbizu/agbizu/internal/database"
	"github.com/agbizu/agbizu/internal/scheduler"
	"github.com/agbizu/agbizu/internal/storage"
	"github.com/agbizu/agbizu/internal/store"
)

// backend is the full persistence surface the app needs, satisfied by both
// storage implementations.
type backend interface {
	store.Persistence
	handlers.ScaleStorage
	scheduler.Backend
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var persistence backend
	switch cfg.Storage {
	case "postgres":
		if cfg.DatabaseURI == "" {
			log.Fatal("DATABASE_URI is required when STORAGE=postgres")
		}
		db, err := database.New(ctx, cfg.DatabaseURI)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to database")

		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations completed")

		persistence = storage.NewPostgres(db)
	case "file":
		fs, err := storage.NewFile(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to init file storage: %v", err)
		}
		log.Printf("Using file storage at %s", cfg.DataDir)
		persistence = fs
	default:
		log.Fatalf("Unknown STORAGE %q (want postgres or file)", cfg.Storage)
	}

	manager := store.NewManager(persistence)

	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Printf("AI client initialized (model: %s)", cfg.AIModel)
	} else {
		log.Println("AI client not configured, natural language features disabled")
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram API: %v", err)
	}

	sched := scheduler.New(api, manager, persistence, cfg.SummaryHour)
	go sched.Start(ctx)

	b := bot.New(api, manager, persistence, aiClient)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Starting bot...")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}
}
