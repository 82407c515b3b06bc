package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/bot"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/config"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/database"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/excel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Connect(cfg.DBType, cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Первый запуск: наполняем каталог стартовыми фразами
	seeded, err := database.NewPhraseRepository().SeedInitial(context.Background())
	if err != nil {
		log.Fatalf("Failed to seed initial phrases: %v", err)
	}
	if seeded > 0 {
		log.Printf("Seeded %d initial phrases", seeded)
	}

	if cfg.ImportFile != "" {
		importConfig := excel.DefaultImportConfig()
		importConfig.FilePath = cfg.ImportFile
		result, err := excel.ImportPhrases(context.Background(), importConfig)
		if err != nil {
			log.Fatalf("Failed to import phrases from %s: %v", cfg.ImportFile, err)
		}
		log.Printf("Imported phrases from %s: %d created, %d skipped, %d errors",
			cfg.ImportFile, result.Created, result.Skipped, len(result.Errors))
		for _, importErr := range result.Errors {
			log.Printf("Import: %s", importErr)
		}
	}

	b, err := bot.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Контекст отменяется по Ctrl+C или SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}
	log.Println("Bot stopped successfully")
}
