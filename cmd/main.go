package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"defect-refiner/config"
	telegram "defect-refiner/internal/api"
	"defect-refiner/internal/container"
	"defect-refiner/internal/domain/port"
	"defect-refiner/internal/infrastructure/describer"
	"defect-refiner/internal/infrastructure/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	// Создаём хранилище пользователей
	userRepo := storage.NewMemoryUserRepository()

	// Описание от ИИ необязательно
	var defectDescriber port.DefectDescriber
	if cfg.OllamaURL != "" {
		d, err := describer.NewOllamaDescriber(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			log.Fatalf("Failed to create describer: %v", err)
		}
		defectDescriber = d
	}

	// Собираем сервисы приложения
	appContainer, err := container.New(cfg, userRepo, defectDescriber)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("Bot is running...")
	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Bot error: %v", err)
	}
	log.Println("Bot stopped")
}
