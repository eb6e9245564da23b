package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gicare/internal/bot"
	"gicare/internal/config"
	"gicare/internal/extractor"
	"gicare/internal/repository"
	"gicare/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	logRepo := repository.NewMedLogRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	aptRepo := repository.NewAppointmentRepository(db)

	var ext extractor.Extractor
	if cfg.GeminiAPIKey != "" {
		gemini, err := extractor.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("extractor: %v", err)
		}
		ext = gemini
	} else {
		log.Println("[info] GEMINI_API_KEY not set, free-text appointment entry disabled")
	}

	logSvc := service.NewLogService(logRepo)
	inventorySvc := service.NewInventoryService(inventoryRepo)
	aptSvc := service.NewAppointmentService(aptRepo, ext)
	reminderSvc := service.NewReminderService(logRepo, aptRepo)

	trackerBot, err := bot.New(cfg.TelegramToken, userRepo, logSvc, inventorySvc, aptSvc, reminderSvc)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.ReminderInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := trackerBot.SendDueReminders(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("reminders: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule reminders: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("GiCare tracker bot started.")
	if err := trackerBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
