package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workspace-planner/internal/api"
	"workspace-planner/internal/bot"
	"workspace-planner/internal/config"
	"workspace-planner/internal/repository"
	"workspace-planner/internal/service"
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
	defer func() {
		if err := repository.Close(db); err != nil {
			log.Printf("[warn] close db: %v", err)
		}
	}()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	recurrenceRepo := repository.NewRecurrenceRepository(db)

	recurrenceSvc := service.NewRecurrenceService(recurrenceRepo, cfg.MaxInstances)
	workspaceSvc := service.NewWorkspaceService(workspaceRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	taskSvc := service.NewTaskService(taskRepo, categoryRepo, workspaceRepo, recurrenceSvc)
	reminderSvc := service.NewReminderService(taskRepo, categorySvc, workspaceSvc)

	server := api.NewServer(cfg.HTTPAddr, cfg.APIToken, api.Services{
		Tasks:       taskSvc,
		Recurrences: recurrenceSvc,
		Workspaces:  workspaceSvc,
	}, api.WithCORS(cfg.CORSOrigins...))
	if cfg.APIToken == "" {
		log.Println("[warn] API_TOKEN is empty, the HTTP API is unauthenticated")
	}

	errCh := make(chan error, 2)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.TelegramToken != "" {
		telegramBot, err := bot.New(cfg.TelegramToken, bot.Services{
			Users:       userRepo,
			Workspaces:  workspaceSvc,
			Categories:  categorySvc,
			Tasks:       taskSvc,
			Recurrences: recurrenceSvc,
			Reminders:   reminderSvc,
		}, &cfg)
		if err != nil {
			log.Fatalf("bot: %v", err)
		}
		if err := telegramBot.ScheduleReports(scheduler); err != nil {
			log.Fatalf("%v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()

		go func() {
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	} else {
		log.Println("[info] TELEGRAM_TOKEN is empty, bot and reports are disabled")
	}

	log.Printf("[info] workspace planner started (max %d instances per series)", cfg.MaxInstances)
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Printf("[error] %v", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[warn] http shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}
