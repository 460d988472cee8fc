package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juaneliascabrera/task-manager/internal/bot"
	"github.com/juaneliascabrera/task-manager/internal/cli"
	"github.com/juaneliascabrera/task-manager/internal/clock"
	"github.com/juaneliascabrera/task-manager/internal/config"
	"github.com/juaneliascabrera/task-manager/internal/facade"
	"github.com/juaneliascabrera/task-manager/internal/repository"
	"github.com/juaneliascabrera/task-manager/internal/repository/postgres"
	"github.com/juaneliascabrera/task-manager/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	clk := clock.System{}

	store, err := openStorage(ctx, cfg, clk)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close storage: %v", err)
		}
	}()

	manager := service.NewTaskManager(store)
	appFacade := facade.New(manager)

	switch cfg.Mode {
	case config.ModeTelegram:
		runTelegram(ctx, cfg, appFacade, manager)
	default:
		log.Println("[info] task manager started (cli)")
		if err := cli.New(appFacade, os.Stdin, os.Stdout).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("cli stopped with error: %v", err)
		}
	}

	log.Println("Shutdown complete.")
}

func openStorage(ctx context.Context, cfg config.Config, clk clock.Clock) (repository.Storage, error) {
	if cfg.StorageDriver == config.DriverPostgres {
		return postgres.New(ctx, cfg.DatabaseURL, clk)
	}
	return repository.NewSQLite(cfg.DatabaseURL, clk)
}

func runTelegram(ctx context.Context, cfg config.Config, appFacade *facade.Facade, manager *service.TaskManager) {
	reminderSvc := service.NewReminderService(manager)

	telegramBot, err := bot.New(cfg.TelegramToken, appFacade, manager, reminderSvc)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	if cfg.ReportInterval > 0 {
		scheduler := service.NewSchedulerService(time.Local)
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendDigests(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("digest: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule digests: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	log.Println("[info] task manager started (telegram)")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
}
