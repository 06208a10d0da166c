package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/chanxe/love-plain/db"
	"github.com/chanxe/love-plain/internal/app"
	"github.com/chanxe/love-plain/internal/audio"
	"github.com/chanxe/love-plain/internal/config"
	"github.com/chanxe/love-plain/internal/logging"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logFile := logging.Setup(cfg.LogFile)
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := app.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()
	defer db.CloseRedis()

	if rdb == nil {
		log.Fatalf("audio worker needs REDIS_URL")
	}

	reports := app.NewReports(db.DB, rdb, cfg.CacheTTL)

	service, err := app.NewAudioService(cfg, reports)
	if err != nil {
		log.Fatalf("error building audio service: %v", err)
	}

	worker := audio.NewWorker(db.NewQueue(rdb, db.AudioQueueKey), db.NewQueue(rdb, db.DeadLetterKey), service)

	slog.Info("audio worker started", "queue", db.AudioQueueKey)

	worker.Run(ctx)

	slog.Info("audio worker stopped")
}
