package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chanxe/love-plain/db"
	"github.com/chanxe/love-plain/internal/app"
	"github.com/chanxe/love-plain/internal/audio"
	"github.com/chanxe/love-plain/internal/config"
	"github.com/chanxe/love-plain/internal/handler"
	"github.com/chanxe/love-plain/internal/logging"
	"github.com/chanxe/love-plain/internal/notify"
	"github.com/chanxe/love-plain/internal/scheduler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
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

	reports := app.NewReports(db.DB, rdb, cfg.CacheTTL)

	pipeline, err := app.NewPipeline(cfg, reports, rdb)
	if err != nil {
		log.Fatalf("error building broadcast pipeline: %v", err)
	}

	audioService, err := app.NewAudioService(cfg, reports)
	if err != nil {
		log.Fatalf("error building audio service: %v", err)
	}

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	hub := notify.NewHub(allowedOrigins)

	var sink notify.Sink = hub
	if rdb != nil {
		sink = notify.NewRedisSink(rdb, db.BroadcastChannel)
		go hub.Relay(ctx, rdb, db.BroadcastChannel)

		for i := 0; i < cfg.Audio.Workers; i++ {
			worker := audio.NewWorker(db.NewQueue(rdb, db.AudioQueueKey), db.NewQueue(rdb, db.DeadLetterKey), audioService)
			go worker.Run(ctx)
		}
	}

	if cfg.Broadcast.Enabled {
		hour, minute, _ := cfg.Broadcast.Clock()
		sched := scheduler.New(pipeline, hour, minute,
			scheduler.WithClock(pipeline.Clock()),
			scheduler.WithTick(cfg.Broadcast.Tick),
			scheduler.WithSink(sink),
		)
		sched.Start(ctx)
		defer sched.Stop()
	}

	broadcastHandler := handler.NewBroadcastHandler(pipeline, reports, audioService)

	checks := map[string]handler.Pinger{"database": db.DB.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	healthHandler := handler.NewHealthHandler(checks)

	r := gin.Default()

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.Static(cfg.Audio.BaseURL, cfg.Audio.Dir)

	r.GET("/api/love-one-day", broadcastHandler.GetToday)
	r.GET("/api/love-one-day/history", broadcastHandler.GetHistory)
	r.GET("/api/love-one-day/:date", broadcastHandler.GetByDate)
	r.POST("/api/love-one-day/audio/:id", broadcastHandler.SynthesizeAudio)
	r.GET("/health", healthHandler.Health)
	r.GET("/ws", gin.WrapF(hub.ServeWS))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("error shutting down server", "error", err)
		}
	}()

	slog.Info("api listening", "addr", cfg.HTTPAddr)

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("error starting server: %v", err)
	}
}
