package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/vodworks/transcode-pipeline/config"
	"github.com/vodworks/transcode-pipeline/db"
	"github.com/vodworks/transcode-pipeline/encoder"
	"github.com/vodworks/transcode-pipeline/pipeline"
	"github.com/vodworks/transcode-pipeline/service"
	"github.com/vodworks/transcode-pipeline/service/exceptions"
	"github.com/vodworks/transcode-pipeline/staging"
	"github.com/vodworks/transcode-pipeline/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("unable to load configuration: ", err)
	}
	logger, err := cfg.Log.Logger()
	if err != nil {
		log.Fatal("unable to initialize logger: ", err)
	}

	reporter, err := exceptions.NewReporter(cfg.Sentry.DSN, cfg.Sentry.Environment)
	if err != nil {
		logger.Fatal("unable to initialize error reporter: ", err)
	}

	repo, err := db.NewClient(&db.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("unable to initialize record store client: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg.S3)
	if err != nil {
		logger.Fatal("unable to initialize blob store client: ", err)
	}

	orchestrator := &pipeline.Orchestrator{
		Repo: repo,
		Store: store,
		Enc: &encoder.FFmpeg{
			Path:           cfg.Encoder.FFmpegPath,
			SegmentSeconds: cfg.Encoder.SegmentSeconds,
			Logger:         logger,
		},
		Staging:  staging.NewManager(cfg.Pipeline.StagingDir),
		Cfg:      cfg,
		Logger:   logger,
		Reporter: reporter,
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: service.Server{
			Logger:   logger,
			Launcher: &service.PipelineLauncher{Runner: orchestrator, Logger: logger},
		},
	}

	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server encountered a fatal error: ", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown: ", err)
	}
}
