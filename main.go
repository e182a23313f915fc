package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"land_alert/config"
	"land_alert/dedup"
	"land_alert/extract"
	"land_alert/logging"
	"land_alert/notify"
	"land_alert/pipeline"
	"land_alert/renderer"
	"land_alert/scheduler"
	"land_alert/server"
	"land_alert/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("land_alert.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting land_alert...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	store := dedup.NewMemoryStore(cfg.Dedup.TTL, nil)

	extractor, err := extract.NewExtractor(cfg.Patterns.LandPatterns)
	if err != nil {
		log.Fatalf("Failed to compile extraction rules: %v", err)
	}
	detector := extract.NewDetector(cfg.Patterns.ChallengeMarkers...)

	rend := renderer.NewPlaywright(cfg.Browser, cfg.Proxy)
	defer rend.Close()
	if cfg.Proxy.Server != "" {
		log.Printf("Forward proxy configured: %s", cfg.Proxy.Server)
	}

	notifier := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.DisablePreview)
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		log.Println("Warning: Telegram credentials missing, delivery will fail")
	}

	pipe := pipeline.New(store, rend, notifier, extractor, detector,
		cfg.Filter.MinLandM2, pipeline.MarkPolicy(cfg.Dedup.MarkPolicy))
	log.Printf("Dedup TTL %s, mark policy %s, min land %d m2",
		cfg.Dedup.TTL, cfg.Dedup.MarkPolicy, cfg.Filter.MinLandM2)

	journal, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open request journal: %v", err)
	}
	defer journal.Close()
	pipe.SetJournal(journal)
	log.Printf("Request journal: %s", cfg.DBPath)

	if cfg.DatabaseURL != "" {
		archive, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres archive: %v", err)
		}
		defer archive.Close()
		pipe.SetArchive(archive)
		log.Println("Postgres archive enabled")
	}

	if cfg.S3.Bucket != "" {
		snapshots, err := storage.NewSnapshotStore(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to init snapshot store: %v", err)
		}
		pipe.SetSnapshots(snapshots)
		log.Printf("Blocked-page snapshots: s3://%s", cfg.S3.Bucket)
	}

	if cfg.DigestCron != "" {
		digest := scheduler.NewDigest(cfg.DigestCron, journal, notifier)
		if err := digest.Start(ctx); err != nil {
			log.Fatalf("Failed to start digest: %v", err)
		}
		defer digest.Stop()
	}

	srv := server.New(pipe, store, cfg.Proxy.Server != "", cfg.Filter.MinLandM2)
	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: srv.Router(),
	}

	go func() {
		log.Printf("Listening on %s", cfg.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Goodbye!")
}
