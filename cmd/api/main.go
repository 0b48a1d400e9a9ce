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

	"github.com/joho/godotenv"

	"github.com/endoscribe/backend/internal/config"
	"github.com/endoscribe/backend/internal/handler"
	"github.com/endoscribe/backend/internal/service/ai"
	"github.com/endoscribe/backend/internal/service/imagestore"
	"github.com/endoscribe/backend/internal/service/thumbnail"
	"github.com/endoscribe/backend/internal/service/transcribe"

	sessionstore "github.com/endoscribe/backend/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	sessions := sessionstore.NewStore()

	images, err := imagestore.Open(ctx, cfg.Storage.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open image store: %v", err)
	}
	defer images.Close()

	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without image classification and note generation")
			aiService = nil
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI initialization")
	}

	var transcribeService *transcribe.Service
	if cfg.Transcribe.Enabled {
		transcribeService = transcribe.NewService(cfg.Transcribe)
		log.Println("Transcription service initialized successfully")
	} else {
		log.Println("Transcription credentials not configured, skipping dictation initialization")
	}

	thumbnailer := thumbnail.NewGenerator()

	router := handler.NewRouter(sessions, images, aiService, transcribeService, thumbnailer)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Endoscribe backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
