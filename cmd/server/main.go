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

	"github.com/jaminalder/codex-connect-four/internal/app"
	"github.com/jaminalder/codex-connect-four/internal/config"
	"github.com/jaminalder/codex-connect-four/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[SERVER] No .env file found, using environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[SERVER] Invalid configuration: %v", err)
	}

	svc := app.NewService(cfg.Width, cfg.Height)
	handler := web.NewServer(svc, cfg.HeartbeatInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go svc.RunSweeper(ctx, cfg.SweepInterval, cfg.IdleTTL)

	// streams close once a signal arrives, before Shutdown waits on them
	srv := web.NewHTTPServer(ctx, cfg.Addr, handler)

	go func() {
		log.Printf("[SERVER] Listening on %s (board %dx%d)", cfg.Addr, cfg.Width, cfg.Height)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[SERVER] Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[SERVER] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("[SERVER] Forced shutdown: %v", err)
	}
	log.Println("[SERVER] Exited gracefully")
}
