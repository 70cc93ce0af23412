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
	"github.com/suPer8Hu/askboard/internal/app"
	"github.com/suPer8Hu/askboard/internal/chat"
	"github.com/suPer8Hu/askboard/internal/config"
	"github.com/suPer8Hu/askboard/internal/httpapi"
	"github.com/suPer8Hu/askboard/internal/httpapi/handlers"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := app.OpenStore(cfg)
	if err != nil {
		log.Fatalf("store connection failed: %v", err)
	}
	defer kv.Close()

	provider, err := app.NewProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("ai provider: %v", err)
	}
	if cfg.AdminToken == "" {
		log.Printf("WARNING: ADMIN_TOKEN not set, admin endpoints will reject every call")
	}

	svc := chat.NewService(chat.NewRepo(kv), provider, cfg.AITimeout, cfg.ChatContextWindowSize)
	r := httpapi.NewRouter(handlers.NewHandler(cfg, kv, svc))

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// completion timeout plus storage round trips
		WriteTimeout: cfg.AITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("askboard listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
