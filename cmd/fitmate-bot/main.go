package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitmate/internal/api"
	"fitmate/internal/app"
	"fitmate/internal/config"
	"fitmate/internal/database"
	"fitmate/internal/llm"
	"fitmate/internal/metrics"
	"fitmate/internal/telegram"
)

// sessionCleanupInterval is how often expired chat sessions are purged.
const sessionCleanupInterval = time.Hour

func main() {
	// 1. Load Configuration
	config.LoadDotEnv()
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx := context.Background()

	// 2. Optional LLM for tagging and recipe import
	var textGen llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer geminiClient.Close()
		textGen = geminiClient
	} else {
		log.Println("GEMINI_API_KEY not set, recipe import and auto-tagging are disabled")
	}

	// 3. Database and application
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	application, err := app.NewApp(cfg, db, textGen)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer application.Close()

	// 4. Telegram Bot
	tgAPI, err := telegram.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}
	sessions := telegram.NewSessionRepository(application.DB())
	bot := telegram.NewBot(cfg, tgAPI, application, sessions)

	// 5. Routes
	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)
	api.NewServer(application, []byte(cfg.APISigningKey)).RegisterHTTPHandlers(mux)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.WithRequestLogging(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go cleanupSessions(cleanupCtx, sessions)

	// 6. Start Server with Graceful Shutdown
	go func() {
		log.Printf("FitMate server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func cleanupSessions(ctx context.Context, sessions *telegram.SessionRepository) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.CleanupExpired(ctx)
			if err != nil {
				log.Printf("Warning: session cleanup failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Removed %d expired chat sessions", n)
			}
		}
	}
}
