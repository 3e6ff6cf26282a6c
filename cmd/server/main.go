package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-hub/internal"
	"chat-hub/moderation"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/transport/ws"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hub terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components and manages the server lifecycle. Keeping
// the logic out of main ensures defers execute before the process exits.
func run() (int, error) {
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	policy, err := moderation.ParseBanPolicy(config.BanPolicy)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	printBanner()

	// Message store (BadgerDB, in memory: room history is ephemeral state).
	db, err := repositories.OpenInMemory()
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	messages := repositories.NewMessageRepository(db, logger, config.HistoryLimit)

	index, err := repositories.NewSearchIndex(logger, config.SearchLimit)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open search index: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = index.Close()
	}()

	wordlists, err := runtime.LoadWordlists()
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to load wordlists: %w", err)
	}
	censor, err := moderation.NewCensor(wordlists.Words, charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to build censor: %w", err)
	}
	logger.Info("Censor ready", "words", len(wordlists.Words), "languages", wordlists.Languages)

	// Engine & coordinator: every state mutation flows through one goroutine.
	hub := ws.NewHub(logger)
	engine := runtime.NewEngine(logger, hub, messages, index, censor, policy, config.RetentionWindow)
	coordinator := runtime.NewCoordinator(logger, engine, config.BufferSize)
	router := ws.NewRouter(logger, coordinator, config.MaxContentLength)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	go func() {
		if err := coordinator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- fmt.Errorf("coordinator error: %w", err)
		}
	}()

	sup := workers.NewSupervisor(logger)
	sup.Add(
		workers.NewSweeperWorker(logger, coordinator, config.SweepInterval),
		workers.NewHealthWorker(logger, config.HealthInterval),
	)
	go sup.Run(ctx)

	if logger.Enabled(ctx, slog.LevelDebug) {
		internal.StartDebugServer(logger, coordinator, config.DebugPort)
		logger.Info("Debug inspector available",
			"url", fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort))
	}

	// HTTP listener exposing the websocket endpoint.
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.ServeWS(logger, hub, router, coordinator, config.ConnectionBufferSize))
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	go func() {
		logger.Info("Starting websocket server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func printBanner() {
	header := " chat-hub | room & session state engine "
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))
}
