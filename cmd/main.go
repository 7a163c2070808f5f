package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chat-hub/api"
	"chat-hub/auth"
	"chat-hub/moderation"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer (database close included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	censoredChar, err := characterRune(config.ModerationCharReplacement)
	if err != nil {
		return err
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories
	userRepository := repositories.NewUserRepository(db)
	roomRepository := repositories.NewRoomRepository(db)
	membershipRepository := repositories.NewMembershipRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)

	// 4. Moderation
	censored, err := runtime.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(censored.Languages), strings.Join(censored.Languages, ",")))
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(censored.Words)))

	moderator, err := moderation.NewModerator(censored.Words, censoredChar, log)
	if err != nil {
		return err
	}

	// 5. Fan-out broker & services
	registry := runtime.NewRegistry()
	broker := runtime.NewBroker(log, registry, messageRepository, &moderator, config.ConnectionBufferSize)

	tokens := auth.NewTokenManager(config.TokenSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, tokens)
	chatService := services.NewChatService(
		userRepository, roomRepository, membershipRepository, messageRepository, broker)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Supervised background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewTelemetryWorker(log, config.MetricInterval),
		workers.NewPresenceWorker(log, registry, config.MetricInterval),
	)
	go sup.Run(ctx)

	// 8. HTTP server
	handler := api.NewHandler(log, authService, chatService)
	app := api.NewApp(handler, authService)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	_ = app.Shutdown()
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
