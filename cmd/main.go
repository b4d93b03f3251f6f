package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"price-pact/collaborators"
	"price-pact/internal"
	"price-pact/moderation"
	"price-pact/observability"
	"price-pact/repositories"
	"price-pact/runtime"
	"price-pact/runtime/workers"
	"price-pact/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	censoredChar, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	names, err := moderation.NewNameFilter(config.CensoredWords, censoredChar, config.MaxNameLength)
	if err != nil {
		return fmt.Errorf("name filter: %w", err)
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	// Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	ledger := repositories.NewLedger(db, log)

	// 3. Core runtime
	store := runtime.NewRoomStore()
	registry := runtime.NewRegistry()
	stats := observability.NewManager(log, store.Len, registry.Count)
	dispatcher := runtime.NewDispatcher(log, registry, stats, config.DispatchBufferSize)

	coordinator := runtime.NewCoordinator(
		log, store, registry, dispatcher,
		collaborators.NewSettlementClient(config.SettlementURL, config.CollaboratorTimeout),
		collaborators.NewMintClient(config.MintURL, config.CollaboratorTimeout),
		collaborators.NewScoringClient(config.ScoringURL, config.CollaboratorTimeout),
		names, ledger, stats, config.CollaboratorTimeout,
	)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(dispatcher)
	sup.Add(workers.NewMonitorWorker(log, stats, config.MonitorInterval))

	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. Debug & websocket servers
	internal.StartDebugServer(log, config.DebugPort, store.Snapshots, stats.GetLatest, ledger)

	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(log, coordinator, config.ConnectionBufferSize))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
