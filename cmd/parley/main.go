// Package main provides the parley server entry point.
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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/parley-chat/parley/api"
	"github.com/parley-chat/parley/chat"
	"github.com/parley-chat/parley/config"
	"github.com/parley-chat/parley/db"
	"github.com/parley-chat/parley/llm"
	"github.com/parley-chat/parley/log"
	"github.com/parley-chat/parley/storage"
)

const version = "0.1.0"

var verbose bool

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "parley",
		Short: "Conversational chat server with pluggable storage",
		Long: `A chat server that persists per-session message history and relays it
to an LLM provider. Storage backends: memory, sqlite, postgres.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("parley %s\n", version)
		},
	}
}

func runServe() error {
	settings, err := config.New()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})

	store, closeStore, err := openStore(settings.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	provider, err := llm.NewProvider(llm.Options{
		Provider:    settings.LLM.Provider,
		APIKey:      settings.LLM.APIKey,
		Model:       settings.LLM.Model,
		MaxTokens:   settings.LLM.MaxTokens,
		Temperature: settings.LLM.Temperature,
	})
	if err != nil {
		return err
	}
	client := llm.NewClient(provider)

	service := chat.NewService(store, client, logger.With("component", "chat"))

	var auth api.Authenticator
	if settings.Server.AuthToken != "" {
		auth = api.NewTokenAuthenticator(settings.Server.AuthToken)
	}

	server, err := api.NewServer(api.ServerConfig{
		Logger:        logger.With("component", "api"),
		Store:         store,
		Chat:          service,
		Authenticator: auth,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              settings.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", settings.Server.Addr,
			"storage", settings.Storage.Backend,
			"provider", provider.Name(),
			"model", provider.Model(),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// openStore builds the configured storage backend and returns it with a
// cleanup function.
func openStore(cfg config.StorageConfig) (storage.Store, func(), error) {
	switch cfg.Backend {
	case config.StorageMemory:
		return storage.NewMemoryStore(), func() {}, nil
	case config.StorageSqlite:
		store, err := storage.OpenSqlite(cfg.SqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.StoragePostgres:
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		store, err := storage.OpenPostgres(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}
