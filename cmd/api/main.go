// @title        Pet Adoption API
// @version      1.0
// @description  Marketplace de adopción de mascotas: publicaciones, favoritos y chat entre usuarios.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-adoption/internal/config"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/router"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "api",
	Short:        "Pet adoption marketplace API",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

func loadConfig() (config.Config, logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    "pet-adoption",
	})
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if s, ok := log.(interface{ Sync() error }); ok {
		defer func() { _ = s.Sync() }()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := router.NewVerifier(cfg.Auth)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	stores, closeStores, err := router.OpenStores(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer closeStores()

	uploader, closeUploader, err := router.NewUploader(ctx, cfg.Images)
	if err != nil {
		return fmt.Errorf("images: %w", err)
	}
	defer closeUploader()

	opts := router.Options{
		AuthVerifier:       verifier,
		Logger:             log,
		Stores:             &stores,
		Uploader:           uploader,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}
	if cfg.Images.Backend == config.ImagesLocal {
		opts.UploadsDir = cfg.Images.Local.Dir
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewRouter(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":    srv.Addr,
			"storage": cfg.Storage.Backend,
			"images":  cfg.Images.Backend,
			"auth":    cfg.Auth.Mode,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", map[string]any{"error": err.Error()})
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Los streams SSE terminan con el contexto del request.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", map[string]any{"error": err.Error()})
		return srv.Close()
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_FILE"), "Config file (.yaml or .toml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("email", "", "User email (required)")
	tokenCmd.Flags().String("name", "", "Display name")
	tokenCmd.Flags().String("avatar", "", "Avatar URL")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default auth.dev_token_ttl)")
}
