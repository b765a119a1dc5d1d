package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/irisd/internal/config"
	"github.com/haskel/irisd/internal/logger"
	"github.com/haskel/irisd/internal/model"
	"github.com/haskel/irisd/internal/monitor"
	"github.com/haskel/irisd/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the irisd server",
	Long: `Start the irisd server in foreground mode. The model artifact is
loaded once at startup; a missing or corrupt artifact aborts startup unless
model.required is disabled in the config.`,
	RunE: runServe,
}

var modelPath string

func init() {
	serveCmd.Flags().StringVar(&modelPath, "model", "", "model artifact path (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load config
	cfg := config.LoadOrDefault(cfgFile)

	// Override settings specified via flags
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}
	if cmd.Flags().Changed("model") {
		cfg.Model.Path = modelPath
	}

	// Create logger
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	log.Info("irisd starting",
		"version", Version,
		"config", cfgFile,
		"model", cfg.Model.Path,
	)

	// Load the model artifact. Failure is fatal unless degraded mode is
	// allowed: the process must not serve predictions without a model.
	artifact, err := model.Load(cfg.Model.Path)
	if err != nil {
		if cfg.Model.Required {
			return fmt.Errorf("failed to load model artifact: %w", err)
		}
		log.Error("model artifact unavailable, starting degraded",
			"error", err,
			"path", cfg.Model.Path,
		)
		artifact = nil
	} else {
		log.Info("model artifact loaded",
			"path", cfg.Model.Path,
			"features", artifact.FeatureCount(),
			"classes", artifact.ClassCount(),
			"test_accuracy", artifact.TestAccuracy,
			"trained_at", artifact.TrainedAt,
		)
	}

	// Create resource collector for /status
	collector, err := monitor.NewCollector()
	if err != nil {
		return fmt.Errorf("failed to create resource collector: %w", err)
	}

	// Write PID file if configured
	if cfg.Server.PIDFile != "" {
		if err := writePIDFile(cfg.Server.PIDFile); err != nil {
			log.Warn("failed to write PID file", "error", err)
		} else {
			defer os.Remove(cfg.Server.PIDFile)
		}
	}

	// Create server
	srv := server.New(cfg, artifact, collector, log, Version)

	// Signal channels
	sighupCh := make(chan os.Signal, 1)
	sigCh := make(chan os.Signal, 1)
	shutdownDone := make(chan struct{})

	signal.Notify(sighupCh, syscall.SIGHUP)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Handle SIGHUP for hot-reload
	go func() {
		for {
			select {
			case <-sighupCh:
				log.Info("SIGHUP received, reloading configuration")

				newCfg := config.LoadOrDefault(cfgFile)
				if err := newCfg.Validate(); err != nil {
					log.Error("invalid configuration, reload aborted", "error", err)
					continue
				}

				srv.ReloadConfig(newCfg)
			case <-shutdownDone:
				return
			}
		}
	}()

	// Handle shutdown signals
	go func() {
		<-sigCh

		log.Info("shutdown signal received")

		// Stop receiving signals
		signal.Stop(sighupCh)
		signal.Stop(sigCh)
		close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	log.Info("irisd ready", "addr", srv.Addr())

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("irisd stopped")
	return nil
}

func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", pid)), 0644)
}
