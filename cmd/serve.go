package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cancerscope/config"
	qhttp "cancerscope/http"
	"cancerscope/inference"
	"cancerscope/logging"
	"cancerscope/monitoring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diagnosis form and the prediction API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func runServer(cmd *cobra.Command) error {
	// 1. Load config
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, level, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	// 2. Load pre-fitted artifacts, refusing to start without them
	orchestrator, err := inference.Load(cfg.Artifacts.Paths())
	if err != nil {
		logger.Error("failed to load artifacts", zap.Error(err))
		return err
	}
	logger.Info("artifacts loaded",
		zap.String("scaler", cfg.Artifacts.Scaler),
		zap.String("random_forest", cfg.Artifacts.RandomForest),
		zap.String("svm", cfg.Artifacts.SVM),
		zap.String("voting_ensemble", cfg.Artifacts.VotingEnsemble))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// 3. Follow log level changes in the config file
	if path != "" {
		overridden := cmd.Flags().Changed("log-level")
		err := config.Watch(ctx, path, logger, func(next *config.Config) {
			if overridden {
				return
			}
			parsed, err := logging.ParseLevel(next.Log.Level)
			if err != nil || parsed == level.Level() {
				return
			}
			level.SetLevel(parsed)
			logger.Info("log level changed", zap.String("level", next.Log.Level))
		})
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		}
	}

	// 4. Start HTTP server
	api := qhttp.NewAPI(orchestrator, monitoring.NewMetricsCollector(), logger, qhttp.APIConfig{
		Language:     uiLanguage(cfg),
		DefaultValue: *cfg.UI.DefaultValue,
	})
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
	}, api, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
		return err
	case <-quit:
		logger.Info("shutting down")
	}

	cancel()
	if err := server.Stop(context.Background()); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
		return err
	}
	logger.Info("exiting")
	return nil
}
