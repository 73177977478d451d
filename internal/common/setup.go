package common

import (
	"context"
	"log"
	"strings"

	"family-fund-go/internal/database"
	"family-fund-go/internal/models"
	"family-fund-go/internal/realtime"
	"family-fund-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

// Services bundles the wired platform for command-line entry points.
type Services struct {
	Platform store.Platform
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices wires the local platform: SQLite backend plus the
// realtime broker (AMQP when configured, in-process bus otherwise).
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	var broker realtime.Broker
	if cfg.Realtime.AMQPURL != "" {
		amqpBroker, err := realtime.NewAMQPBroker(cfg.Realtime.AMQPURL, cfg.Realtime.Exchange)
		if err != nil {
			zap.L().Warn("Failed to connect AMQP broker, falling back to in-process bus", zap.Error(err))
		} else {
			broker = amqpBroker
			zap.L().Info("Connected AMQP broker", zap.String("exchange", cfg.Realtime.Exchange))
		}
	}

	platform, err := database.NewService(ctx, cfg.Database, broker)
	if err != nil {
		return nil, err
	}

	return &Services{Platform: platform}, nil
}

func (cs *Services) Close() {
	if cs.Platform != nil {
		cs.Platform.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
