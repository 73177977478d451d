package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"family-fund-go/internal/models"
	"family-fund-go/internal/realtime"
	"family-fund-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.Platform.
var _ store.Platform = (*Service)(nil)

// Service is the SQLite implementation of the platform contract. It plays
// the role of the hosted backend for local runs and tests: relational
// collections, password auth with bearer-token sessions, and realtime chat
// delivery through a pluggable broker.
type Service struct {
	db     *sql.DB
	broker realtime.Broker

	mu           sync.RWMutex
	currentToken string
	nextListener int
	listeners    map[int]func(store.AuthEvent, *models.Session)
}

func NewService(ctx context.Context, cfg models.DatabaseConfig, broker realtime.Broker) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if broker == nil {
		broker = realtime.NewLocalBus()
	}

	service := &Service{
		db:        db,
		broker:    broker,
		listeners: make(map[int]func(store.AuthEvent, *models.Session)),
	}

	if err := service.InitSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database ready", zap.String("file", cfg.Path))
	return service, nil
}

func (s *Service) Close() {
	if err := s.broker.Close(); err != nil {
		zap.L().Warn("Failed to close realtime broker", zap.Error(err))
	}
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database", zap.Error(err))
	}
}

// closeRows is the shared rows cleanup used by every list query.
func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zap.L().Warn("Failed to close rows", zap.Error(err))
	}
}
