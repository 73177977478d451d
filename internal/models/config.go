package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Realtime RealtimeConfig
	Seed     SeedConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// RealtimeConfig holds the message fan-out settings. An empty AMQPURL
// selects the in-process bus.
type RealtimeConfig struct {
	AMQPURL  string
	Exchange string
}

// SeedConfig holds bootstrap data settings
type SeedConfig struct {
	CategoriesFile string
}
