package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v6"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection settings for the Postgres index
type DatabaseConfiguration struct {
	Host     string `json:"host" env:"DB_HOST" envDefault:"localhost"`
	Port     string `json:"port" env:"DB_PORT" envDefault:"5432"`
	Database string `json:"database" env:"DB_DATABASE" envDefault:"database"`
	Username string `json:"username" env:"DB_USERNAME" envDefault:"user"`
	Password string `json:"-" env:"DB_PASSWORD"`
	Schema   string `json:"schema" env:"DB_SCHEMA" envDefault:"public"`
	SSLMode  string `json:"ssl_mode" env:"DB_SSLMODE" envDefault:"disable"`
}

// NewDatabaseConfiguration reads the database configuration from the environment
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	config := &DatabaseConfiguration{}
	if err := env.Parse(config); err != nil {
		return nil, NewError("parse database configuration", err)
	}
	return config, nil
}

// DSN returns the lib/pq connection string
func (c *DatabaseConfiguration) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s search_path=%s",
		c.Host, c.Port, c.Database, c.Username, c.Password, c.SSLMode, c.Schema,
	)
}

// Database wraps the sql connection with a name and logger
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens and pings a Postgres connection
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	if config == nil {
		return nil, NewError("database configuration validation", fmt.Errorf("database configuration is nil"))
	}

	instance, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, NewError("open database", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := instance.PingContext(ctx); err != nil {
		instance.Close()
		return nil, NewError("ping database", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("database", config.Database))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}, nil
}

// Close closes the connection
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}
