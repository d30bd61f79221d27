package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/config"
	"github.com/agrobridge/tradeapi/internal/repository"
)

// NewConnection opens a Postgres connection pool from config
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewRepositories wires all Postgres-backed repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Offer:        NewOfferRepository(db, logger),
		Order:        NewOrderRepository(db, logger),
		Product:      NewProductRepository(db, logger),
		User:         NewUserRepository(db, logger),
		Activity:     NewActivityRepository(db, logger),
		Notification: NewNotificationRepository(db, logger),
	}
}
